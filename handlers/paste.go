package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wrenbin/wrenbin/config"
	"github.com/wrenbin/wrenbin/internal/keygen"
	"github.com/wrenbin/wrenbin/internal/policy"
	"github.com/wrenbin/wrenbin/internal/services"
	"github.com/wrenbin/wrenbin/utils"
)

// PasteHandler handles paste-related endpoints.
type PasteHandler struct {
	service *services.PasteService
	config  *config.Config
	logger  *slog.Logger
}

// NewPasteHandler creates a new paste handler.
func NewPasteHandler(service *services.PasteService, cfg *config.Config, logger *slog.Logger) *PasteHandler {
	return &PasteHandler{
		service: service,
		config:  cfg,
		logger:  logger,
	}
}

// CreateRequest is the JSON body for POST /api/v1/pastes.
type CreateRequest struct {
	Content          string `json:"content"`
	Syntax           string `json:"syntax"`
	BurnAfterReading bool   `json:"burn_after_reading"`
	ExpireMinutes    int    `json:"expire_minutes"`
}

// Create handles paste creation via POST /api/v1/pastes.
func (h *PasteHandler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content cannot be empty"})
		return
	}
	if int64(len(req.Content)) > h.config.MaxContentSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("content too large: %d bytes exceeds limit of %d bytes", len(req.Content), h.config.MaxContentSize),
		})
		return
	}

	paste, err := h.service.Create(services.CreateRequest{
		Content:          req.Content,
		Syntax:           req.Syntax,
		BurnAfterReading: req.BurnAfterReading,
		ExpireMinutes:    req.ExpireMinutes,
	})
	if err != nil {
		h.logger.Error("failed to create paste", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create paste"})
		return
	}

	h.logger.Info("paste created",
		"key", paste.Key,
		"size", paste.Size,
		"syntax", paste.Syntax,
		"burn_after_reading", paste.BurnAfterReading)

	c.JSON(http.StatusCreated, gin.H{
		"key": paste.Key,
		"url": h.pasteURL(c, paste.Key),
	})
}

// View handles GET /api/v1/pastes/:key. This is the normal read path:
// burn-after-reading pastes are consumed by this access.
func (h *PasteHandler) View(c *gin.Context) {
	key := c.Param("key")
	if !keygen.IsValidKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key format"})
		return
	}

	paste, err := h.service.Read(key, policy.ModeView)
	if err != nil {
		h.respondReadError(c, key, policy.ModeView, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":                paste.Key,
		"content":            paste.Content,
		"syntax":             paste.Syntax,
		"burn_after_reading": paste.BurnAfterReading,
		"expires_at":         paste.ExpiresAt,
		"created_at":         paste.CreatedAt,
	})
}

// Raw handles GET /api/v1/pastes/:key/raw, serving the bare content as
// text/plain for curl and friends. Never consumes the paste.
func (h *PasteHandler) Raw(c *gin.Context) {
	key := c.Param("key")
	if !keygen.IsValidKey(key) {
		c.String(http.StatusBadRequest, "Error: invalid key format")
		return
	}

	paste, err := h.service.Read(key, policy.ModeRaw)
	if err != nil {
		h.respondReadError(c, key, policy.ModeRaw, err)
		return
	}

	c.String(http.StatusOK, paste.Content)
}

// Download handles GET /api/v1/pastes/:key/download, serving the content
// as a file attachment named after the key and syntax. Never consumes
// the paste.
func (h *PasteHandler) Download(c *gin.Context) {
	key := c.Param("key")
	if !keygen.IsValidKey(key) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key format"})
		return
	}

	paste, err := h.service.Read(key, policy.ModeDownload)
	if err != nil {
		h.respondReadError(c, key, policy.ModeDownload, err)
		return
	}

	filename := key + utils.ExtensionForSyntax(paste.Syntax)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Data(http.StatusOK, "application/octet-stream", []byte(paste.Content))
}

// respondReadError maps the read taxonomy onto HTTP statuses: 404 for
// absent (or already consumed), 410 for expired, 403 for burn content
// requested through a non-destructive mode.
func (h *PasteHandler) respondReadError(c *gin.Context, key string, mode policy.AccessMode, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		h.logger.Warn("paste not found", "key", key, "mode", mode.String())
		h.respondError(c, mode, http.StatusNotFound, "content not found")
	case errors.Is(err, services.ErrExpired):
		h.logger.Warn("paste expired", "key", key, "mode", mode.String())
		h.respondError(c, mode, http.StatusGone, "content has expired")
	case errors.Is(err, policy.ErrBurnContentForbidden):
		h.logger.Warn("burn content refused", "key", key, "mode", mode.String())
		h.respondError(c, mode, http.StatusForbidden, "burn-after-reading content cannot be accessed in this mode")
	default:
		h.logger.Error("failed to read paste", "key", key, "mode", mode.String(), "error", err)
		h.respondError(c, mode, http.StatusInternalServerError, "failed to read paste")
	}
}

func (h *PasteHandler) respondError(c *gin.Context, mode policy.AccessMode, status int, msg string) {
	if mode == policy.ModeRaw {
		c.String(status, "Error: "+msg)
		return
	}
	c.JSON(status, gin.H{"error": msg})
}

// pasteURL builds the public URL for a paste, preferring the configured
// base URL over the request host.
func (h *PasteHandler) pasteURL(c *gin.Context, key string) string {
	if h.config.URL != "" {
		return fmt.Sprintf("%s/api/v1/pastes/%s", strings.TrimRight(h.config.URL, "/"), key)
	}
	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/api/v1/pastes/%s", scheme, c.Request.Host, key)
}
