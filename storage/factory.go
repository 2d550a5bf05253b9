package storage

import (
	"fmt"
	"log/slog"

	"github.com/wrenbin/wrenbin/config"
)

// NewStore creates a storage backend based on the configuration.
func NewStore(cfg *config.Config, logger *slog.Logger) (PasteStore, error) {
	switch cfg.Backend {
	case "memory":
		logger.Info("Using in-memory storage")
		return NewMemoryStore(), nil

	case "filesystem":
		logger.Info("Using filesystem storage", "dir", cfg.DataDir)
		return NewFilesystemStore(cfg.DataDir)

	case "mongodb":
		logger.Info("Using MongoDB storage",
			"uri", cfg.MongoURI,
			"database", cfg.MongoDatabase,
			"collection", cfg.MongoCollection)
		return NewMongoStore(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)

	case "dynamodb":
		logger.Info("Using DynamoDB storage",
			"table", cfg.DynamoTable,
			"region", cfg.AWSRegion)
		return NewDynamoStore(cfg.DynamoTable, cfg.AWSRegion)

	case "redis":
		logger.Info("Using Redis storage", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)

	default:
		return nil, fmt.Errorf("unsupported storage backend: %s (supported: memory, filesystem, mongodb, dynamodb, redis)", cfg.Backend)
	}
}
