package models

import (
	"time"
)

// Paste represents a stored paste entry
type Paste struct {
	Key              string     `json:"key" bson:"_id"`
	Content          string     `json:"content" bson:"content"`
	Syntax           string     `json:"syntax" bson:"syntax"`
	BurnAfterReading bool       `json:"burn_after_reading" bson:"burn_after_reading"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty" bson:"expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	Size             int64      `json:"size" bson:"size"`
}

// IsExpired checks if the paste has expired. A nil ExpiresAt means the
// paste never expires.
func (p *Paste) IsExpired() bool {
	if p.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*p.ExpiresAt)
}
