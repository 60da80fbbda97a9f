package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentRecord stores one opaque JSON document for a content resource.
// Singleton resources use an empty ResourceID.
type ContentRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	ResourceType string         `gorm:"column:resource_type;type:text;not null;uniqueIndex:ux_content_records_resource"`
	ResourceID   string         `gorm:"column:resource_id;type:text;not null;default:'';uniqueIndex:ux_content_records_resource"`
	Position     int            `gorm:"column:position;not null;default:0"`
	Payload      map[string]any `gorm:"column:payload;type:jsonb;serializer:json;not null"`
	UpdatedBy    *uuid.UUID     `gorm:"column:updated_by;type:uuid"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (ContentRecord) TableName() string {
	return "content_records"
}

func (c *ContentRecord) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
