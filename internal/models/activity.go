package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog captures auditable actions: paper builds, assignments and
// recorded results.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"not null;index" json:"actorId"`
	ActorRole  string            `gorm:"size:32;not null" json:"actorRole"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:64;not null;index:idx_activity_entity" json:"entityType"`
	EntityID   *uint             `gorm:"index:idx_activity_entity" json:"entityId,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"createdAt"`
}
