package models

import (
	"time"

	"gorm.io/gorm"
)

// Project represents a shared task board. The owner is referenced by OwnerID
// and is never stored as a membership row; OwnerID only changes through the
// explicit ownership transfer operation.
type Project struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:200;not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	Color       string         `gorm:"size:20" json:"color"`
	OwnerID     uint           `gorm:"index;not null" json:"owner_id"`
	Owner       *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Archived    bool           `gorm:"default:false" json:"archived"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string { return "projects" }
