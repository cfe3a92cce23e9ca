package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via gen_random_uuid().
type UserModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email           string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash    string    `gorm:"type:varchar(255);not null"`
	ProfileComplete bool      `gorm:"not null;default:false"`
	FirstName       string    `gorm:"type:varchar(100)"`
	LastName        string    `gorm:"type:varchar(100)"`
	AvatarURL       string    `gorm:"type:text"`
	AccentColor     string    `gorm:"type:varchar(16)"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
