package entity

import (
	"time"

	"github.com/google/uuid"
)

// AdminUser: сотрудник, работающий с сообщениями в админке.
type AdminUser struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	IsActive     bool
	LastLoginAt  *time.Time
	CreatedAt    time.Time
}
