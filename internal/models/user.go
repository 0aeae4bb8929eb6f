package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает владельца бизнес-аккаунта.
// Поля бизнес-профиля используются как контекст генерации и отображаются в портале.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	Name         string     `db:"name" json:"name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	BusinessName *string    `db:"business_name" json:"business_name,omitempty"`
	BusinessType *string    `db:"business_type" json:"business_type,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Address      *string    `db:"address" json:"address,omitempty"`
	Website      *string    `db:"website" json:"website,omitempty"`
	LogoURL      *string    `db:"logo_url" json:"logo_url,omitempty"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// BusinessCard содержит публичные поля владельца для портала.
// Приватные поля (хэш пароля, даты входа) сюда не попадают.
type BusinessCard struct {
	Name         string  `db:"name" json:"name"`
	Email        string  `db:"email" json:"email"`
	BusinessName *string `db:"business_name" json:"business_name,omitempty"`
	Phone        *string `db:"phone" json:"phone,omitempty"`
	Address      *string `db:"address" json:"address,omitempty"`
	Website      *string `db:"website" json:"website,omitempty"`
	LogoURL      *string `db:"logo_url" json:"logo_url,omitempty"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
