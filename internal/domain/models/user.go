package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the credential record the authentication flow verifies against.
// Profile data and the CMS entity model live in the surrounding web layer;
// this struct carries only what login, registration and email verification
// need.
type User struct {
	ID            string         `json:"id" gorm:"primaryKey;size:36"`
	Email         string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash  string         `json:"-" gorm:"size:512;not null"`
	DisplayName   string         `json:"display_name" gorm:"size:128"`
	EmailVerified bool           `json:"email_verified" gorm:"default:false"`
	Active        bool           `json:"active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// CanAuthenticate reports whether the account may log in at all.
func (u *User) CanAuthenticate() bool {
	return u.Active
}
