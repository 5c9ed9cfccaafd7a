package entities

import "time"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

type User struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Username       string     `gorm:"uniqueIndex;size:100" json:"username"`
	Email          string     `gorm:"uniqueIndex;size:200" json:"email"`
	PasswordHash   string     `gorm:"size:255" json:"-"`
	Role           UserRole   `gorm:"size:20;default:'user'" json:"role"`
	TokenHash      string     `gorm:"index;size:64" json:"-"` // sha256 of the bearer token
	TokenCreatedAt *time.Time `json:"-"`
	IsActive       bool       `gorm:"default:true" json:"isActive"`
	LastLoginAt    *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
