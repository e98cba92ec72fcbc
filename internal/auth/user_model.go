package auth

import (
	"gorm.io/gorm"
)

type UserModel struct {
	gorm.Model
	Username string `gorm:"column:username;size:255;not null;unique" json:"username"`
	Password string `gorm:"column:password;size:255;not null" json:"-"`
}

// TableName specifies the table name for User
func (UserModel) TableName() string {
	return "users"
}

// Identity is the verified subject of a bearer token.
type Identity struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

type PersonResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}
