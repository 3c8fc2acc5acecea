package model

import (
	"database/sql"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleMember    = "member"
	RoleAnonymous = "anonymous"
)

// Primary user struct for DB interactions
type User struct {
	ID        string   `json:"id" gorm:"type:uuid;primarykey"`
	Email     string   `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	Password  string   `json:"password,omitempty" validate:"required"`
	Roles     []string `json:"roles" gorm:"serializer:json;default:'[]'"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt sql.NullTime `gorm:"index"`
}

// User extracted from JWT token
type AuthUser struct {
	ID      string   `json:"id"`
	Roles   []string `json:"roles"`
	IsAdmin bool     `json:"is_admin"`
}

// User as the client keeps it next to the token; role drives the admin controls
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (base *User) BeforeCreate(tx *gorm.DB) (err error) {
	if base.ID != "" {
		return
	}

	id, err := uuid.NewRandom()
	if err != nil {
		return err
	}

	base.ID = id.String()
	return
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UserLoginResponse struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

type SignupResponse struct {
	ID string `json:"id"`
}

type JwtCustomClaims struct {
	Roles string `json:"roles"`
	jwt.RegisteredClaims
}

func (user User) ToPublicFormat() PublicUser {
	return PublicUser{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.PrimaryRole(),
	}
}

func (user User) IsAdmin() bool {
	for _, v := range user.Roles {
		if v == RoleAdmin {
			return true
		}
	}

	return false
}

// PrimaryRole is admin when the user holds it, otherwise the first role.
func (user User) PrimaryRole() string {
	if user.IsAdmin() {
		return RoleAdmin
	}
	if len(user.Roles) > 0 {
		return user.Roles[0]
	}
	return RoleMember
}
