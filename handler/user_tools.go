package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"estatedesk/model"
)

// Context key the JWT middleware stores the parsed token under
const TokenContextKey = "user_auth"

const tokenLifetime = 72 * time.Hour

var errEmailTaken = errors.New("email already registered")

func createUser(db *gorm.DB, email, password string, roles []string) (model.User, error) {
	var count int64
	if err := db.Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return model.User{}, err
	}
	if count > 0 {
		return model.User{}, errEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	u := model.User{
		Email:    email,
		Password: string(hash),
		Roles:    roles,
	}
	if err := db.Create(&u).Error; err != nil {
		return model.User{}, err
	}
	return u, nil
}

func signToken(u model.User, secret []byte) (string, error) {
	claims := &model.JwtCustomClaims{
		Roles: strings.Join(u.Roles, ","),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// UserFromContext reads the user out of the token left by the JWT middleware.
func UserFromContext(c echo.Context) (model.AuthUser, error) {
	jwtToken, ok := c.Get(TokenContextKey).(*jwt.Token)
	if !ok {
		return model.AuthUser{}, fmt.Errorf("no token in context")
	}

	claims, ok := jwtToken.Claims.(*model.JwtCustomClaims)
	if !ok {
		return model.AuthUser{}, fmt.Errorf("invalid token claims")
	}

	// To make sure it's a valid uuid
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.AuthUser{}, fmt.Errorf("invalid subject; expected UUID: %v", err)
	}

	u := model.AuthUser{ID: id.String()}
	for _, role := range strings.Split(claims.Roles, ",") {
		if role = strings.TrimSpace(role); role == "" {
			continue
		}
		u.Roles = append(u.Roles, role)
		if role == model.RoleAdmin {
			u.IsAdmin = true
		}
	}

	return u, nil
}
