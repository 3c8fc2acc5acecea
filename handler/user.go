package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"estatedesk/model"
)

func (h *Handler) Signup(c echo.Context) error {
	u := model.UserLogin{}
	if err := c.Bind(&u); err != nil {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Invalid signup payload."}
	}

	u.Email = model.StripEmail(u.Email)
	if err := c.Validate(&u); err != nil {
		return err
	}
	if !model.IsValidEmail(u.Email) {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Invalid email."}
	}

	newUser, err := createUser(h.DB, u.Email, u.Password, []string{model.RoleMember})
	if err != nil {
		if errors.Is(err, errEmailTaken) {
			return &echo.HTTPError{Code: http.StatusConflict, Message: "Email is already registered."}
		}
		c.Logger().Errorf("signup: %v", err)
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to create user."}
	}

	return c.JSON(http.StatusCreated, model.SignupResponse{ID: newUser.ID})
}

func (h *Handler) Login(c echo.Context) error {
	u := model.UserLogin{}
	if err := c.Bind(&u); err != nil {
		return &echo.HTTPError{Code: http.StatusBadRequest, Message: "Invalid login payload."}
	}

	u.Email = model.StripEmail(u.Email)
	if err := c.Validate(&u); err != nil {
		return err
	}

	user := model.User{}
	err := h.DB.First(&user, "email = ?", u.Email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &echo.HTTPError{Code: http.StatusUnauthorized, Message: "Invalid email or password."}
		}
		c.Logger().Errorf("login: %v", err)
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to log in."}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(u.Password)); err != nil {
		return &echo.HTTPError{Code: http.StatusUnauthorized, Message: "Invalid email or password."}
	}

	token, err := signToken(user, h.JWTSecret)
	if err != nil {
		c.Logger().Errorf("sign token: %v", err)
		return &echo.HTTPError{Code: http.StatusInternalServerError, Message: "Failed to log in."}
	}

	return c.JSON(http.StatusOK, model.UserLoginResponse{Token: token, User: user.ToPublicFormat()})
}

// SeedAdmin makes sure an admin account exists for email. Existing accounts are promoted.
func SeedAdmin(db *gorm.DB, email, password string) error {
	email = model.StripEmail(email)

	user := model.User{}
	err := db.First(&user, "email = ?", email).Error
	if err == nil {
		if user.IsAdmin() {
			return nil
		}
		user.Roles = append(user.Roles, model.RoleAdmin)
		return db.Save(&user).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err = createUser(db, email, password, []string{model.RoleMember, model.RoleAdmin})
	return err
}
