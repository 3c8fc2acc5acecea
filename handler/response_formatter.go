package handler

import (
	"github.com/labstack/echo/v4"

	"estatedesk/model"
)

// Entities that hide some fields from non-admins
type GenericEntity interface {
	ToPublicFormat() any
}

func responseFormatter[I GenericEntity](data I, roles []string) any {
	if roles == nil {
		return data.ToPublicFormat()
	}

	for _, role := range roles {
		if role == model.RoleAdmin {
			return data
		}
	}

	return data.ToPublicFormat()
}

func responseArrFormatter[I GenericEntity](data []I, roles []string) []any {
	res := []any{}
	for _, v := range data {
		res = append(res, responseFormatter(v, roles))
	}
	return res
}

// requestRoles is nil for anonymous requests.
func requestRoles(c echo.Context) []string {
	if u, ok := c.Get("user").(*model.AuthUser); ok && u != nil {
		return u.Roles
	}
	return nil
}
