package main

import (
	_ "embed"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"estatedesk/handler"
	"estatedesk/model"
)

//go:embed auth_model.conf
var authModel string

//go:embed policy.csv
var authPolicy string

func newEnforcer() (*casbin.Enforcer, error) {
	m, err := casbinmodel.NewModelFromString(authModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}

	e, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(strings.TrimSpace(authPolicy)))
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	return e, nil
}

// routeSet holds the registered method and path pairs. Requests matching none
// of them pass through auth untouched so echo can answer 404 or 405.
type routeSet struct {
	e    *echo.Echo
	once sync.Once
	set  map[string]bool
}

func newRouteSet(e *echo.Echo) *routeSet {
	return &routeSet{e: e}
}

func (rs *routeSet) matched(c echo.Context) bool {
	rs.once.Do(func() {
		rs.set = map[string]bool{}
		for _, r := range rs.e.Routes() {
			rs.set[r.Method+" "+r.Path] = true
		}
	})
	return rs.set[c.Request().Method+" "+c.Path()]
}

type AuthorizationMW struct {
	Enforcer *casbin.Enforcer
	Routes   *routeSet
}

func (cfg AuthorizationMW) Authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !cfg.Routes.matched(c) {
			return next(c)
		}

		userRoles := []string{model.RoleAnonymous}
		user, err := handler.UserFromContext(c)
		if err == nil && len(user.Roles) > 0 {
			userRoles = user.Roles
		}

		for _, role := range userRoles {
			ok, casbinErr := cfg.Enforcer.Enforce(role, c.Path(), c.Request().Method)
			if casbinErr != nil {
				c.Logger().Errorf("enforce %s %s: %v", c.Request().Method, c.Path(), casbinErr)
				return echo.NewHTTPError(http.StatusInternalServerError, "Authorization error.")
			}
			if ok {
				c.Set("user", &user)
				return next(c)
			}
		}

		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid token.")
		}
		return echo.NewHTTPError(http.StatusForbidden, "You do not have permission to do this.")
	}
}

type PublicPaths struct {
	Path   string
	Method string
}

var publicPaths = []PublicPaths{
	{Path: "/api/login", Method: http.MethodPost},
	{Path: "/api/signup", Method: http.MethodPost},
	{Path: "/api/listings", Method: http.MethodGet},
	{Path: "/api/listings/:id", Method: http.MethodGet},
	{Path: "/api/images*", Method: http.MethodGet},
}

func isPublicPath(c echo.Context) bool {
	for _, p := range publicPaths {
		if c.Path() == p.Path && c.Request().Method == p.Method {
			return true
		}
	}
	return false
}

// Public paths still read a token when one is sent so admins get the full responses.
// A bad token there just means anonymous.
func getJwtMVConfig(secret []byte, routes *routeSet) echojwt.Config {
	return echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(model.JwtCustomClaims)
		},
		ContextKey: handler.TokenContextKey,
		SigningKey: secret,
		Skipper: func(c echo.Context) bool {
			if !routes.matched(c) {
				return true
			}
			return isPublicPath(c) && c.Request().Header.Get(echo.HeaderAuthorization) == ""
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(c echo.Context, err error) error {
			if isPublicPath(c) {
				return nil
			}
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid token.")
		},
	}
}
