package main

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v2"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/subosito/gotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"estatedesk/handler"
	"estatedesk/model"
	"estatedesk/storage"
)

func openDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.User{}, &model.Listing{}); err != nil {
		return nil, err
	}
	return db, nil
}

func openImageStore(ctx context.Context) (storage.ImageStore, error) {
	if IMAGE_STORE() == imageStoreS3 {
		return storage.NewS3Store(ctx, envOr("AWS_REGION", ""), envOr("AWS_BUCKET_NAME", ""))
	}
	return storage.NewLocalStore(IMAGE_DIR(), PUBLIC_BASE_URL())
}

// newServer wires middleware and routes around h.
// localImageDir is served under /api/images when non-empty.
func newServer(h *handler.Handler, enforcer *casbin.Enforcer, localImageDir string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(log.INFO)
	e.HTTPErrorHandler = errorHandler(e)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil || v.Status >= http.StatusBadRequest {
				c.Logger().Warnf("%s %s %d %s %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Debugf("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	// Saniztize
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         3600,
	}))

	// CORS default
	// Allows requests from any origin wth GET, HEAD, PUT, POST or DELETE method.
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("10M"))

	routes := newRouteSet(e)

	// Authenticate
	e.Use(echojwt.WithConfig(getJwtMVConfig(h.JWTSecret, routes)))

	// Authorize
	e.Use(AuthorizationMW{Enforcer: enforcer, Routes: routes}.Authorize)

	e.Validator = handler.NewValidator()

	api := e.Group("/api")
	api.POST("/signup", h.Signup)
	api.POST("/login", h.Login)

	api.GET("/listings", h.FetchListings)
	api.POST("/listings/create", h.CreateListing)
	api.GET("/listings/:id", h.FetchListing)
	api.PUT("/listings/:id", h.UpdateListing)
	api.DELETE("/listings/:id", h.DeleteListing)

	if localImageDir != "" {
		api.Static("/images", localImageDir)
	}

	return e
}

// Logs server side failures and otherwise renders {"message": ...} like echo does
func errorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if he, ok := err.(*echo.HTTPError); !ok || he.Code >= http.StatusInternalServerError {
			c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		}
		e.DefaultHTTPErrorHandler(err, c)
	}
}

func main() {
	gotenv.Load()

	checkConfig()

	ctx := context.Background()
	logger := log.New("estatedesk")

	// Database connection and migration
	db, err := openDB(DB_PATH())
	if err != nil {
		logger.Fatal(err)
	}

	if email, password := envOr("ADMIN_EMAIL", ""), envOr("ADMIN_PASSWORD", ""); email != "" && password != "" {
		if err := handler.SeedAdmin(db, email, password); err != nil {
			logger.Fatalf("seed admin: %v", err)
		}
	}

	images, err := openImageStore(ctx)
	if err != nil {
		logger.Fatal(err)
	}

	enforcer, err := newEnforcer()
	if err != nil {
		logger.Fatal(err)
	}

	// Initialize handler
	h := &handler.Handler{
		DB:        db,
		Images:    images,
		Cache:     handler.NewListingCache(LISTINGS_CACHE_TTL()),
		JWTSecret: []byte(envOr("JWT_SECRET", "")),
	}

	localDir := ""
	if IMAGE_STORE() == imageStoreLocal {
		localDir = IMAGE_DIR()
	}

	e := newServer(h, enforcer, localDir)

	// Start server
	e.Logger.Fatal(e.Start(":" + PORT()))
}
