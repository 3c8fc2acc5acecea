package main

import (
	"os"
	"time"
)

const (
	imageStoreS3    = "s3"
	imageStoreLocal = "local"
)

func checkConfig() {
	requiredConfig := []string{"JWT_SECRET"}
	if IMAGE_STORE() == imageStoreS3 {
		requiredConfig = append(requiredConfig, "AWS_BUCKET_NAME", "AWS_REGION")
	}

	// Loop over reqired config and check if they are set, and not ""
	for _, v := range requiredConfig {
		if os.Getenv(v) == "" {
			panic("Missing required config: " + v)
		}
	}

	if s := IMAGE_STORE(); s != imageStoreS3 && s != imageStoreLocal {
		panic("Unsupported IMAGE_STORE: " + s)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func PORT() string {
	return envOr("PORT", "5000")
}

func DB_PATH() string {
	return envOr("DB_PATH", "estatedesk.db")
}

func IMAGE_STORE() string {
	return envOr("IMAGE_STORE", imageStoreLocal)
}

func IMAGE_DIR() string {
	return envOr("IMAGE_DIR", "uploads")
}

// Local image URLs are absolute so the admin client can preview them from anywhere
func PUBLIC_BASE_URL() string {
	return envOr("PUBLIC_BASE_URL", "http://localhost:"+PORT())
}

func LISTINGS_CACHE_TTL() time.Duration {
	d, err := time.ParseDuration(envOr("LISTINGS_CACHE_TTL", "30s"))
	if err != nil {
		return 30 * time.Second
	}
	return d
}
