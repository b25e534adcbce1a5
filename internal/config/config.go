// Package config loads hexmapd settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hexmapp/internal/hexgrid"
	"github.com/talgya/hexmapp/internal/sheet"
)

// Config holds server settings.
type Config struct {
	Port            int
	DBPath          string
	SheetURL        string
	GMKey           string
	MaxRadius       int
	HexSize         float64
	StrictIndex     bool
	BasePath        string
	RefreshInterval time.Duration
	FillSeed        int64
	CORSOrigins     []string
	TrustProxy      bool
}

// Load reads the configuration from environment variables.
func Load() (Config, error) {
	cfg := Config{
		Port:            envIntOrDefault("HEXMAPP_PORT", 8080),
		DBPath:          envOrDefault("HEXMAPP_DB", "data/hexmapp.db"),
		SheetURL:        os.Getenv("HEXMAPP_SHEET_URL"),
		GMKey:           os.Getenv("HEXMAPP_GM_KEY"),
		MaxRadius:       envIntOrDefault("HEXMAPP_MAX_RADIUS", hexgrid.DefaultMaxRadius),
		HexSize:         envFloatOrDefault("HEXMAPP_HEX_SIZE", hexgrid.DefaultHexSize),
		StrictIndex:     envBoolOrDefault("HEXMAPP_STRICT_INDEX", false),
		BasePath:        normalizeBasePath(os.Getenv("HEXMAPP_BASE_PATH")),
		RefreshInterval: time.Duration(envIntOrDefault("HEXMAPP_REFRESH_MINUTES", 10)) * time.Minute,
		FillSeed:        int64(envIntOrDefault("HEXMAPP_FILL_SEED", 42)),
		TrustProxy:      envBoolOrDefault("HEXMAPP_TRUST_PROXY", false),
	}

	if cfg.SheetURL == "" {
		if id := os.Getenv("HEXMAPP_PUBLISH_ID"); id != "" {
			cfg.SheetURL = sheet.PublishedCSVURL(id, envOrDefault("HEXMAPP_SHEET_GID", "0"))
		}
	}

	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
			}
		}
	}

	return cfg, cfg.Validate()
}

// Validate checks ranges.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("HEXMAPP_PORT %d out of range", c.Port)
	}
	if c.MaxRadius < 0 {
		return fmt.Errorf("HEXMAPP_MAX_RADIUS must not be negative, got %d", c.MaxRadius)
	}
	if c.HexSize <= 0 {
		return fmt.Errorf("HEXMAPP_HEX_SIZE must be positive, got %v", c.HexSize)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("HEXMAPP_REFRESH_MINUTES must be positive")
	}
	return nil
}

// TableOptions returns the spiral table options implied by the config.
func (c Config) TableOptions() []hexgrid.TableOption {
	if c.StrictIndex {
		return []hexgrid.TableOption{hexgrid.WithStrictBounds()}
	}
	return nil
}

func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloatOrDefault(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envBoolOrDefault(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}
