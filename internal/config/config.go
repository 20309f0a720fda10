package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Web      WebConfig
	Camera   CameraConfig
	Models   ModelsConfig
	Detector DetectorConfig
	Matcher  MatcherConfig
	Database DatabaseConfig
}

type WebConfig struct {
	Host           string   // defaults to 0.0.0.0
	Port           int      // defaults to 8085
	SessionSecret  string   // random per process when empty
	PostLoginPath  string   // view shown after a successful login
	AllowedOrigins []string // extra CORS origins besides localhost
}

type CameraConfig struct {
	FacingMode string
	Width      int
	Height     int
	StaleAfter time.Duration // frames older than this are not used for capture
}

type ModelsConfig struct {
	Path string // directory holding the model bundles
}

type DetectorConfig struct {
	Kind    string // "service" or "dlib"
	URL     string // embedding server URL for the service backend
	Timeout time.Duration
}

type MatcherConfig struct {
	Threshold             float64
	Dim                   int
	ClearOnFailedRegister bool
	DetectTimeout         time.Duration
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL; empty disables the audit log
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a positive float, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

// envDuration reads a Go duration string ("10s", "500ms"). Zero is allowed
// and disables the limit it configures.
func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

// envList splits a comma separated variable, dropping empty items.
func envList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func Load() *Config {
	return &Config{
		Web: WebConfig{
			Host:           envString("WEB_HOST", "0.0.0.0"),
			Port:           envInt("WEB_PORT", 8085),
			SessionSecret:  os.Getenv("WEB_SESSION_SECRET"),
			PostLoginPath:  envString("WEB_POST_LOGIN_PATH", "/punchedin-successful"),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS"),
		},
		Camera: CameraConfig{
			FacingMode: envString("CAMERA_FACING_MODE", "user"),
			Width:      envInt("CAMERA_WIDTH", 640),
			Height:     envInt("CAMERA_HEIGHT", 480),
			StaleAfter: envDuration("CAMERA_STALE_AFTER", 5*time.Second),
		},
		Models: ModelsConfig{
			Path: envString("MODELS_PATH", "./models"),
		},
		Detector: DetectorConfig{
			Kind:    envString("FACE_DETECTOR", "service"),
			URL:     os.Getenv("FACE_DETECTOR_URL"),
			Timeout: envDuration("FACE_DETECTOR_TIMEOUT", 30*time.Second),
		},
		Matcher: MatcherConfig{
			Threshold:             envFloat("FACE_MATCH_THRESHOLD", 0.6),
			Dim:                   envInt("FACE_EMBEDDING_DIM", 128),
			ClearOnFailedRegister: envBool("FACE_CLEAR_ON_FAILED_REGISTER", true),
			DetectTimeout:         envDuration("FACE_DETECT_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
	}
}

// Addr returns the host:port the web server listens on.
func (c *WebConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
