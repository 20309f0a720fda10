package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t,
		"WEB_HOST", "WEB_PORT", "WEB_POST_LOGIN_PATH", "WEB_ALLOWED_ORIGINS",
		"CAMERA_FACING_MODE", "CAMERA_WIDTH", "CAMERA_HEIGHT",
		"MODELS_PATH", "FACE_DETECTOR",
		"FACE_MATCH_THRESHOLD", "FACE_EMBEDDING_DIM", "FACE_CLEAR_ON_FAILED_REGISTER", "FACE_DETECT_TIMEOUT",
	)

	cfg := Load()

	if cfg.Web.Addr() != "0.0.0.0:8085" {
		t.Errorf("expected default addr 0.0.0.0:8085, got %s", cfg.Web.Addr())
	}
	if cfg.Web.PostLoginPath != "/punchedin-successful" {
		t.Errorf("unexpected post login path %q", cfg.Web.PostLoginPath)
	}
	if len(cfg.Web.AllowedOrigins) != 0 {
		t.Errorf("expected no extra origins, got %v", cfg.Web.AllowedOrigins)
	}
	if cfg.Camera.FacingMode != "user" || cfg.Camera.Width != 640 || cfg.Camera.Height != 480 {
		t.Errorf("unexpected camera defaults: %+v", cfg.Camera)
	}
	if cfg.Models.Path != "./models" {
		t.Errorf("expected default models path ./models, got %s", cfg.Models.Path)
	}
	if cfg.Detector.Kind != "service" {
		t.Errorf("expected default detector service, got %s", cfg.Detector.Kind)
	}
	if cfg.Matcher.Threshold != 0.6 {
		t.Errorf("expected default threshold 0.6, got %f", cfg.Matcher.Threshold)
	}
	if cfg.Matcher.Dim != 128 {
		t.Errorf("expected default dim 128, got %d", cfg.Matcher.Dim)
	}
	if !cfg.Matcher.ClearOnFailedRegister {
		t.Error("expected clear on failed register by default")
	}
	if cfg.Matcher.DetectTimeout != 10*time.Second {
		t.Errorf("expected default detect timeout 10s, got %s", cfg.Matcher.DetectTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("WEB_PORT", "9000")
	t.Setenv("WEB_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("FACE_MATCH_THRESHOLD", "0.45")
	t.Setenv("FACE_CLEAR_ON_FAILED_REGISTER", "false")
	t.Setenv("FACE_DETECT_TIMEOUT", "2s")
	t.Setenv("FACE_DETECTOR", "dlib")

	cfg := Load()

	if cfg.Web.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Web.Port)
	}
	if len(cfg.Web.AllowedOrigins) != 2 || cfg.Web.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("unexpected origins %v", cfg.Web.AllowedOrigins)
	}
	if cfg.Matcher.Threshold != 0.45 {
		t.Errorf("expected threshold 0.45, got %f", cfg.Matcher.Threshold)
	}
	if cfg.Matcher.ClearOnFailedRegister {
		t.Error("expected clear on failed register to be disabled")
	}
	if cfg.Matcher.DetectTimeout != 2*time.Second {
		t.Errorf("expected detect timeout 2s, got %s", cfg.Matcher.DetectTimeout)
	}
	if cfg.Detector.Kind != "dlib" {
		t.Errorf("expected detector dlib, got %s", cfg.Detector.Kind)
	}
}

func TestEnvInt(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"unset", "", 25},
		{"valid", "10", 10},
		{"zero", "0", 25},
		{"negative", "-5", 25},
		{"invalid", "abc", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_INT", tt.value)
			if got := envInt("TEST_ENV_INT", 25); got != tt.want {
				t.Errorf("envInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestEnvFloat(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{"unset", "", 0.6},
		{"valid", "0.5", 0.5},
		{"zero", "0", 0.6},
		{"invalid", "x", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_ENV_FLOAT", tt.value)
			if got := envFloat("TEST_ENV_FLOAT", 0.6); got != tt.want {
				t.Errorf("envFloat() = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"false", false},
		{"0", false},
		{"TRUE", true},
		{"maybe", true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_BOOL", tt.value)
			if got := envBool("TEST_ENV_BOOL", true); got != tt.want {
				t.Errorf("envBool(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 10 * time.Second},
		{"500ms", 500 * time.Millisecond},
		{"0", 0},
		{"-1s", 10 * time.Second},
		{"ten seconds", 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_ENV_DURATION", tt.value)
			if got := envDuration("TEST_ENV_DURATION", 10*time.Second); got != tt.want {
				t.Errorf("envDuration(%q) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}
