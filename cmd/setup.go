package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/config"
	"github.com/kozaktomas/face-login/internal/detector"
	"github.com/kozaktomas/face-login/internal/facematch"
	"github.com/kozaktomas/face-login/internal/models"
)

// faceStack is the detector, model loader and matcher shared by all commands.
type faceStack struct {
	backend detector.Backend
	loader  *models.Loader
	matcher *facematch.Matcher
}

// loadConfig reads the environment and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) *config.Config {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetString("detector"); v != "" {
		cfg.Detector.Kind = v
	}
	if v, _ := cmd.Flags().GetString("models"); v != "" {
		cfg.Models.Path = v
	}
	return cfg
}

func newFaceStack(cfg *config.Config) (*faceStack, error) {
	backend, err := detector.New(detector.Config{
		Kind:    cfg.Detector.Kind,
		URL:     cfg.Detector.URL,
		Timeout: cfg.Detector.Timeout,
	})
	if err != nil {
		return nil, err
	}

	loader := models.NewLoader(backend, cfg.Models.Path, models.DefaultManifest())
	matcher := facematch.NewMatcher(backend, loader, matcherOptions(cfg))

	return &faceStack{
		backend: backend,
		loader:  loader,
		matcher: matcher,
	}, nil
}

// loadModels loads the models and waits at most timeout for them.
func (s *faceStack) loadModels(ctx context.Context, timeout time.Duration) error {
	fmt.Printf("Loading models...\n")
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.loader.Load(ctx); err != nil {
		return err
	}
	fmt.Printf("Models loaded (%s)\n", s.loader.Status().Duration)
	return nil
}

func (s *faceStack) Close() {
	s.backend.Close()
}

func matcherOptions(cfg *config.Config) facematch.Options {
	return facematch.Options{
		Threshold:             cfg.Matcher.Threshold,
		Dim:                   cfg.Matcher.Dim,
		ClearOnFailedRegister: cfg.Matcher.ClearOnFailedRegister,
		DetectTimeout:         cfg.Matcher.DetectTimeout,
	}
}

func cameraConstraints(cfg *config.Config) capture.Constraints {
	return capture.Constraints{
		FacingMode: cfg.Camera.FacingMode,
		Width:      cfg.Camera.Width,
		Height:     cfg.Camera.Height,
	}
}
