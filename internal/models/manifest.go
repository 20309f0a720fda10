// Package models loads the face detection, landmark and recognition model
// bundles once at startup.
package models

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed manifest.yaml
var manifestYAML []byte

// Bundle is one model asset.
type Bundle struct {
	Name      string `yaml:"name" json:"name"`
	File      string `yaml:"file" json:"file"`             // file name in the model directory (dlib backend)
	ServiceID string `yaml:"service_id" json:"service_id"` // model id reported by the embedding service
}

// Manifest lists the bundles that make up a complete model set.
type Manifest struct {
	Bundles []Bundle `yaml:"bundles"`
}

// DefaultManifest returns the embedded manifest.
func DefaultManifest() Manifest {
	m, err := ParseManifest(manifestYAML)
	if err != nil {
		panic("failed to unmarshal embedded manifest.yaml: " + err.Error())
	}
	return m
}

// ParseManifest parses a manifest and checks every bundle is named.
func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Bundles) == 0 {
		return Manifest{}, errors.New("manifest lists no bundles")
	}
	for i, b := range m.Bundles {
		if b.Name == "" {
			return Manifest{}, fmt.Errorf("bundle %d has no name", i)
		}
	}
	return m, nil
}

// CheckFiles verifies that every bundle file exists in dir.
// All missing files are reported together.
func CheckFiles(dir string, bundles []Bundle) error {
	var errs []error
	for _, b := range bundles {
		if b.File == "" {
			continue
		}
		path := filepath.Join(dir, b.File)
		info, err := os.Stat(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("bundle %s: %w", b.Name, err))
			continue
		}
		if info.IsDir() {
			errs = append(errs, fmt.Errorf("bundle %s: %s is a directory", b.Name, path))
		}
	}
	return errors.Join(errs...)
}
