package foodlens

import (
	"fmt"
	"os"
	"time"

	"github.com/himanishpuri/FoodLens/pkg/foodlens/gesture"
	"github.com/himanishpuri/FoodLens/pkg/foodlens/scan"
	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shared by the binaries.
//
//	gesture:
//	  distance_threshold: 3
//	  distance_scale: 400
//	scan:
//	  cooldown_ms: 1000
//	  symbologies: [ean13, upc_a, qr]
//	storage:
//	  db_path: foodlens.sqlite3
type FileConfig struct {
	Gesture gesture.Tuning `yaml:"gesture"`
	Scan    struct {
		CooldownMs    int64    `yaml:"cooldown_ms"`
		Symbologies   []string `yaml:"symbologies"`
		PauseOnAccept bool     `yaml:"pause_on_accept"`
	} `yaml:"scan"`
	Camera struct {
		InitialZoom float64 `yaml:"initial_zoom"`
		Mode        string  `yaml:"mode"`
	} `yaml:"camera"`
	Storage struct {
		DBPath string `yaml:"db_path"`
	} `yaml:"storage"`
}

// LoadConfigFile reads and validates a YAML config file.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	fc, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return fc, nil
}

// ParseConfig decodes and validates YAML config bytes.
func ParseConfig(data []byte) (*FileConfig, error) {
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}
	if err := fc.validate(); err != nil {
		return nil, err
	}
	return &fc, nil
}

func (fc *FileConfig) validate() error {
	if fc.Scan.CooldownMs < 0 {
		return fmt.Errorf("scan.cooldown_ms must not be negative, got %d", fc.Scan.CooldownMs)
	}
	if _, err := scan.NewSet(fc.Scan.Symbologies...); err != nil {
		return fmt.Errorf("scan.symbologies: %w", err)
	}
	if fc.Camera.InitialZoom < 0 || fc.Camera.InitialZoom > 1 {
		return fmt.Errorf("camera.initial_zoom must be within [0,1], got %g", fc.Camera.InitialZoom)
	}
	if fc.Camera.Mode != "" {
		if _, err := ParseMode(fc.Camera.Mode); err != nil {
			return fmt.Errorf("camera.mode: %w", err)
		}
	}
	return nil
}

// Options converts the file into coordinator options. Unset values keep the
// coordinator defaults.
func (fc *FileConfig) Options() []Option {
	opts := []Option{
		WithTuning(fc.Gesture),
		WithInitialZoom(fc.Camera.InitialZoom),
		WithPauseOnAccept(fc.Scan.PauseOnAccept),
	}
	if fc.Scan.CooldownMs > 0 {
		opts = append(opts, WithCooldown(time.Duration(fc.Scan.CooldownMs)*time.Millisecond))
	}
	if len(fc.Scan.Symbologies) > 0 {
		opts = append(opts, WithSymbologies(fc.Scan.Symbologies...))
	}
	if fc.Camera.Mode != "" {
		if m, err := ParseMode(fc.Camera.Mode); err == nil {
			opts = append(opts, WithMode(m))
		}
	}
	if fc.Storage.DBPath != "" {
		opts = append(opts, WithDBPath(fc.Storage.DBPath))
	}
	return opts
}
