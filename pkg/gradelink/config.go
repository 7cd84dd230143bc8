package gradelink

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/omahdaoui/gradelink-go/pkg/gradelink/detect"
	"github.com/omahdaoui/gradelink-go/pkg/gradelink/match"
)

// Config parameterizes detection, scoring and matching. The zero value
// is not usable; start from DefaultConfig.
type Config struct {
	Weights match.Weights `yaml:"weights"`
	Match   match.Params  `yaml:"match"`
	Detect  detect.Params `yaml:"detect"`
	// Logger receives per-pass insertion logs. Nil disables logging.
	Logger *zap.Logger `yaml:"-"`
}

// DefaultConfig returns the tuned default configuration.
func DefaultConfig() Config {
	return Config{
		Weights: match.DefaultWeights(),
		Match:   match.DefaultParams(),
		Detect:  detect.DefaultParams(),
	}
}

// LoadConfig reads a YAML threshold file over the defaults. Fields the
// file omits keep their default values.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
