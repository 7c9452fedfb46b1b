package app

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string `validate:"required"`
	// ExportPath, when set, makes Run write the loaded graph as a document
	// instead of running a session. "-" writes to the app's output.
	ExportPath string

	FPS       float64       `validate:"gt=0,lte=240"`
	MaxFrames int           `validate:"gte=0"`
	Duration  time.Duration `validate:"gte=0"`
	Debug     bool

	LogFormat       string `validate:"oneof=text json"`
	LogLevel        string `validate:"oneof=debug info warn error"`
	HealthcheckPort int    `validate:"gte=0,lte=65535"`

	PreviewURL       string `validate:"omitempty,url"`
	PreviewNamespace string

	EffectWorkers int           `validate:"gte=1,lte=256"`
	HTTPRetries   int           `validate:"gte=0,lte=10"`
	HTTPTimeout   time.Duration `validate:"gte=0"`
}

var configValidate = validator.New()

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if err := configValidate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
