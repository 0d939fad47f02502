package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/inamate/diagrammer/backend-go/internal/geom"
	"github.com/inamate/diagrammer/backend-go/internal/scene"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL"`
	DataDir        string `envconfig:"DATA_DIR" default:"./data/drawings"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"localhost:5173,localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	Scene SceneConfig `envconfig:"SCENE"`
}

// SceneConfig holds the editing settings applied to every open drawing.
type SceneConfig struct {
	Grid            float64 `envconfig:"GRID" default:"10"`
	HistoryDepth    int     `envconfig:"HISTORY_DEPTH" default:"100"`
	ContentX        float64 `envconfig:"CONTENT_X" default:"0"`
	ContentY        float64 `envconfig:"CONTENT_Y" default:"0"`
	ContentWidth    float64 `envconfig:"CONTENT_WIDTH" default:"2000"`
	ContentHeight   float64 `envconfig:"CONTENT_HEIGHT" default:"2000"`
	ForceInside     bool    `envconfig:"FORCE_INSIDE" default:"false"`
	SelectionMode   string  `envconfig:"SELECTION_MODE" default:"contains"`
	PlacePolicy     string  `envconfig:"PLACE_POLICY" default:"strict"`
	PasteOffset     float64 `envconfig:"PASTE_OFFSET" default:"10"`
	SystemClipboard bool    `envconfig:"SYSTEM_CLIPBOARD" default:"false"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.Scene.Scene(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into websocket origin patterns.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Scene maps the environment settings onto a scene configuration.
func (c SceneConfig) Scene() (scene.Config, error) {
	cfg := scene.DefaultConfig()
	mode, err := scene.ParseSelectionMode(c.SelectionMode)
	if err != nil {
		return cfg, err
	}
	policy, err := scene.ParsePlacePolicy(c.PlacePolicy)
	if err != nil {
		return cfg, err
	}
	cfg.Grid = c.Grid
	cfg.HistoryDepth = c.HistoryDepth
	cfg.ContentRect = geom.Rect{X: c.ContentX, Y: c.ContentY, Width: c.ContentWidth, Height: c.ContentHeight}
	cfg.ForceInside = c.ForceInside
	cfg.Selection = mode
	cfg.PlacePolicy = policy
	cfg.PasteOffset = c.PasteOffset
	return cfg, nil
}
