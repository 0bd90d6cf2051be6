package ocr

import (
	"context"
	"fmt"
	"strings"

	"gcs-extract/api/internal/config"
	"gcs-extract/api/internal/ocr/gemini"
	"gcs-extract/api/internal/ocr/types"
	"gcs-extract/api/internal/ocr/vertex"
)

type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, in types.GenerateRequest) (string, error)
	Close() error
}

// NewEngine builds the engine named by cfg.Engine. Credential problems are
// reported as types.ErrCredentials.
func NewEngine(ctx context.Context, cfg *config.Config, objects gemini.ObjectReader) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Engine)) {
	case "vertex", "":
		return vertex.New(ctx, cfg.ProjectID, cfg.Location, cfg.GeminiModel)
	case "gemini":
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, objects)
	default:
		return nil, fmt.Errorf("unknown engine %q; use 'vertex' or 'gemini'", cfg.Engine)
	}
}
