package ocr

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gcs-extract/api/internal/config"
	"gcs-extract/api/internal/ocr/types"
)

func TestNewEngine(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))

	testCases := []struct {
		name     string
		cfg      config.Config
		wantCred bool
	}{
		{name: "vertex without credentials", cfg: config.Config{Engine: "vertex", ProjectID: "p", Location: "us-central1", GeminiModel: "m"}, wantCred: true},
		{name: "default engine is vertex", cfg: config.Config{ProjectID: "p", Location: "us-central1", GeminiModel: "m"}, wantCred: true},
		{name: "gemini without key", cfg: config.Config{Engine: "Gemini", GeminiModel: "m"}, wantCred: true},
		{name: "unknown", cfg: config.Config{Engine: "openai"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e, err := NewEngine(context.Background(), &tc.cfg, nil)
			if err == nil {
				e.Close()
				t.Fatal("expected error")
			}
			if got := errors.Is(err, types.ErrCredentials); got != tc.wantCred {
				t.Errorf("errors.Is(ErrCredentials) = %v, want %v (err=%v)", got, tc.wantCred, err)
			}
		})
	}
}
