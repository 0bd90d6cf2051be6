package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gcs-extract/api/internal/config"
	"gcs-extract/api/internal/ocr/types"
)

func isolate(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "BUCKET_NAME", "LLM_ENGINE", "GEMINI_API_KEY", "PROMPT_FILE", "OUTPUT_FILE",
		"DATABASE_URL", "PGHOST", "POSTGRES_DB", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "STORE_RETENTION",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", filepath.Join(t.TempDir(), "missing.json"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestCLI_Run_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		wantCred bool
		wantText string
	}{
		{name: "bad flag", args: []string{"-nope"}, wantText: "parsing flags"},
		{name: "unknown engine", args: []string{"-engine", "openai", "-bucket", "forms"}, wantText: "unknown engine"},
		{name: "vertex without credentials", args: []string{"-bucket", "forms"}, wantCred: true},
		{name: "gemini without key", args: []string{"-engine", "gemini"}, wantCred: true},
		{name: "missing prompt file", args: []string{"-bucket", "forms"}, wantText: "read prompt"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			isolate(t)
			if tc.name == "missing prompt file" {
				t.Setenv("PROMPT_FILE", filepath.Join(t.TempDir(), "nope.txt"))
			}

			err := NewCLI().Run(tc.args)
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, types.ErrCredentials) != tc.wantCred {
				t.Errorf("ErrCredentials mismatch: %v", err)
			}
			if tc.wantText != "" && !strings.Contains(err.Error(), tc.wantText) {
				t.Errorf("error %q does not contain %q", err, tc.wantText)
			}
		})
	}
}

func TestCLI_Apply(t *testing.T) {
	cfg := &config.Config{Bucket: "env", Prefix: "p/", OutputFile: "output.json", Engine: "vertex"}
	c := &CLI{bucket: "flag", output: "out/x.json"}

	c.apply(cfg)

	if cfg.Bucket != "flag" || cfg.Prefix != "p/" || cfg.OutputFile != "out/x.json" || cfg.Engine != "vertex" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
