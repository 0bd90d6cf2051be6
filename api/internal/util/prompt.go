package util

import (
	"fmt"
	"os"
	"strings"
)

// LoadPrompt returns def when path is empty, otherwise the trimmed contents of
// the file at path.
func LoadPrompt(path, def string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return def, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt %s: %w", path, err)
	}
	p := strings.TrimSpace(string(b))
	if p == "" {
		return "", fmt.Errorf("prompt %s is empty", path)
	}
	return p, nil
}
