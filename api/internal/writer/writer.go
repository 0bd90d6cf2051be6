package writer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// MapperFunc turns one item into the value written to the output array.
type MapperFunc[T any] func(T) any

// JSONWriter writes a whole result set as one indented JSON array. Every call
// replaces the file; there is no append mode.
type JSONWriter[T any] struct {
	mapper MapperFunc[T]
	indent string
}

func NewJSONWriter[T any](mapper MapperFunc[T]) *JSONWriter[T] {
	return &JSONWriter[T]{
		mapper: mapper,
		indent: "    ",
	}
}

func (w *JSONWriter[T]) WriteToFile(data []T, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	items := make([]any, 0, len(data))
	for _, item := range data {
		items = append(items, w.mapper(item))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", w.indent)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing JSON file: %w", err)
	}
	return nil
}
