package writer

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func rawMapper(m json.RawMessage) any { return m }

func TestJSONWriter_Indentation(t *testing.T) {
	// Arrange
	outputPath := filepath.Join(t.TempDir(), "output.json")
	w := NewJSONWriter(rawMapper)
	data := []json.RawMessage{
		json.RawMessage(`{"First Name":"A","Address":"<Main> & 1"}`),
		json.RawMessage(`[{"ZIP":"10115"}]`),
	}
	expected := `[
    {
        "First Name": "A",
        "Address": "<Main> & 1"
    },
    [
        {
            "ZIP": "10115"
        }
    ]
]
`

	// Act
	if err := w.WriteToFile(data, outputPath); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}

	// Assert
	got, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != expected {
		t.Errorf("unexpected file content:\n%s\nwant:\n%s", got, expected)
	}
}

func TestJSONWriter_ReplacesFile(t *testing.T) {
	// Arrange
	outputPath := filepath.Join(t.TempDir(), "replace.json")
	w := NewJSONWriter(rawMapper)
	first := []json.RawMessage{json.RawMessage(`{"n":1}`), json.RawMessage(`{"n":2}`)}
	second := []json.RawMessage{json.RawMessage(`{"n":3}`)}

	// Act
	if err := w.WriteToFile(first, outputPath); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteToFile(second, outputPath); err != nil {
		t.Fatal(err)
	}

	// Assert
	var records []map[string]int
	b, _ := os.ReadFile(outputPath)
	if err := json.Unmarshal(b, &records); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(records) != 1 || records[0]["n"] != 3 {
		t.Errorf("expected only the second write, got %v", records)
	}
}

func TestJSONWriter_CreatesDirectory(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "nested", "dir", "out.json")
	w := NewJSONWriter(func(s string) any { return map[string]string{"v": s} })

	if err := w.WriteToFile([]string{"x"}, outputPath); err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Errorf("file not created: %v", err)
	}
}
