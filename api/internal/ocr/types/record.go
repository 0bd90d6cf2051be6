package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is the parsed model output for one image, kept as the model returned it.
type Record struct {
	Locator string
	Model   string
	Data    json.RawMessage
}

// Person is one row of the extraction table.
type Person struct {
	FirstName string `json:"First Name"`
	LastName  string `json:"Last Name"`
	BirthDate string `json:"Birth Date"`
	Address   string `json:"Address"`
	ZIP       string `json:"ZIP"`
}

// People decodes Data as a single row or an array of rows. Values that are not
// strings (e.g. a numeric ZIP) are kept in their JSON text form.
func (r Record) People() ([]Person, error) {
	data := bytes.TrimSpace(r.Data)
	if len(data) == 0 {
		return nil, nil
	}
	var rows []map[string]json.RawMessage
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.Locator, err)
		}
	case '{':
		var row map[string]json.RawMessage
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, fmt.Errorf("record %s: %w", r.Locator, err)
		}
		rows = append(rows, row)
	default:
		return nil, fmt.Errorf("record %s: not an object or array", r.Locator)
	}

	out := make([]Person, 0, len(rows))
	for _, row := range rows {
		out = append(out, Person{
			FirstName: field(row, "First Name"),
			LastName:  field(row, "Last Name"),
			BirthDate: field(row, "Birth Date"),
			Address:   field(row, "Address"),
			ZIP:       field(row, "ZIP"),
		})
	}
	return out, nil
}

func field(row map[string]json.RawMessage, key string) string {
	v, ok := row[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	if string(v) == "null" {
		return ""
	}
	return string(v)
}
