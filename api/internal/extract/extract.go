package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"gcs-extract/api/internal/gcs"
	"gcs-extract/api/internal/logger"
	"gcs-extract/api/internal/ocr/types"
	"gcs-extract/api/internal/util"
)

// Reason says why an image produced no record.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonBadLocator    Reason = "BAD_LOCATOR"
	ReasonRequestFailed Reason = "REQUEST_FAILED"
	ReasonEmptyResponse Reason = "EMPTY_RESPONSE"
	ReasonBadJSON       Reason = "BAD_JSON"
	ReasonNoData        Reason = "NO_DATA" // valid JSON without content: null, [], {}, "", false, 0
)

const DefaultPrompt = `Extract and structure the following information from the image into a table with these columns:
First Name, Last Name, Birth Date, Address, ZIP.
Return the result as structured JSON.`

// Model is the part of ocr.Engine the extractor needs.
type Model interface {
	GetModel() string
	Generate(ctx context.Context, in types.GenerateRequest) (string, error)
}

type Extractor struct {
	model  Model
	prompt string
}

func New(model Model, prompt string) *Extractor {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	return &Extractor{model: model, prompt: prompt}
}

// Outcome is the result for one image: either Record is set, or Reason/Err
// explain the skip.
type Outcome struct {
	Locator string
	Record  *types.Record
	Reason  Reason
	Err     error
	Raw     string // model text after fence stripping, for BAD_JSON and NO_DATA
}

func (o Outcome) OK() bool { return o.Record != nil }

func skip(locator string, reason Reason, err error) Outcome {
	return Outcome{Locator: locator, Reason: reason, Err: err}
}

// Extract never fails: every problem becomes a skip Outcome.
func (x *Extractor) Extract(ctx context.Context, locator string) Outcome {
	bucket, object, ok := gcs.ParseURI(locator)
	if !ok {
		log.Printf("Invalid image path: %s", locator)
		return skip(locator, ReasonBadLocator, fmt.Errorf("not a %sbucket/object locator", gcs.Scheme))
	}
	logger.DebugLog("[Extract]: sending %s from %s", object, bucket)

	text, err := x.model.Generate(ctx, types.GenerateRequest{
		ImageURI: locator,
		MIMEType: util.MimeByExt(locator),
		Prompt:   x.prompt,
	})
	if err != nil {
		log.Printf("Error processing image %s: %v", locator, err)
		return skip(locator, ReasonRequestFailed, err)
	}

	raw := util.StripCodeFences(text)
	if raw == "" {
		log.Printf("Empty response for image %s", locator)
		return skip(locator, ReasonEmptyResponse, errors.New("empty response"))
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(raw)); err != nil {
		log.Printf("JSON decode error for image %s: %v", locator, err)
		log.Printf("Raw response: %s", raw)
		out := skip(locator, ReasonBadJSON, err)
		out.Raw = raw
		return out
	}
	if isEmptyJSON(compact.Bytes()) {
		logger.DebugLog("[Extract]: no data in response for %s: %s", locator, raw)
		out := skip(locator, ReasonNoData, nil)
		out.Raw = raw
		return out
	}

	return Outcome{
		Locator: locator,
		Record: &types.Record{
			Locator: locator,
			Model:   x.model.GetModel(),
			Data:    json.RawMessage(compact.Bytes()),
		},
	}
}

func isEmptyJSON(b []byte) bool {
	switch string(b) {
	case "null", "[]", "{}", `""`, "false", "0":
		return true
	}
	return false
}
