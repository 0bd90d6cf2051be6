package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"gcs-extract/api/internal/gcs"
	"gcs-extract/api/internal/ocr/types"
	"gcs-extract/api/internal/util"
)

// ObjectReader загружает байты объекта из бакета (Gemini API не читает gs:// сам).
type ObjectReader interface {
	ReadObject(ctx context.Context, bucket, object string) ([]byte, error)
}

type Engine struct {
	Model string

	objects ObjectReader
	cl      *genai.Client
	m       *genai.GenerativeModel
}

func New(ctx context.Context, apiKey, model string, objects ObjectReader) (*Engine, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", types.ErrCredentials)
	}
	if objects == nil {
		return nil, errors.New("gemini: object reader is nil")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	m := cl.GenerativeModel(strings.TrimSpace(model))
	if m == nil {
		cl.Close()
		return nil, fmt.Errorf("gemini: model is nil")
	}
	// Возвращаем строго JSON
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	return &Engine{
		Model:   strings.TrimSpace(model),
		objects: objects,
		cl:      cl,
		m:       m,
	}, nil
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// Generate downloads the image and sends it inline together with the prompt.
func (e *Engine) Generate(ctx context.Context, in types.GenerateRequest) (string, error) {
	bucket, object, ok := gcs.ParseURI(in.ImageURI)
	if !ok {
		return "", fmt.Errorf("gemini: bad image uri %q", in.ImageURI)
	}
	img, err := e.objects.ReadObject(ctx, bucket, object)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if len(img) == 0 {
		return "", fmt.Errorf("gemini: %s is empty", in.ImageURI)
	}

	parts := []genai.Part{
		genai.Blob{MIMEType: util.PickMIME(in.MIMEType, img), Data: img},
		genai.Text(in.Prompt),
	}
	resp, err := e.m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return firstText(resp), nil
}

func (e *Engine) Close() error {
	if e.cl == nil {
		return nil
	}
	return e.cl.Close()
}

// --------------------------- helpers ---------------------------

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
