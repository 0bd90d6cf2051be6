package vertex

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"

	"gcs-extract/api/internal/ocr/types"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// Engine talks to Gemini through Vertex AI, bound to one project and region.
// Images are passed by gs:// reference, so the model reads them directly.
type Engine struct {
	ProjectID string
	Location  string
	Model     string

	cl *genai.Client
	m  *genai.GenerativeModel
}

func findCredentials(ctx context.Context) error {
	_, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
	return err
}

// New resolves ambient credentials (unless opts carry their own) and opens a
// session with the model configured to answer in JSON.
func New(ctx context.Context, projectID, location, model string, opts ...option.ClientOption) (*Engine, error) {
	if len(opts) == 0 {
		if err := findCredentials(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrCredentials, err)
		}
	}
	cl, err := genai.NewClient(ctx, strings.TrimSpace(projectID), strings.TrimSpace(location), opts...)
	if err != nil {
		return nil, fmt.Errorf("vertex client: %w", err)
	}

	m := cl.GenerativeModel(strings.TrimSpace(model))
	if m == nil {
		cl.Close()
		return nil, fmt.Errorf("vertex: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}

	return &Engine{
		ProjectID: projectID,
		Location:  location,
		Model:     model,
		cl:        cl,
		m:         m,
	}, nil
}

func (e *Engine) Name() string     { return "vertex" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Generate(ctx context.Context, in types.GenerateRequest) (string, error) {
	parts := []genai.Part{
		genai.FileData{MIMEType: in.MIMEType, FileURI: in.ImageURI},
		genai.Text(in.Prompt),
	}
	resp, err := e.m.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", err)
	}
	return firstText(resp), nil
}

func (e *Engine) Close() error {
	if e.cl == nil {
		return nil
	}
	return e.cl.Close()
}

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
