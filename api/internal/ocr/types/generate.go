package types

import "errors"

// ErrCredentials означает, что у движка нет учётных данных; запуск без них бессмыслен.
var ErrCredentials = errors.New("google cloud credentials not found")

// GenerateRequest is one single-turn multimodal request: an image reference
// plus an instruction.
type GenerateRequest struct {
	ImageURI string // gs://bucket/object
	MIMEType string
	Prompt   string
}
