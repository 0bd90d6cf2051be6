package extract

import (
	"context"
	"errors"
	"testing"

	"gcs-extract/api/internal/ocr/types"
)

type fakeModel struct {
	replies map[string]string
	errs    map[string]error
	calls   []types.GenerateRequest
}

func (f *fakeModel) GetModel() string { return "fake-model" }

func (f *fakeModel) Generate(_ context.Context, in types.GenerateRequest) (string, error) {
	f.calls = append(f.calls, in)
	if err, ok := f.errs[in.ImageURI]; ok {
		return "", err
	}
	return f.replies[in.ImageURI], nil
}

func TestExtract_BadLocatorMakesNoCall(t *testing.T) {
	for _, loc := range []string{"", "/tmp/a.jpg", "s3://b/a.jpg", "gs://bucket-only", "https://storage.googleapis.com/b/a.jpg"} {
		m := &fakeModel{}
		out := New(m, "").Extract(context.Background(), loc)
		if out.OK() || out.Reason != ReasonBadLocator {
			t.Errorf("%q: expected BAD_LOCATOR, got %+v", loc, out)
		}
		if len(m.calls) != 0 {
			t.Errorf("%q: model called %d times", loc, len(m.calls))
		}
	}
}

func TestExtract(t *testing.T) {
	const loc = "gs://forms/scans/a.png"

	testCases := []struct {
		name     string
		reply    string
		err      error
		reason   Reason
		wantData string
	}{
		{
			name:     "plain json",
			reply:    `[{"First Name": "A", "ZIP": "10115"}]`,
			wantData: `[{"First Name":"A","ZIP":"10115"}]`,
		},
		{
			name:     "json fence",
			reply:    "```json\n[\n  {\n    \"First Name\": \"A\"\n  }\n]\n```",
			wantData: `[{"First Name":"A"}]`,
		},
		{
			name:     "fence with other indentation",
			reply:    "\n```json\n{\"First Name\": \"A\"}\n```\n",
			wantData: `{"First Name":"A"}`,
		},
		{
			name:   "not json",
			reply:  "Sorry, I cannot read this image.",
			reason: ReasonBadJSON,
		},
		{
			name:   "truncated json",
			reply:  `[{"First Name": "A"`,
			reason: ReasonBadJSON,
		},
		{
			name:   "empty",
			reply:  "  \n",
			reason: ReasonEmptyResponse,
		},
		{
			name:   "empty array",
			reply:  "[ ]",
			reason: ReasonNoData,
		},
		{
			name:   "null",
			reply:  "null",
			reason: ReasonNoData,
		},
		{
			name:   "transport error",
			err:    errors.New("rpc error: code = Unavailable"),
			reason: ReasonRequestFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := &fakeModel{replies: map[string]string{loc: tc.reply}, errs: map[string]error{}}
			if tc.err != nil {
				m.errs[loc] = tc.err
			}

			out := New(m, "").Extract(context.Background(), loc)

			if len(m.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(m.calls))
			}
			if m.calls[0].MIMEType != "image/png" || m.calls[0].Prompt != DefaultPrompt {
				t.Errorf("unexpected request: %+v", m.calls[0])
			}
			if out.Reason != tc.reason {
				t.Fatalf("Reason = %q, want %q (err=%v)", out.Reason, tc.reason, out.Err)
			}
			if tc.reason != ReasonNone {
				if out.OK() {
					t.Errorf("expected no record, got %+v", out.Record)
				}
				if tc.reason == ReasonBadJSON && out.Raw == "" {
					t.Error("raw text should be kept for BAD_JSON")
				}
				return
			}
			if !out.OK() {
				t.Fatalf("expected record, got %+v", out)
			}
			if string(out.Record.Data) != tc.wantData {
				t.Errorf("Data = %s, want %s", out.Record.Data, tc.wantData)
			}
			if out.Record.Locator != loc || out.Record.Model != "fake-model" {
				t.Errorf("unexpected record meta: %+v", out.Record)
			}
		})
	}
}

func TestNew_CustomPrompt(t *testing.T) {
	m := &fakeModel{replies: map[string]string{"gs://b/a.jpg": `{"a":1}`}}
	New(m, "custom").Extract(context.Background(), "gs://b/a.jpg")
	if len(m.calls) != 1 || m.calls[0].Prompt != "custom" || m.calls[0].MIMEType != "image/jpeg" {
		t.Errorf("unexpected calls: %+v", m.calls)
	}
}
