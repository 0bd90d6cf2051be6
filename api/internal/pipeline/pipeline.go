package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"gcs-extract/api/internal/config"
	"gcs-extract/api/internal/extract"
	"gcs-extract/api/internal/logger"
	"gcs-extract/api/internal/ocr"
	"gcs-extract/api/internal/ocr/types"
	"gcs-extract/api/internal/writer"
)

type State string

const (
	StateInitializing State = "INITIALIZING"
	StateRunning      State = "RUNNING"
	StateDone         State = "DONE"
)

const NoDataMessage = "No valid data extracted from the images."

type Lister interface {
	List(ctx context.Context, bucket, prefix string) []string
}

// EngineFactory opens the model session. It is called once per run.
type EngineFactory func(ctx context.Context) (ocr.Engine, error)

// Sink receives the finished report (database, chat notification, ...).
// Sink errors never fail a run.
type Sink interface {
	Name() string
	Publish(ctx context.Context, report Report) error
}

type Request struct {
	Bucket string
	Prefix string
	Output string
}

type Skip struct {
	Locator string         `json:"locator"`
	Reason  extract.Reason `json:"reason"`
	Error   string         `json:"error,omitempty"`
}

type Report struct {
	RunID      string
	State      State
	Bucket     string
	Prefix     string
	Engine     string
	Model      string
	StartedAt  time.Time
	FinishedAt time.Time

	Listed  int
	Records []types.Record
	Skipped []Skip

	Output  string
	Written bool
}

func (r Report) Message() string {
	if r.Written {
		return fmt.Sprintf("Results saved to %s", r.Output)
	}
	return NoDataMessage
}

type Runner struct {
	lister    Lister
	newEngine EngineFactory
	prompt    string
	writer    *writer.JSONWriter[types.Record]
	sinks     []Sink
}

type Option func(*Runner)

func WithPrompt(prompt string) Option {
	return func(r *Runner) { r.prompt = prompt }
}

func WithSinks(sinks ...Sink) Option {
	return func(r *Runner) { r.sinks = append(r.sinks, sinks...) }
}

func New(lister Lister, newEngine EngineFactory, opts ...Option) *Runner {
	r := &Runner{
		lister:    lister,
		newEngine: newEngine,
		writer:    writer.NewJSONWriter(func(rec types.Record) any { return rec.Data }),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run initializes the engine once, extracts every listed image in order and
// writes the successful records to req.Output. A nil error with
// report.Written == false means nothing was extracted.
func (r *Runner) Run(ctx context.Context, req Request) (Report, error) {
	if req.Output == "" {
		req.Output = config.DefaultOutput
	}
	report := Report{
		RunID:     uuid.NewString(),
		State:     StateInitializing,
		Bucket:    req.Bucket,
		Prefix:    req.Prefix,
		Output:    req.Output,
		StartedAt: time.Now(),
	}
	logger.DebugLog("Pipeline %s started with bucket=%s, prefix=%q, output=%s", report.RunID, req.Bucket, req.Prefix, req.Output)

	engine, err := r.newEngine(ctx)
	if err != nil {
		return report, fmt.Errorf("init engine: %w", err)
	}
	defer func() {
		logger.DebugLog("Closing engine %s", engine.Name())
		if err := engine.Close(); err != nil {
			log.Printf("close engine: %v", err)
		}
	}()
	report.Engine = engine.Name()
	report.Model = engine.GetModel()
	report.State = StateRunning

	x := extract.New(engine, r.prompt)
	paths := r.lister.List(ctx, req.Bucket, req.Prefix)
	report.Listed = len(paths)

	for _, path := range paths {
		if ctx.Err() != nil {
			return report, fmt.Errorf("run %s interrupted: %w", report.RunID, ctx.Err())
		}
		out := x.Extract(ctx, path)
		if !out.OK() {
			s := Skip{Locator: out.Locator, Reason: out.Reason}
			if out.Err != nil {
				s.Error = out.Err.Error()
			}
			report.Skipped = append(report.Skipped, s)
			continue
		}
		report.Records = append(report.Records, *out.Record)
	}

	if len(report.Records) > 0 {
		if err := r.writer.WriteToFile(report.Records, req.Output); err != nil {
			return report, fmt.Errorf("write %s: %w", req.Output, err)
		}
		report.Written = true
	}
	report.State = StateDone
	report.FinishedAt = time.Now()
	log.Print(report.Message())

	for _, s := range r.sinks {
		if err := s.Publish(ctx, report); err != nil {
			log.Printf("%s: %v", s.Name(), err)
		}
	}
	return report, nil
}
