package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gcs-extract/api/internal/config"
	"gcs-extract/api/internal/extract"
	"gcs-extract/api/internal/gcs"
	"gcs-extract/api/internal/notify"
	"gcs-extract/api/internal/ocr"
	"gcs-extract/api/internal/pipeline"
	"gcs-extract/api/internal/store"
	"gcs-extract/api/internal/util"
)

type CLI struct {
	configPath string
	bucket     string
	prefix     string
	output     string
	engine     string
}

func NewCLI() *CLI {
	return &CLI{}
}

// Run never lets a panic escape; it comes back as an error for main to print.
func (c *CLI) Run(args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	fs.StringVar(&c.configPath, "config", "", "YAML config file (overrides CONFIG_FILE)")
	fs.StringVar(&c.bucket, "bucket", "", "GCS bucket to scan (overrides BUCKET_NAME)")
	fs.StringVar(&c.prefix, "prefix", "", "Object name prefix (overrides BUCKET_PREFIX)")
	fs.StringVar(&c.output, "output", "", "Output JSON file (overrides OUTPUT_FILE, default output.json)")
	fs.StringVar(&c.engine, "engine", "", "Model backend: vertex | gemini (overrides LLM_ENGINE)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.apply(cfg)

	prompt, err := util.LoadPrompt(cfg.PromptFile, extract.DefaultPrompt)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	objects := gcs.New()
	defer objects.Close()

	sinks, cleanup := c.sinks(ctx, cfg)
	defer cleanup()

	runner := pipeline.New(
		gcs.NewLister(objects),
		func(ctx context.Context) (ocr.Engine, error) {
			return ocr.NewEngine(ctx, cfg, objects)
		},
		pipeline.WithPrompt(prompt),
		pipeline.WithSinks(sinks...),
	)

	report, err := runner.Run(ctx, pipeline.Request{
		Bucket: cfg.Bucket,
		Prefix: cfg.Prefix,
		Output: cfg.OutputFile,
	})
	if err != nil {
		return err
	}

	for _, s := range report.Skipped {
		fmt.Printf("Skipped %s: %s\n", s.Locator, s.Reason)
	}
	fmt.Printf("Processed %d images: %d extracted, %d skipped\n", report.Listed, len(report.Records), len(report.Skipped))
	return nil
}

func (c *CLI) apply(cfg *config.Config) {
	if c.bucket != "" {
		cfg.Bucket = c.bucket
	}
	if c.prefix != "" {
		cfg.Prefix = c.prefix
	}
	if c.output != "" {
		cfg.OutputFile = c.output
	}
	if c.engine != "" {
		cfg.Engine = c.engine
	}
}

// sinks wires the optional result store and Telegram summary. A sink that
// cannot be set up is logged and left out.
func (c *CLI) sinks(ctx context.Context, cfg *config.Config) ([]pipeline.Sink, func()) {
	var (
		sinks   []pipeline.Sink
		closers []func()
	)

	if cfg.DatabaseURL != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("store disabled: %v", err)
		} else {
			closers = append(closers, func() { db.Close() })
			repo := store.NewExtractRepo(db)
			if err := repo.EnsureSchema(ctx); err != nil {
				log.Printf("store disabled: schema: %v", err)
			} else {
				sinks = append(sinks, repo)
				if cfg.StoreRetention > 0 {
					if n, err := repo.PurgeOlderThan(ctx, cfg.StoreRetention); err != nil {
						log.Printf("store purge: %v", err)
					} else if n > 0 {
						log.Printf("store purge: removed %d runs older than %s", n, cfg.StoreRetention)
					}
				}
			}
		}
	}

	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("telegram disabled: %v", err)
		} else {
			sinks = append(sinks, tg)
		}
	}

	return sinks, func() {
		for _, cl := range closers {
			cl()
		}
	}
}
