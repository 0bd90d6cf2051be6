package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"gcs-extract/api/internal/pipeline"
)

const schema = `
create table if not exists extraction_runs (
  run_id      uuid primary key,
  bucket      text not null,
  prefix      text not null default '',
  engine      text not null,
  model       text not null,
  listed      int not null,
  extracted   int not null,
  skipped     int not null,
  output_path text not null,
  written     boolean not null,
  started_at  timestamptz not null,
  finished_at timestamptz not null
);
create table if not exists extracted_records (
  id          bigserial primary key,
  run_id      uuid not null references extraction_runs(run_id) on delete cascade,
  locator     text not null,
  model       text not null,
  record_json jsonb not null,
  created_at  timestamptz not null default now()
);
create table if not exists extracted_people (
  id         bigserial primary key,
  record_id  bigint not null references extracted_records(id) on delete cascade,
  first_name text not null default '',
  last_name  text not null default '',
  birth_date text not null default '',
  address    text not null default '',
  zip        text not null default ''
);
create table if not exists skipped_images (
  run_id  uuid not null references extraction_runs(run_id) on delete cascade,
  locator text not null,
  reason  text not null,
  error   text not null default ''
);`

// Open connects and pings the database.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(1 * time.Hour)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

type ExtractRepo struct{ DB *sql.DB }

func NewExtractRepo(db *sql.DB) *ExtractRepo { return &ExtractRepo{DB: db} }

func (r *ExtractRepo) Name() string { return "store" }

func (r *ExtractRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *ExtractRepo) Publish(ctx context.Context, rep pipeline.Report) error {
	return r.Save(ctx, rep)
}

// Save пишет прогон целиком в одной транзакции: run, records, people, skips.
func (r *ExtractRepo) Save(ctx context.Context, rep pipeline.Report) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const qRun = `
insert into extraction_runs (
  run_id, bucket, prefix, engine, model,
  listed, extracted, skipped, output_path, written,
  started_at, finished_at
) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	if _, err := tx.ExecContext(ctx, qRun,
		rep.RunID, rep.Bucket, rep.Prefix, rep.Engine, rep.Model,
		rep.Listed, len(rep.Records), len(rep.Skipped), rep.Output, rep.Written,
		rep.StartedAt, rep.FinishedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	const qRecord = `
insert into extracted_records (run_id, locator, model, record_json)
values ($1,$2,$3,$4) returning id`
	const qPerson = `
insert into extracted_people (record_id, first_name, last_name, birth_date, address, zip)
values ($1,$2,$3,$4,$5,$6)`
	for _, rec := range rep.Records {
		var id int64
		if err := tx.QueryRowContext(ctx, qRecord, rep.RunID, rec.Locator, rec.Model, string(rec.Data)).Scan(&id); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.Locator, err)
		}
		people, err := rec.People()
		if err != nil {
			// raw JSON is stored anyway; only the flat rows are missing
			log.Printf("store: %v", err)
			continue
		}
		for _, p := range people {
			if _, err := tx.ExecContext(ctx, qPerson, id, p.FirstName, p.LastName, p.BirthDate, p.Address, p.ZIP); err != nil {
				return fmt.Errorf("insert person %s: %w", rec.Locator, err)
			}
		}
	}

	const qSkip = `insert into skipped_images (run_id, locator, reason, error) values ($1,$2,$3,$4)`
	for _, s := range rep.Skipped {
		if _, err := tx.ExecContext(ctx, qSkip, rep.RunID, s.Locator, string(s.Reason), s.Error); err != nil {
			return fmt.Errorf("insert skip %s: %w", s.Locator, err)
		}
	}
	return tx.Commit()
}

// PurgeOlderThan удаляет старые прогоны вместе с их записями.
func (r *ExtractRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be > 0")
	}
	const q = `delete from extraction_runs where finished_at < $1`
	res, err := r.DB.ExecContext(ctx, q, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
