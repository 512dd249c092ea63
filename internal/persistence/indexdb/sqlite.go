package indexdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Render status values.
const (
	StatusRendered = "rendered"
	StatusSkipped  = "skipped"
	StatusFailed   = "failed"
)

// SQLiteIndex records render runs and per target results. Results are
// written by a single goroutine; reads go straight to the database.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Uint64
}

type reqKind int

const (
	reqRender reqKind = iota + 1
	reqFlush
)

type req struct {
	kind   reqKind
	render Render
	done   chan struct{}
}

// Run is one batch invocation.
type Run struct {
	ID       string    `json:"run_id"`
	Renderer string    `json:"renderer"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished,omitzero"`
	Rendered int       `json:"rendered"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// Render is the outcome of one input for one target.
type Render struct {
	Input      string        `json:"input"`
	Target     string        `json:"target"`
	Digest     string        `json:"digest"`
	Output     string        `json:"output,omitempty"`
	Status     string        `json:"status"`
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	RunID      string        `json:"run_id"`
	RecordedAt time.Time     `json:"recorded_at"`
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			renderer TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			rendered INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS renders (
			input TEXT NOT NULL,
			target TEXT NOT NULL,
			digest TEXT NOT NULL,
			output TEXT,
			status TEXT NOT NULL,
			error TEXT,
			duration_ns INTEGER NOT NULL,
			run_id TEXT NOT NULL,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (input, target)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_renders_run ON renders(run_id);`,
		`CREATE INDEX IF NOT EXISTS idx_renders_status ON renders(status);`,
		`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','` + schemaVersion + `');`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// Dropped counts results that never reached the database: the queue was
// full or their batch failed to insert.
func (s *SQLiteIndex) Dropped() uint64 { return s.dropped.Load() }

// BeginRun stores a new run and returns its id.
func (s *SQLiteIndex) BeginRun(renderer string) (string, error) {
	id := uuid.NewString()
	now := time.Now().UTC().Format(timeLayout)
	if _, err := s.db.Exec(`INSERT INTO runs(run_id,renderer,started_at) VALUES(?,?,?)`, id, renderer, now); err != nil {
		return "", err
	}
	return id, nil
}

// EndRun flushes pending results and stores the run totals.
func (s *SQLiteIndex) EndRun(id string, rendered, skipped, failed int) error {
	s.Flush()
	now := time.Now().UTC().Format(timeLayout)
	res, err := s.db.Exec(`UPDATE runs SET finished_at=?, rendered=?, skipped=?, failed=? WHERE run_id=?`,
		now, rendered, skipped, failed, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("unknown run %q", id)
	}
	return nil
}

// Record queues a result. It never blocks the renderer; when the queue is
// full the result is dropped and counted.
func (s *SQLiteIndex) Record(r Render) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.RecordedAt.IsZero() {
		r.RecordedAt = time.Now().UTC()
	}
	select {
	case s.ch <- req{kind: reqRender, render: r}:
	default:
		s.dropped.Add(1)
	}
}

// Flush waits until every queued result is committed.
func (s *SQLiteIndex) Flush() {
	if s == nil || s.closed.Load() {
		return
	}
	done := make(chan struct{})
	s.ch <- req{kind: reqFlush, done: done}
	<-done
}

// LastDigest returns the input digest behind the current output of input
// for target. Failed renders have no digest.
func (s *SQLiteIndex) LastDigest(input, target string) (string, bool, error) {
	var digest string
	err := s.db.QueryRow(`SELECT digest FROM renders WHERE input=? AND target=? AND status<>?`,
		input, target, StatusFailed).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return digest, true, nil
}

// Runs lists the most recent runs first.
func (s *SQLiteIndex) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id,renderer,started_at,COALESCE(finished_at,''),rendered,skipped,failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
		)
		if err := rows.Scan(&r.ID, &r.Renderer, &started, &finished, &r.Rendered, &r.Skipped, &r.Failed); err != nil {
			return nil, err
		}
		r.Started, _ = time.Parse(timeLayout, started)
		if finished != "" {
			r.Finished, _ = time.Parse(timeLayout, finished)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RenderFilter narrows Renders. Empty fields match everything.
type RenderFilter struct {
	RunID  string
	Status string
	Input  string
	Limit  int
}

func (s *SQLiteIndex) Renders(ctx context.Context, f RenderFilter) ([]Render, error) {
	var (
		where []string
		args  []any
	)
	if f.RunID != "" {
		where = append(where, "run_id=?")
		args = append(args, f.RunID)
	}
	if f.Status != "" {
		where = append(where, "status=?")
		args = append(args, f.Status)
	}
	if f.Input != "" {
		where = append(where, "input=?")
		args = append(args, f.Input)
	}
	q := `SELECT input,target,digest,COALESCE(output,''),status,COALESCE(error,''),duration_ns,run_id,recorded_at FROM renders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY input, target"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Render
	for rows.Next() {
		var (
			r        Render
			dur      int64
			recorded string
		)
		if err := rows.Scan(&r.Input, &r.Target, &r.Digest, &r.Output, &r.Status, &r.Error, &dur, &r.RunID, &recorded); err != nil {
			return nil, err
		}
		r.Duration = time.Duration(dur)
		r.RecordedAt, _ = time.Parse(timeLayout, recorded)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertRender, _ := s.db.Prepare(`INSERT OR REPLACE INTO renders(input,target,digest,output,status,error,duration_ns,run_id,recorded_at) VALUES(?,?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertRender != nil {
			_ = insertRender.Close()
		}
	}()

	var (
		tx          *sql.Tx
		opCount     int
		commitEvery = 500
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
	}
	// rollback discards the open batch; its rows count as dropped.
	rollback := func() {
		if tx == nil {
			return
		}
		s.dropped.Add(uint64(opCount))
		_ = tx.Rollback()
		tx = nil
		opCount = 0
	}

	for r := range s.ch {
		switch r.kind {
		case reqFlush:
			commit()
			close(r.done)
			continue
		case reqRender:
			begin()
			if tx == nil || insertRender == nil {
				s.dropped.Add(1)
				continue
			}
			rr := r.render
			if _, err := tx.Stmt(insertRender).Exec(
				rr.Input,
				rr.Target,
				rr.Digest,
				rr.Output,
				rr.Status,
				rr.Error,
				int64(rr.Duration),
				rr.RunID,
				rr.RecordedAt.UTC().Format(timeLayout),
			); err != nil {
				s.dropped.Add(1)
				rollback()
				continue
			}
			opCount++
		}
		// The pool holds one connection, so an idle open tx would stall readers.
		if opCount >= commitEvery || len(s.ch) == 0 {
			commit()
		}
	}

	commit()
}
