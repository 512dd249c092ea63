// Package pipeline renders every model in a directory to sprite sheets,
// one sheet per configured target.
package pipeline

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"transrender.dev/internal/config"
	"transrender.dev/internal/fetch"
	"transrender.dev/internal/persistence/indexdb"
	persistlog "transrender.dev/internal/persistence/log"
	"transrender.dev/internal/render/projector"
	"transrender.dev/internal/render/raster"
	"transrender.dev/internal/render/raylist"
	"transrender.dev/internal/render/shader"
	"transrender.dev/internal/render/sheet"
	"transrender.dev/internal/render/sprite"
	"transrender.dev/internal/voxel"
	"transrender.dev/internal/voxel/vox"
)

// Ext is the model file extension picked up by Discover.
const Ext = ".vox"

// FetchDir is where a remote model pack lands, relative to the cache dir.
const FetchDir = "fetched"

// Deps are the shared services of a run. Cache is required; Index and
// Events are optional.
type Deps struct {
	Logger *log.Logger
	Cache  *raylist.Cache
	Index  *indexdb.SQLiteIndex
	Events *persistlog.EventLogger
}

// OpenDeps builds the services cfg asks for.
func OpenDeps(cfg config.Config, logger *log.Logger) (Deps, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	d := Deps{Logger: logger, Cache: raylist.NewCache(cfg.CacheDir, cfg.CacheCompress, logger)}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return d, fmt.Errorf("cache dir: %w", err)
		}
	}
	if cfg.IndexDB != "" {
		idx, err := indexdb.OpenSQLite(cfg.IndexDB)
		if err != nil {
			return d, fmt.Errorf("open index %s: %w", cfg.IndexDB, err)
		}
		d.Index = idx
	}
	if cfg.EventLogDir != "" {
		d.Events = persistlog.NewEventLogger(cfg.EventLogDir)
	}
	return d, nil
}

func (d Deps) Close() error {
	var errs []error
	if d.Events != nil {
		errs = append(errs, d.Events.Close())
	}
	if d.Index != nil {
		errs = append(errs, d.Index.Close())
	}
	return errors.Join(errs...)
}

// Summary counts target outcomes of a run.
type Summary struct {
	RunID    string
	Files    int
	Rendered int
	Skipped  int
	Failed   int
	Bytes    int64
	Elapsed  time.Duration
}

// Discover lists the model files directly inside dir, sorted by name.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), Ext) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// Run renders every model under cfg.InputDir, or under the fetched pack
// when cfg.Fetch is set. Sheets are written below cfg.InputDir. A file that cannot be read
// or rendered is logged, recorded as failed and skipped. The returned
// error covers only problems that stop the whole run.
func Run(ctx context.Context, cfg config.Config, d Deps) (Summary, error) {
	if d.Logger == nil {
		d.Logger = log.New(io.Discard, "", 0)
	}
	if d.Cache == nil {
		return Summary{}, fmt.Errorf("pipeline: nil raylist cache")
	}
	if err := cfg.Validate(); err != nil {
		return Summary{}, err
	}
	start := time.Now()

	// Fetched models are read from the cache; sheets always land under
	// the configured input dir so reruns find them.
	src := cfg.InputDir
	if cfg.Fetch != "" {
		src = filepath.Join(cfg.CacheDir, FetchDir)
		if err := fetch.Dir(ctx, cfg.Fetch, src, d.Logger); err != nil {
			return Summary{}, err
		}
	}

	files, err := Discover(src)
	if err != nil {
		return Summary{}, fmt.Errorf("discover %s: %w", src, err)
	}

	r := &runner{cfg: cfg, deps: d, kind: cfg.Kind(), total: len(files)}
	r.sum.Files = len(files)
	if d.Index != nil {
		id, err := d.Index.BeginRun(string(r.kind))
		if err != nil {
			return Summary{}, fmt.Errorf("begin run: %w", err)
		}
		r.sum.RunID = id
	}
	d.Logger.Printf("rendering %d models from %s into %s with %s (%d targets)", len(files), src, cfg.InputDir, r.kind, len(cfg.Targets))

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.file(path)
			return nil
		})
	}
	runErr := g.Wait()
	if runErr == nil {
		runErr = ctx.Err()
	}

	sum := r.summary()
	sum.Elapsed = time.Since(start)
	if d.Index != nil {
		if err := d.Index.EndRun(sum.RunID, sum.Rendered, sum.Skipped, sum.Failed); err != nil {
			d.Logger.Printf("end run %s: %v", sum.RunID, err)
		}
	}
	cs := d.Cache.Stats()
	d.Logger.Printf("done in %s: %d rendered, %d skipped, %d failed, %s written; raylists %d built, %d loaded, %d reused",
		sum.Elapsed.Round(time.Millisecond), sum.Rendered, sum.Skipped, sum.Failed,
		humanize.Bytes(uint64(sum.Bytes)), cs.Builds, cs.Loads, cs.Hits)
	if d.Index != nil {
		if n := d.Index.Dropped(); n > 0 {
			d.Logger.Printf("render index dropped %d results", n)
		}
	}
	return sum, runErr
}

type runner struct {
	cfg   config.Config
	deps  Deps
	kind  raster.Kind
	total int

	mu   sync.Mutex
	done int
	sum  Summary
}

func (r *runner) summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sum
}

type outcome struct {
	target  config.Target
	status  string
	outputs []string
	bytes   int64
	err     error
	elapsed time.Duration
	digest  string
}

// model is a loaded input, built on first use.
type model struct {
	raw    []byte
	shader *shader.Shader
	width  int
	err    error
	once   bool
}

func (m *model) load() (*shader.Shader, int, error) {
	if m.once {
		return m.shader, m.width, m.err
	}
	m.once = true
	g, err := vox.Read(bytes.NewReader(m.raw))
	if err != nil {
		m.err = err
		return nil, 0, err
	}
	p, err := voxel.Preprocess(g)
	if err != nil {
		m.err = err
		return nil, 0, err
	}
	m.shader, m.width = shader.New(p), g.Width
	return m.shader, m.width, nil
}

func (r *runner) file(path string) {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))

	var results []outcome
	raw, err := os.ReadFile(path)
	if err != nil {
		for _, t := range r.cfg.Targets {
			results = append(results, outcome{target: t, status: indexdb.StatusFailed, err: err})
		}
		r.finish(name, results)
		return
	}
	sum := sha256.Sum256(raw)
	m := &model{raw: raw}

	for _, t := range r.cfg.Targets {
		digest := targetDigest(sum, t, r.kind)
		base := filepath.Join(r.cfg.InputDir, t.Folder, stem)
		if r.upToDate(name, t, base, digest) {
			results = append(results, outcome{target: t, status: indexdb.StatusSkipped, digest: digest})
			continue
		}
		start := time.Now()
		files, n, err := r.render(m, t, base)
		o := outcome{target: t, status: indexdb.StatusRendered, outputs: files, bytes: n, err: err, elapsed: time.Since(start), digest: digest}
		if err != nil {
			o.status = indexdb.StatusFailed
		}
		results = append(results, o)
	}
	r.finish(name, results)
}

// upToDate reports whether the target output can be kept.
func (r *runner) upToDate(input string, t config.Target, base, digest string) bool {
	if r.cfg.Overwrite {
		return false
	}
	if _, err := os.Stat(base + ".png"); err != nil {
		return false
	}
	if r.deps.Index == nil {
		return true
	}
	last, ok, err := r.deps.Index.LastDigest(input, t.Folder)
	if err != nil {
		r.deps.Logger.Printf("%s: index lookup: %v", input, err)
		return true
	}
	return !ok || last == digest
}

func (r *runner) render(m *model, t config.Target, base string) ([]string, int64, error) {
	sh, width, err := m.load()
	if err != nil {
		return nil, 0, err
	}
	geo := projector.NewGeometry(t.Scale, width)
	st, err := raster.New(r.kind, sh, geo, r.deps.Cache)
	if err != nil {
		return nil, 0, err
	}
	sprites := make([]*sprite.Sprite, projector.Directions)
	for dir := range sprites {
		s, err := sprite.Render(st, dir, geo.Factor)
		if err != nil {
			return nil, 0, fmt.Errorf("direction %d: %w", dir, err)
		}
		sprites[dir] = s
	}
	out, err := sheet.Compose(sheet.Layout{Scale: t.Scale}, sprites)
	if err != nil {
		return nil, 0, err
	}
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return nil, 0, err
	}
	files, err := out.Save(base, t.BPP)
	if err != nil {
		return files, 0, err
	}
	var n int64
	for _, f := range files {
		if fi, err := os.Stat(f); err == nil {
			n += fi.Size()
		}
	}
	return files, n, nil
}

func (r *runner) finish(input string, results []outcome) {
	r.mu.Lock()
	r.done++
	done := r.done
	runID := r.sum.RunID
	var parts []string
	for _, o := range results {
		switch o.status {
		case indexdb.StatusRendered:
			r.sum.Rendered++
			r.sum.Bytes += o.bytes
		case indexdb.StatusSkipped:
			r.sum.Skipped++
		default:
			r.sum.Failed++
		}
		parts = append(parts, o.target.Folder+"="+o.status)
	}
	r.mu.Unlock()

	r.deps.Logger.Printf("[%d/%d] %s: %s", done, r.total, input, strings.Join(parts, " "))
	for _, o := range results {
		var msg string
		if o.err != nil {
			msg = o.err.Error()
			r.deps.Logger.Printf("%s (%s): %v", input, o.target.Folder, o.err)
		}
		if r.deps.Index != nil {
			rec := indexdb.Render{
				Input:    input,
				Target:   o.target.Folder,
				Digest:   o.digest,
				Status:   o.status,
				Error:    msg,
				Duration: o.elapsed,
				RunID:    runID,
			}
			if len(o.outputs) > 0 {
				rec.Output = o.outputs[0]
			}
			r.deps.Index.Record(rec)
		}
		if r.deps.Events != nil {
			ev := persistlog.Event{
				RunID:    runID,
				Input:    input,
				Target:   o.target.Folder,
				Renderer: string(r.kind),
				Status:   o.status,
				Outputs:  o.outputs,
				Error:    msg,
				Millis:   o.elapsed.Milliseconds(),
			}
			if err := r.deps.Events.WriteEvent(ev); err != nil {
				r.deps.Logger.Printf("event log: %v", err)
			}
		}
	}
}

// targetDigest identifies the input bytes together with everything that
// shapes the output.
func targetDigest(input [sha256.Size]byte, t config.Target, kind raster.Kind) string {
	h := sha256.New()
	h.Write(input[:])
	fmt.Fprintf(h, "|%s|%g|%d|%s", t.Folder, t.Scale, t.BPP, kind)
	return hex.EncodeToString(h.Sum(nil))
}
