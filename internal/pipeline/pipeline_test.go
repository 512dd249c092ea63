package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"transrender.dev/internal/config"
	"transrender.dev/internal/persistence/indexdb"
	persistlog "transrender.dev/internal/persistence/log"
	"transrender.dev/internal/render/raylist"
	"transrender.dev/internal/voxel"
	"transrender.dev/internal/voxel/vox"
)

func writeModel(t *testing.T, path string, colour uint8) {
	t.Helper()
	g, err := voxel.NewGrid(4, 4, 4)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	for x := 1; x < 3; x++ {
		for y := 1; y < 3; y++ {
			for z := 0; z < 2; z++ {
				g.Set(x, y, z, colour)
			}
		}
	}
	var buf bytes.Buffer
	if err := vox.Write(&buf, g); err != nil {
		t.Fatalf("vox.Write: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func testConfig(t *testing.T, input string) config.Config {
	t.Helper()
	cfg := config.Defaults()
	cfg.InputDir = input
	cfg.CacheDir = filepath.Join(t.TempDir(), "cache")
	cfg.Workers = 2
	cfg.Targets = []config.Target{
		{Folder: "1x", Scale: 1, BPP: 8},
		{Folder: "2x", Scale: 2, BPP: 32},
	}
	return cfg
}

func exists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
}

func TestRun_RendersAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, filepath.Join(dir, "car.vox"), 140)
	if err := os.WriteFile(filepath.Join(dir, "broken.vox"), []byte("not a model"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg := testConfig(t, dir)
	d, err := OpenDeps(cfg, nil)
	if err != nil {
		t.Fatalf("OpenDeps: %v", err)
	}
	defer d.Close()

	sum, err := Run(context.Background(), cfg, d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Files != 2 || sum.Rendered != 2 || sum.Failed != 2 || sum.Skipped != 0 {
		t.Fatalf("summary %+v", sum)
	}
	if sum.Bytes <= 0 {
		t.Fatalf("no bytes written: %+v", sum)
	}
	exists(t, filepath.Join(dir, "1x", "car.png"))
	exists(t, filepath.Join(dir, "2x", "car.png"))
	exists(t, filepath.Join(dir, "2x", "car.mask.png"))
	if _, err := os.Stat(filepath.Join(dir, "1x", "broken.png")); err == nil {
		t.Fatalf("broken model produced output")
	}

	// Existing outputs are kept without overwrite.
	sum, err = Run(context.Background(), cfg, d)
	if err != nil {
		t.Fatalf("Run again: %v", err)
	}
	if sum.Rendered != 0 || sum.Skipped != 2 || sum.Failed != 2 {
		t.Fatalf("second summary %+v", sum)
	}

	cfg.Overwrite = true
	sum, err = Run(context.Background(), cfg, d)
	if err != nil {
		t.Fatalf("Run overwrite: %v", err)
	}
	if sum.Rendered != 2 || sum.Skipped != 0 {
		t.Fatalf("overwrite summary %+v", sum)
	}
}

func TestRun_IndexDetectsChangedInput(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "tank.vox")
	writeModel(t, model, 140)

	cfg := testConfig(t, dir)
	cfg.Targets = cfg.Targets[:1]
	cfg.IndexDB = filepath.Join(cfg.CacheDir, "renders.sqlite")
	cfg.EventLogDir = filepath.Join(cfg.CacheDir, "events")
	d, err := OpenDeps(cfg, nil)
	if err != nil {
		t.Fatalf("OpenDeps: %v", err)
	}

	first, err := Run(context.Background(), cfg, d)
	if err != nil || first.Rendered != 1 {
		t.Fatalf("first run %+v: %v", first, err)
	}
	unchanged, err := Run(context.Background(), cfg, d)
	if err != nil || unchanged.Skipped != 1 {
		t.Fatalf("unchanged run %+v: %v", unchanged, err)
	}
	writeModel(t, model, 100)
	changed, err := Run(context.Background(), cfg, d)
	if err != nil || changed.Rendered != 1 {
		t.Fatalf("changed run %+v: %v", changed, err)
	}

	runs, err := d.Index.Runs(context.Background(), 10)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs", len(runs))
	}
	recs, err := d.Index.Renders(context.Background(), indexdb.RenderFilter{RunID: changed.RunID})
	if err != nil {
		t.Fatalf("Renders: %v", err)
	}
	if len(recs) != 1 || recs[0].Status != indexdb.StatusRendered || recs[0].Output == "" {
		t.Fatalf("renders %+v", recs)
	}
	if n := d.Index.Dropped(); n != 0 {
		t.Fatalf("index dropped %d results", n)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	logs, err := filepath.Glob(filepath.Join(cfg.EventLogDir, "renders-*.jsonl.zst"))
	if err != nil || len(logs) == 0 {
		t.Fatalf("no event logs: %v", err)
	}
	var events int
	for _, path := range logs {
		evs, err := persistlog.ReadEvents(path)
		if err != nil {
			t.Fatalf("ReadEvents: %v", err)
		}
		events += len(evs)
	}
	if events != 3 {
		t.Fatalf("got %d events", events)
	}
}

func TestRun_Fetch(t *testing.T) {
	src := t.TempDir()
	writeModel(t, filepath.Join(src, "boat.vox"), 140)

	out := t.TempDir()
	cfg := testConfig(t, out)
	cfg.Targets = cfg.Targets[:1]
	cfg.Fetch = src
	d, err := OpenDeps(cfg, nil)
	if err != nil {
		t.Fatalf("OpenDeps: %v", err)
	}
	defer d.Close()
	sum, err := Run(context.Background(), cfg, d)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Files != 1 || sum.Rendered != 1 {
		t.Fatalf("summary %+v", sum)
	}
	exists(t, filepath.Join(out, "1x", "boat.png"))
	if _, err := os.Stat(filepath.Join(cfg.CacheDir, FetchDir, "1x")); err == nil {
		t.Fatalf("sheets written into the fetched pack")
	}

	// The refetch replaces the pack but leaves the sheets alone.
	sum, err = Run(context.Background(), cfg, d)
	if err != nil {
		t.Fatalf("Run again: %v", err)
	}
	if sum.Files != 1 || sum.Rendered != 0 || sum.Skipped != 1 {
		t.Fatalf("second summary %+v", sum)
	}
}

func TestRun_Errors(t *testing.T) {
	cfg := testConfig(t, filepath.Join(t.TempDir(), "missing"))
	d := Deps{Cache: raylist.NewCache("", false, nil)}
	if _, err := Run(context.Background(), cfg, d); err == nil {
		t.Fatalf("expected error for missing input dir")
	}
	if _, err := Run(context.Background(), cfg, Deps{}); err == nil {
		t.Fatalf("expected error without cache")
	}
	cfg.Renderer = "painter"
	var ce *config.ConfigurationError
	_, err := Run(context.Background(), cfg, d)
	if err == nil {
		t.Fatalf("expected configuration error")
	}
	if !errors.As(err, &ce) || ce.Field != "renderer" {
		t.Fatalf("expected renderer ConfigurationError, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, filepath.Join(dir, "a.vox"), 140)
	cfg := testConfig(t, dir)
	d := Deps{Cache: raylist.NewCache("", false, nil)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sum, err := Run(ctx, cfg, d)
	if err == nil {
		t.Fatalf("expected context error")
	}
	if sum.Rendered != 0 {
		t.Fatalf("rendered after cancel: %+v", sum)
	}
}

func TestDiscoverSorted(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.vox", "a.VOX", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "d.vox"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	got, err := Discover(dir)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 || filepath.Base(got[0]) != "a.VOX" || filepath.Base(got[1]) != "b.vox" {
		t.Fatalf("Discover: %v", got)
	}
}
