package fetch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestDir_LocalSource(t *testing.T) {
	src := t.TempDir()
	if err := os.WriteFile(filepath.Join(src, "car.vox"), []byte("VOX "), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	dst := filepath.Join(t.TempDir(), "cache", "fetched")

	if err := Dir(context.Background(), src, dst, nil); err != nil {
		t.Fatalf("Dir: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dst, "car.vox"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "VOX " {
		t.Fatalf("content %q", b)
	}

	// A second fetch replaces the previous one.
	if err := Dir(context.Background(), src, dst, nil); err != nil {
		t.Fatalf("Dir again: %v", err)
	}
}

func TestDir_Errors(t *testing.T) {
	ctx := context.Background()
	if err := Dir(ctx, "", t.TempDir(), nil); err == nil {
		t.Fatalf("expected error for empty source")
	}
	if err := Dir(ctx, t.TempDir(), "", nil); err == nil {
		t.Fatalf("expected error for empty destination")
	}
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	if err := Dir(ctx, missing, filepath.Join(t.TempDir(), "out"), nil); err == nil {
		t.Fatalf("expected error for missing source")
	}
}
