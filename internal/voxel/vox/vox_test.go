package vox

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"transrender.dev/internal/voxel"
)

func TestWriteRead(t *testing.T) {
	g, err := voxel.NewGrid(3, 2, 4)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.Set(0, 0, 0, 140)
	g.Set(2, 1, 3, 15)
	g.Set(1, 0, 2, 82)

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Width != 3 || got.Depth != 2 || got.Height != 4 {
		t.Fatalf("dims: %dx%dx%d", got.Width, got.Depth, got.Height)
	}
	if !bytes.Equal(got.Data, g.Data) {
		t.Fatalf("voxel data mismatch")
	}
}

func TestFormatErrors(t *testing.T) {
	cases := map[string][]byte{
		"empty":     nil,
		"magic":     []byte("NOPE\x96\x00\x00\x00"),
		"no xyzi":   []byte("VOX \x96\x00\x00\x00"),
		"truncated": []byte("VOX \x96\x00\x00\x00XYZ"),
	}
	for name, data := range cases {
		_, err := Read(bytes.NewReader(data))
		var fe *FormatError
		if !errors.As(err, &fe) {
			t.Fatalf("%s: expected FormatError, got %v", name, err)
		}
	}
}

func TestReadFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.vox")
	if err := os.WriteFile(path, []byte("garbage!"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, err := ReadFile(path)
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Path != path {
		t.Fatalf("expected FormatError for %s, got %v", path, err)
	}
}
