// Package vox reads and writes MagicaVoxel .vox models.
package vox

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"transrender.dev/internal/voxel"
)

// colourOffset maps MagicaVoxel palette slots onto TTD palette indices.
// Slots below the offset load as empty.
const colourOffset = 2

// FormatError reports a file that is not a usable MagicaVoxel model.
type FormatError struct {
	Path   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return "vox: " + e.Reason
	}
	return fmt.Sprintf("vox: %s: %s", e.Path, e.Reason)
}

// ReadFile loads a model from disk.
func ReadFile(path string) (*voxel.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := Read(bufio.NewReader(f))
	var fe *FormatError
	if errors.As(err, &fe) {
		fe.Path = path
	}
	return g, err
}

// Read parses the first model in r. Chunks are walked flat, so SIZE and
// XYZI are found whether or not they sit under MAIN.
func Read(r io.Reader) (*voxel.Grid, error) {
	var hdr [8]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, &FormatError{Reason: "missing header"}
	}
	if string(hdr[:4]) != "VOX " {
		return nil, &FormatError{Reason: "bad magic"}
	}

	sx, sy, sz := 0, 0, 0
	for {
		var ch [12]byte
		if _, err := io.ReadFull(r, ch[:]); err != nil {
			if err == io.EOF {
				return nil, &FormatError{Reason: "no XYZI chunk"}
			}
			return nil, &FormatError{Reason: "truncated chunk header"}
		}
		id := string(ch[:4])
		size := int32(binary.LittleEndian.Uint32(ch[4:8]))
		if size < 0 {
			return nil, &FormatError{Reason: "negative chunk size"}
		}
		switch id {
		case "SIZE":
			var dims [3]int32
			if size < 12 {
				return nil, &FormatError{Reason: "short SIZE chunk"}
			}
			if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
				return nil, &FormatError{Reason: "truncated SIZE chunk"}
			}
			if _, err := io.CopyN(io.Discard, r, int64(size-12)); err != nil {
				return nil, &FormatError{Reason: "truncated SIZE chunk"}
			}
			sx, sy, sz = int(dims[0]), int(dims[1]), int(dims[2])
		case "XYZI":
			return readVoxels(r, sx, sy, sz)
		default:
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, &FormatError{Reason: "truncated " + id + " chunk"}
			}
		}
	}
}

func readVoxels(r io.Reader, sx, sy, sz int) (*voxel.Grid, error) {
	if sx > voxel.MaxAxis || sy > voxel.MaxAxis || sz > voxel.MaxAxis {
		return nil, &FormatError{Reason: fmt.Sprintf("model %dx%dx%d too large", sx, sy, sz)}
	}
	g, err := voxel.NewGrid(sx, sy, sz)
	if err != nil {
		return nil, err
	}
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, &FormatError{Reason: "truncated XYZI chunk"}
	}
	buf := make([]byte, 4)
	for i := uint32(0); i < n; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, &FormatError{Reason: "truncated XYZI chunk"}
		}
		x, y, z, c := int(buf[0]), int(buf[1]), int(buf[2]), buf[3]
		if !g.InBounds(x, y, z) {
			return nil, &FormatError{Reason: fmt.Sprintf("voxel (%d,%d,%d) outside %dx%dx%d", x, y, z, sx, sy, sz)}
		}
		if c < colourOffset {
			continue
		}
		g.Set(x, y, z, c-colourOffset)
	}
	return g, nil
}

// Write encodes g as a single model file. Colours above 253 cannot be
// represented after the palette offset.
func Write(w io.Writer, g *voxel.Grid) error {
	var xyzi bytes.Buffer
	n := uint32(0)
	for x := 0; x < g.Width; x++ {
		for y := 0; y < g.Depth; y++ {
			for z := 0; z < g.Height; z++ {
				c := g.At(x, y, z)
				if c == 0 {
					continue
				}
				if int(c)+colourOffset > 255 {
					return fmt.Errorf("vox: colour %d at (%d,%d,%d) not representable", c, x, y, z)
				}
				xyzi.Write([]byte{byte(x), byte(y), byte(z), c + colourOffset})
				n++
			}
		}
	}

	le := binary.LittleEndian
	var body bytes.Buffer
	chunk := func(id string, content []byte) {
		body.WriteString(id)
		_ = binary.Write(&body, le, int32(len(content)))
		_ = binary.Write(&body, le, int32(0))
		body.Write(content)
	}
	var size bytes.Buffer
	_ = binary.Write(&size, le, [3]int32{int32(g.Width), int32(g.Depth), int32(g.Height)})
	chunk("SIZE", size.Bytes())
	var voxels bytes.Buffer
	_ = binary.Write(&voxels, le, n)
	voxels.Write(xyzi.Bytes())
	chunk("XYZI", voxels.Bytes())

	var out bytes.Buffer
	out.WriteString("VOX ")
	_ = binary.Write(&out, le, int32(150))
	out.WriteString("MAIN")
	_ = binary.Write(&out, le, int32(0))
	_ = binary.Write(&out, le, int32(body.Len()))
	out.Write(body.Bytes())
	_, err := w.Write(out.Bytes())
	return err
}
