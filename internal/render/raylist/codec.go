package raylist

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"transrender.dev/internal/render/projector"
)

// ErrCorrupt marks a ray list stream that could not be decoded.
var ErrCorrupt = errors.New("raylist: corrupt cache data")

// ZstdExt is appended to cache files written compressed.
const ZstdExt = ".zst"

type header struct {
	Width, Height       int32
	SizeX, SizeY, SizeZ int32
	Direction           int32
	Scale               float64
}

// WriteTo encodes r: a little endian header followed by, for every pixel
// in x-major order, an int32 count and count coordinate triplets.
func (r *RayList) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriterSize(w, 256*1024)
	cw := &countingWriter{w: bw}
	hdr := header{
		Width: int32(r.Width), Height: int32(r.Height),
		SizeX: int32(r.Key.SizeX), SizeY: int32(r.Key.SizeY), SizeZ: int32(r.Key.SizeZ),
		Direction: int32(r.Key.Direction),
		Scale:     r.Key.Scale,
	}
	if err := binary.Write(cw, binary.LittleEndian, hdr); err != nil {
		return cw.n, err
	}
	var cnt [4]byte
	for _, ray := range r.rays {
		binary.LittleEndian.PutUint32(cnt[:], uint32(len(ray)))
		if _, err := cw.Write(cnt[:]); err != nil {
			return cw.n, err
		}
		for _, c := range ray {
			if _, err := cw.Write(c[:]); err != nil {
				return cw.n, err
			}
		}
	}
	return cw.n, bw.Flush()
}

// Read decodes a ray list written by WriteTo. Any malformed input yields
// an error wrapping ErrCorrupt.
func Read(rd io.Reader) (*RayList, error) {
	br := bufio.NewReaderSize(rd, 256*1024)
	var hdr header
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrCorrupt, err)
	}
	k := Key{
		Direction: int(hdr.Direction),
		SizeX:     int(hdr.SizeX), SizeY: int(hdr.SizeY), SizeZ: int(hdr.SizeZ),
		Scale: hdr.Scale,
	}
	if math.IsNaN(hdr.Scale) || k.validate() != nil || hdr.Width < 0 || hdr.Height < 0 {
		return nil, fmt.Errorf("%w: bad header %+v", ErrCorrupt, hdr)
	}
	w, h := int(hdr.Width), int(hdr.Height)
	p, err := projector.New(k.Direction, k.SizeX, k.SizeY, k.SizeZ)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	// The canvas follows from the key; any other size would index pixels
	// against the wrong grid.
	if ww, hh := p.Canvas(projector.NewGeometry(k.Scale, k.SizeX).RenderScale()); w != ww || h != hh {
		return nil, fmt.Errorf("%w: canvas %dx%d, key %s needs %dx%d", ErrCorrupt, w, h, k, ww, hh)
	}
	out := &RayList{Key: k, Width: w, Height: h, rays: make([][]Coord, w*h)}
	maxRay := uint32(k.SizeX * k.SizeY * k.SizeZ)
	var cnt [4]byte
	for i := range out.rays {
		if _, err := io.ReadFull(br, cnt[:]); err != nil {
			return nil, fmt.Errorf("%w: pixel %d: %v", ErrCorrupt, i, err)
		}
		n := binary.LittleEndian.Uint32(cnt[:])
		if n > maxRay {
			return nil, fmt.Errorf("%w: pixel %d has %d entries", ErrCorrupt, i, n)
		}
		if n == 0 {
			continue
		}
		buf := make([]byte, 3*int(n))
		if _, err := io.ReadFull(br, buf); err != nil {
			return nil, fmt.Errorf("%w: pixel %d: %v", ErrCorrupt, i, err)
		}
		ray := make([]Coord, n)
		for j := range ray {
			c := Coord{buf[3*j], buf[3*j+1], buf[3*j+2]}
			if int(c[0]) >= k.SizeX || int(c[1]) >= k.SizeY || int(c[2]) >= k.SizeZ {
				return nil, fmt.Errorf("%w: pixel %d coordinate %v outside model", ErrCorrupt, i, c)
			}
			ray[j] = c
		}
		out.rays[i] = ray
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrCorrupt)
	}
	return out, nil
}

// WriteFile stores r at path, zstd compressed when path ends in ZstdExt.
// The file is written under a temporary name and renamed into place.
func WriteFile(path string, r *RayList) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := encode(f, r, strings.HasSuffix(path, ZstdExt)); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func encode(w io.Writer, r *RayList, compress bool) error {
	if !compress {
		_, err := r.WriteTo(w)
		return err
	}
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	if _, err := r.WriteTo(enc); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// ReadFile loads a ray list stored by WriteFile.
func ReadFile(path string) (*RayList, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ZstdExt) {
		return Read(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	r, err := Read(dec)
	if err != nil && !errors.Is(err, ErrCorrupt) {
		err = fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return r, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
