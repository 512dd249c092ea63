package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"transrender.dev/internal/render/raylist"
)

func main() {
	var (
		dir    = flag.String("dir", "_cache", "raylist cache directory")
		verify = flag.Bool("verify", false, "rebuild every list and compare it with the stored one")
		prune  = flag.Bool("prune", false, "delete files that fail to decode or verify")
	)
	flag.Parse()

	files, err := listCacheFiles(*dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("no cache files in", *dir)
		return
	}

	var (
		total uint64
		bad   int
	)
	for _, path := range files {
		fi, err := os.Stat(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "stat:", err)
			os.Exit(1)
		}
		total += uint64(fi.Size())
		name := filepath.Base(path)

		r, err := raylist.ReadFile(path)
		if err != nil {
			bad++
			fmt.Printf("%s  %s  CORRUPT: %v\n", name, humanize.Bytes(uint64(fi.Size())), err)
			removeIfPrune(*prune, path)
			continue
		}
		status := ""
		if r.Key.FileName() != strings.TrimSuffix(name, raylist.ZstdExt) {
			bad++
			status = "  MISNAMED: header says " + r.Key.String()
		} else if *verify {
			want, err := raylist.Build(r.Key)
			switch {
			case err != nil:
				bad++
				status = "  VERIFY: " + err.Error()
			case !want.Equal(r):
				bad++
				status = "  STALE"
			default:
				status = "  ok"
			}
		}
		fmt.Printf("%s  %s  dir=%d model=%dx%dx%d scale=%g canvas=%dx%d entries=%s%s\n",
			name, humanize.Bytes(uint64(fi.Size())),
			r.Key.Direction, r.Key.SizeX, r.Key.SizeY, r.Key.SizeZ, r.Key.Scale,
			r.Width, r.Height, humanize.Comma(int64(r.Entries())), status)
		if status != "" && status != "  ok" {
			removeIfPrune(*prune, path)
		}
	}
	fmt.Printf("%d files, %s", len(files), humanize.Bytes(total))
	if bad > 0 {
		fmt.Printf(", %d bad", bad)
	}
	fmt.Println()
	if bad > 0 && !*prune {
		os.Exit(1)
	}
}

func listCacheFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".voxcache") || strings.HasSuffix(name, ".voxcache"+raylist.ZstdExt) {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func removeIfPrune(prune bool, path string) {
	if !prune {
		return
	}
	if err := os.Remove(path); err != nil {
		fmt.Fprintln(os.Stderr, "remove:", err)
		return
	}
	fmt.Println("removed", filepath.Base(path))
}
