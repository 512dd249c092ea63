package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"transrender.dev/internal/persistence/indexdb"
	persistlog "transrender.dev/internal/persistence/log"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "renders":
			rendersCmd(os.Args[2:])
			return
		case "events":
			eventsCmd(os.Args[2:])
			return
		case "runs":
			runsCmd(os.Args[2:])
			return
		}
	}
	runsCmd(os.Args[1:])
}

func openIndex(path string) *indexdb.SQLiteIndex {
	if strings.TrimSpace(path) == "" {
		fmt.Fprintln(os.Stderr, "missing -db")
		os.Exit(2)
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return idx
}

func runsCmd(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	dbPath := fs.String("db", "_cache/renders.sqlite", "render index path")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	idx := openIndex(*dbPath)
	defer idx.Close()
	runs, err := idx.Runs(context.Background(), *limit)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range runs {
		printJSON(r)
	}
}

func rendersCmd(args []string) {
	fs := flag.NewFlagSet("renders", flag.ExitOnError)
	dbPath := fs.String("db", "_cache/renders.sqlite", "render index path")
	runID := fs.String("run", "", "run_id filter")
	status := fs.String("status", "", "status filter: rendered, skipped or failed")
	input := fs.String("input", "", "input file name filter")
	limit := fs.Int("limit", 0, "result limit (0 = all)")
	_ = fs.Parse(args)

	idx := openIndex(*dbPath)
	defer idx.Close()
	recs, err := idx.Renders(context.Background(), indexdb.RenderFilter{
		RunID:  strings.TrimSpace(*runID),
		Status: strings.TrimSpace(*status),
		Input:  strings.TrimSpace(*input),
		Limit:  *limit,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	for _, r := range recs {
		printJSON(r)
	}
}

func eventsCmd(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	dir := fs.String("dir", "_cache/events", "event log directory")
	runID := fs.String("run", "", "run_id filter")
	failedOnly := fs.Bool("failed", false, "only failed renders")
	_ = fs.Parse(args)

	files, err := filepath.Glob(filepath.Join(*dir, "renders-*.jsonl.zst"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "glob:", err)
		os.Exit(1)
	}
	sort.Strings(files)
	for _, path := range files {
		events, err := persistlog.ReadEvents(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read:", err)
		}
		for _, e := range events {
			if *runID != "" && e.RunID != *runID {
				continue
			}
			if *failedOnly && e.Status != indexdb.StatusFailed {
				continue
			}
			printJSON(e)
		}
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
