// Package fetch downloads a model pack before a render run.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	getter "github.com/hashicorp/go-getter"
)

// Dir downloads src in directory mode to dst, replacing whatever was there.
// src is any go-getter address (git::, s3::, http archives, local paths).
func Dir(ctx context.Context, src, dst string, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if src == "" {
		return fmt.Errorf("fetch: empty source")
	}
	if dst == "" {
		return fmt.Errorf("fetch: empty destination")
	}
	if err := os.RemoveAll(dst); err != nil {
		return fmt.Errorf("fetch: clear %s: %w", dst, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	pwd, err := os.Getwd()
	if err != nil {
		return err
	}

	logger.Printf("fetching %s into %s", src, dst)
	start := time.Now()
	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeDir,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	logger.Printf("fetched %s in %s", src, time.Since(start).Round(time.Millisecond))
	return nil
}
