package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Manushivuz/IISPPR-MainSite/pkg/logger"
)

// Sweep deletes regular files in dir last modified more than maxAge ago and
// returns how many were removed. A missing dir is not an error.
func Sweep(dir string, maxAge time.Duration, now time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if now.Sub(info.ModTime()) <= maxAge {
			continue
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil {
			logger.Errorf("error deleting temp file %s: %v", e.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

// CleanupMiddleware sweeps stale temp files before an upload request is handled.
func CleanupMiddleware(dir string, maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if n, err := Sweep(dir, maxAge, time.Now()); err != nil {
			logger.Warnf("temp sweep failed: %v", err)
		} else if n > 0 {
			logger.Debugf("temp sweep removed %d file(s)", n)
		}
		c.Next()
	}
}

// StartSweeper runs Sweep every interval until ctx is done.
func StartSweeper(ctx context.Context, dir string, maxAge, interval time.Duration) {
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if _, err := Sweep(dir, maxAge, now); err != nil {
					logger.Warnf("temp sweep failed: %v", err)
				}
			}
		}
	}()
}
