// Package profile finds and removes on-disk cookie and cache artifacts
// across every profile under a settings directory.
package profile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/GriffinCanCode/AgentOS/media/internal/shared/paths"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// Kind selects a family of artifacts
type Kind int

const (
	Cookies Kind = iota
	Cache
)

func (k Kind) String() string {
	if k == Cache {
		return "cache"
	}
	return "cookies"
}

func (k Kind) patterns() []string {
	if k == Cache {
		return paths.CacheArtifacts
	}
	return paths.CookieArtifacts
}

// Result summarizes a purge
type Result struct {
	Removed []string
	Failed  map[string]error
}

// Sweeper purges artifacts under Base. Base is itself a profile and every
// immediate subdirectory is an account profile.
type Sweeper struct {
	Base   string
	logger *zap.Logger
}

// NewSweeper creates a sweeper rooted at base
func NewSweeper(base string, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{Base: base, logger: logger}
}

// Find returns every file under Base that belongs to kind, sorted
func (s *Sweeper) Find(ctx context.Context, kind Kind) ([]string, error) {
	if s.Base == "" {
		return nil, nil
	}
	if _, err := os.Stat(s.Base); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var patterns []string
	for _, p := range kind.patterns() {
		patterns = append(patterns, p, "*/"+p)
	}

	var (
		mu      sync.Mutex
		matches []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.Base, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.Base, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				mu.Lock()
				matches = append(matches, p)
				mu.Unlock()
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s for %s: %w", s.Base, kind, err)
	}

	sort.Strings(matches)
	return matches, nil
}

// Purge removes every artifact of kind. Individual removal failures are
// collected rather than aborting the sweep.
func (s *Sweeper) Purge(ctx context.Context, kind Kind) (Result, error) {
	files, err := s.Find(ctx, kind)
	if err != nil {
		return Result{}, err
	}

	res := Result{Failed: make(map[string]error)}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			res.Failed[f] = err
			s.logger.Warn("failed to remove profile artifact", zap.String("path", f), zap.Error(err))
			continue
		}
		res.Removed = append(res.Removed, f)
	}

	s.logger.Info("profile artifacts purged",
		zap.Stringer("kind", kind),
		zap.Int("removed", len(res.Removed)),
		zap.Int("failed", len(res.Failed)))
	return res, nil
}
