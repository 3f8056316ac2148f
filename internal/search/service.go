package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/revdex/revdex/internal/config"
	"github.com/revdex/revdex/internal/domain"
	"github.com/revdex/revdex/internal/reviews"
	"github.com/revdex/revdex/internal/store"
)

// LockFilename is the name of the index run lock file.
const LockFilename = "index.lock"

// Service coordinates the review store, thread reconstruction, and the
// search index. One instance drives either a batch index run or the
// read-only serving side.
type Service struct {
	settings *config.IndexSettings
	store    *store.Store
	recon    *reviews.Reconstructor
	lock     *FileLock

	index bleve.Index
	ready bool
	mu    sync.RWMutex
}

// NewService creates a search service over the given store.
func NewService(settings *config.IndexSettings, st *store.Store) (*Service, error) {
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}

	if err := os.MkdirAll(settings.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}

	return &Service{
		settings: settings,
		store:    st,
		recon:    reviews.NewReconstructor(st),
		lock:     NewFileLock(filepath.Join(settings.BaseDir, LockFilename)),
	}, nil
}

// RunStats summarizes one index run.
type RunStats struct {
	Scanned     int
	Indexed     int
	Failed      int
	FullRebuild bool
}

// RunIndex builds or updates the index over all eligible review
// requests. With full set, or when the watermark is missing or
// unreadable, the index is rebuilt from scratch; otherwise only requests
// modified since the watermark are reindexed with delete-then-add
// semantics. Per-request failures are logged and skipped; they never
// abort the batch.
func (s *Service) RunIndex(ctx context.Context, full bool) (stats RunStats, err error) {
	if err := s.lock.TryLock(); err != nil {
		return stats, fmt.Errorf("acquire index lock: %w", err)
	}
	defer func() {
		if uerr := s.lock.Unlock(); uerr != nil {
			slog.Error("Failed to release index lock", "error", uerr)
		}
	}()

	watermark := NewWatermark(filepath.Join(s.settings.BaseDir, WatermarkFilename))

	incremental := !full
	var modifiedAfter *time.Time
	if incremental {
		if t, ok := watermark.Load(); ok {
			modifiedAfter = &t
		} else {
			slog.Info("Watermark missing or unreadable, falling back to full rebuild")
			incremental = false
		}
	}
	stats.FullRebuild = !incremental

	// The watermark is written before processing begins. A run that
	// crashes mid-way leaves a window of documents the next incremental
	// run will miss; re-run with --full to recover.
	if err := watermark.Store(time.Now()); err != nil {
		return stats, fmt.Errorf("store watermark: %w", err)
	}

	requests, err := s.store.FetchEligibleRequests(ctx, s.settings.Statuses, modifiedAfter)
	if err != nil {
		return stats, fmt.Errorf("fetch eligible requests: %w", err)
	}
	stats.Scanned = len(requests)

	writer, err := OpenWriter(s.indexPath(), !incremental)
	if err != nil {
		return stats, err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	slog.Info("Indexing review requests",
		"count", len(requests), "incremental", incremental)

	for _, request := range requests {
		if err := s.indexRequest(ctx, writer, request, incremental); err != nil {
			slog.Error("Failed to index review request",
				"request_id", request.ID, "error", err)
			stats.Failed++
			continue
		}
		stats.Indexed++
	}

	slog.Info("Index run complete",
		"indexed", stats.Indexed, "failed", stats.Failed,
		"full_rebuild", stats.FullRebuild)

	return stats, nil
}

// indexRequest reconstructs one request's discussion tree, flattens it
// into a document, and replaces the request's document in the index.
func (s *Service) indexRequest(ctx context.Context, writer Writer, request *domain.ReviewRequest, incremental bool) error {
	entries, err := s.recon.Reconstruct(ctx, request)
	if err != nil {
		return err
	}

	files, err := s.store.FetchDiffFiles(ctx, request.ID)
	if err != nil {
		return err
	}

	doc, err := reviews.BuildDocument(request, entries, files)
	if err != nil {
		return err
	}

	// The backend has no native upsert; incremental runs delete the old
	// document before adding the new one.
	if incremental {
		if err := writer.DeleteDocument(doc.ID); err != nil {
			return fmt.Errorf("delete document %s: %w", doc.ID, err)
		}
	}

	if err := writer.AddDocument(doc); err != nil {
		return fmt.Errorf("add document %s: %w", doc.ID, err)
	}

	return nil
}

// OpenForSearch opens the built index read-only for the serving side.
func (s *Service) OpenForSearch() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, err := OpenForRead(s.indexPath())
	if err != nil {
		return err
	}

	s.index = index
	s.ready = true
	slog.Info("Search index ready")
	return nil
}

// IsReady reports whether the index is open for searching.
func (s *Service) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Index returns the open search index.
func (s *Service) Index() (bleve.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready || s.index == nil {
		return nil, fmt.Errorf("index not ready")
	}
	return s.index, nil
}

// GetRequest returns one review request from the store, nil when absent.
func (s *Service) GetRequest(ctx context.Context, id int64) (*domain.ReviewRequest, error) {
	return s.store.GetRequest(ctx, id)
}

// MaxResults returns the configured search result cap.
func (s *Service) MaxResults() int {
	return s.settings.MaxResults
}

// Close releases the open index, if any.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		if err := s.index.Close(); err != nil {
			return fmt.Errorf("close index: %w", err)
		}
		s.index = nil
	}
	s.ready = false
	return nil
}

func (s *Service) indexPath() string {
	return filepath.Join(s.settings.BaseDir, IndexDirName)
}
