package hexmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/talgya/hexmapp/internal/hexgrid"
	"github.com/talgya/hexmapp/internal/sheet"
	"github.com/talgya/hexmapp/internal/terrain"
)

// Fetcher loads the sheet rows in sheet order.
type Fetcher interface {
	Fetch(ctx context.Context) ([]sheet.Record, error)
}

// SnapshotStore keeps the last good sheet for when the fetch fails.
type SnapshotStore interface {
	SaveSnapshot(records []sheet.Record) error
	LoadSnapshot() ([]sheet.Record, time.Time, error)
}

// Source says where the current board came from.
type Source string

const (
	SourceNone     Source = "none"
	SourceSheet    Source = "sheet"
	SourceSnapshot Source = "snapshot"
)

// Status reports the state of the last refresh.
type Status struct {
	Source      Source    `json:"source"`
	Rows        int       `json:"rows"`
	Overflow    int       `json:"overflow"`
	RefreshedAt time.Time `json:"refreshed_at"`
	LastError   string    `json:"last_error,omitempty"`
}

// Service owns the current board and refreshes it from the sheet.
type Service struct {
	Table     *hexgrid.Table
	Layout    hexgrid.Layout
	Fetcher   Fetcher
	Snapshots SnapshotStore // Optional
	Filler    *terrain.Filler

	refreshMu sync.Mutex // Serializes refreshes

	mu     sync.RWMutex
	board  *Board
	status Status
}

// NewService creates a service with an empty board so readers never see nil.
func NewService(table *hexgrid.Table, layout hexgrid.Layout, fetcher Fetcher, snapshots SnapshotStore, filler *terrain.Filler) (*Service, error) {
	board, err := Bind(table, layout, nil, filler)
	if err != nil {
		return nil, err
	}
	return &Service{
		Table:     table,
		Layout:    layout,
		Fetcher:   fetcher,
		Snapshots: snapshots,
		Filler:    filler,
		board:     board,
		status:    Status{Source: SourceNone},
	}, nil
}

// Board returns the current board.
func (s *Service) Board() *Board {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board
}

// Status returns the state of the last refresh.
func (s *Service) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Refresh fetches the sheet and swaps in a new board. When the fetch fails
// and a snapshot exists, the snapshot is bound instead; the fetch error is
// still returned and recorded in Status.
func (s *Service) Refresh(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	records, fetchErr := s.Fetcher.Fetch(ctx)
	if fetchErr == nil {
		board, err := Bind(s.Table, s.Layout, records, s.Filler)
		if err != nil {
			s.recordError(err)
			return fmt.Errorf("bind sheet: %w", err)
		}
		if s.Snapshots != nil {
			if err := s.Snapshots.SaveSnapshot(records); err != nil {
				slog.Warn("snapshot save failed", "error", err)
			}
		}
		s.swap(board, SourceSheet, time.Now(), nil)
		slog.Info("board refreshed", "source", SourceSheet, "rows", len(records), "overflow", len(board.Overflow))
		return nil
	}

	fetchErr = fmt.Errorf("fetch sheet: %w", fetchErr)
	if s.Snapshots == nil || s.Status().Source != SourceNone {
		// Keep serving whatever board we already have.
		s.recordError(fetchErr)
		return fetchErr
	}

	records, savedAt, err := s.Snapshots.LoadSnapshot()
	if err != nil || len(records) == 0 {
		if err != nil {
			fetchErr = errors.Join(fetchErr, fmt.Errorf("load snapshot: %w", err))
		}
		s.recordError(fetchErr)
		return fetchErr
	}
	board, err := Bind(s.Table, s.Layout, records, s.Filler)
	if err != nil {
		fetchErr = errors.Join(fetchErr, fmt.Errorf("bind snapshot: %w", err))
		s.recordError(fetchErr)
		return fetchErr
	}
	s.swap(board, SourceSnapshot, savedAt, fetchErr)
	slog.Warn("sheet unavailable, serving snapshot", "rows", len(records), "saved_at", savedAt, "error", fetchErr)
	return fetchErr
}

func (s *Service) swap(board *Board, src Source, at time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = board
	s.status = Status{
		Source:      src,
		Rows:        board.Rows,
		Overflow:    len(board.Overflow),
		RefreshedAt: at,
	}
	if err != nil {
		s.status.LastError = err.Error()
	}
}

func (s *Service) recordError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastError = err.Error()
}

// Run refreshes on every tick until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				slog.Error("board refresh failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
