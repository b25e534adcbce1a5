// Command hexmapd serves the campaign hex board: the published sheet joined
// onto the spiral grid, with a Player view and a key-unlocked GM view.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/talgya/hexmapp/internal/api"
	"github.com/talgya/hexmapp/internal/config"
	"github.com/talgya/hexmapp/internal/hexgrid"
	"github.com/talgya/hexmapp/internal/hexmap"
	"github.com/talgya/hexmapp/internal/persistence"
	"github.com/talgya/hexmapp/internal/session"
	"github.com/talgya/hexmapp/internal/sheet"
	"github.com/talgya/hexmapp/internal/terrain"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.SheetURL == "" {
		slog.Error("HEXMAPP_SHEET_URL or HEXMAPP_PUBLISH_ID is required")
		os.Exit(1)
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := openDatabase(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Grid (built once, read-only afterwards) ───────────────────────
	table, err := hexgrid.NewTable(cfg.MaxRadius, cfg.TableOptions()...)
	if err != nil {
		slog.Error("failed to build spiral table", "error", err)
		os.Exit(1)
	}
	layout := hexgrid.Layout{Size: cfg.HexSize}
	slog.Info("grid ready",
		"radius", table.Radius(),
		"hexes", table.Len(),
		"hex_size", layout.Size,
		"strict", table.Strict(),
	)

	filler := terrain.NewFiller(terrain.DefaultFillConfig(cfg.FillSeed, cfg.MaxRadius))
	if filler == nil {
		slog.Info("procedural fill disabled (HEXMAPP_FILL_SEED=0)")
	}

	// ── Board ─────────────────────────────────────────────────────────
	board, err := hexmap.NewService(table, layout, sheet.NewClient(cfg.SheetURL), db, filler)
	if err != nil {
		slog.Error("failed to create board", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	initCtx, initCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := board.Refresh(initCtx); err != nil {
		// Not fatal: the board serves the snapshot or generated terrain until the sheet answers.
		slog.Warn("initial board load incomplete", "error", err, "source", board.Status().Source)
	}
	initCancel()
	slog.Info("board ready", "board", board.Board().String())

	go board.Run(ctx, cfg.RefreshInterval)

	// ── Sessions ──────────────────────────────────────────────────────
	if cfg.GMKey == "" {
		slog.Warn("HEXMAPP_GM_KEY not set, GM unlock disabled")
	}
	sessions := session.NewStore(cfg.GMKey, db)

	// ── HTTP API ──────────────────────────────────────────────────────
	apiServer := &api.Server{
		Board:       board,
		Sessions:    sessions,
		Port:        cfg.Port,
		BasePath:    cfg.BasePath,
		CORSOrigins: cfg.CORSOrigins,
		TrustProxy:  cfg.TrustProxy,
	}
	httpServer := apiServer.Start()

	fmt.Printf("\nHex board live: %d hexes, %d sheet rows.\n", table.Len(), board.Status().Rows)
	fmt.Printf("Player view: http://localhost:%d%s/player\n", cfg.Port, cfg.BasePath)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}

	fmt.Println("Board server stopped.")
}

// openDatabase creates the database directory if needed and opens the store.
func openDatabase(path string) (*persistence.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	return persistence.Open(path)
}
