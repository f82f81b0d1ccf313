// Package tts synthesizes pronunciation audio by shelling out to an
// external text-to-speech command.
package tts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ipakeev/words-fan-bot/internal/config"
)

// Generator runs the TTS command with a hard per-attempt timeout. The
// command tends to hang before failing, so a stuck attempt is killed
// and started over, up to a bounded number of attempts. Invocations
// are spaced out to avoid flood detection on the synthesis backend.
type Generator struct {
	command     string
	tempDir     string
	timeout     time.Duration
	maxAttempts int
	minSpacing  time.Duration
	log         *slog.Logger

	mu           sync.Mutex
	lastActivity time.Time
}

// NewGenerator creates a Generator from config.
func NewGenerator(cfg config.AudioConfig, logger *slog.Logger) *Generator {
	return &Generator{
		command:     cfg.Command,
		tempDir:     cfg.TempDir,
		timeout:     cfg.Timeout,
		maxAttempts: cfg.MaxAttempts,
		minSpacing:  cfg.MinSpacing,
		log:         logger.With("adapter", "tts"),
	}
}

// Generate synthesizes text in the given language and returns the path
// of the resulting mp3 file. The caller owns the file and removes it
// when done.
func (g *Generator) Generate(ctx context.Context, langCode, text string) (string, error) {
	if err := g.waitSpacing(ctx); err != nil {
		return "", err
	}
	defer g.touch()

	if err := os.MkdirAll(g.tempDir, 0o755); err != nil {
		return "", fmt.Errorf("tts: create temp dir: %w", err)
	}
	filename := filepath.Join(g.tempDir, uuid.NewString()+".mp3")

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := g.runOnce(ctx, langCode, text, filename); err != nil {
			lastErr = err
			g.log.WarnContext(ctx, "tts attempt failed",
				slog.Int("attempt", attempt), slog.String("error", err.Error()))
			continue
		}
		return filename, nil
	}

	_ = os.Remove(filename)
	return "", fmt.Errorf("tts: %d attempts failed: %w", g.maxAttempts, lastErr)
}

// runOnce executes a single synthesis attempt. An attempt that exits
// cleanly but leaves no (or an empty) output file still counts as a
// failure.
func (g *Generator) runOnce(ctx context.Context, langCode, text, filename string) error {
	attemptCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(attemptCtx, g.command, "-l", langCode, "-o", filename, text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", g.command, err)
	}

	info, err := os.Stat(filename)
	if err != nil {
		return fmt.Errorf("output file missing: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output file is empty")
	}
	return nil
}

// waitSpacing blocks until minSpacing has elapsed since the previous
// invocation.
func (g *Generator) waitSpacing(ctx context.Context) error {
	g.mu.Lock()
	wait := g.minSpacing - time.Since(g.lastActivity)
	g.mu.Unlock()
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *Generator) touch() {
	g.mu.Lock()
	g.lastActivity = time.Now()
	g.mu.Unlock()
}
