package app

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/five82/galley/internal/config"
)

const defaultLogLines = 50

// LogsOptions select what Logs prints.
type LogsOptions struct {
	Lines    int    // zero uses 50
	MinLevel string // debug, info, warn or error; empty prints everything
}

// Logs writes the newest lines of the TUI log file to stdout. A missing log
// file prints nothing.
func Logs(opts Options, lopts LogsOptions, stdout io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	floor := slog.LevelDebug
	if strings.TrimSpace(lopts.MinLevel) != "" {
		if floor, err = config.ParseLevel(lopts.MinLevel); err != nil {
			return err
		}
	}
	lines := lopts.Lines
	if lines <= 0 {
		lines = defaultLogLines
	}

	tail, err := tailLog(cfg.LogFile, lines, floor)
	if err != nil {
		return err
	}
	for _, line := range tail {
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			return fmt.Errorf("write log: %w", err)
		}
	}
	return nil
}

// tailLog returns at most maxLines of the newest entries at or above floor.
func tailLog(path string, maxLines int, floor slog.Level) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, idx := 0, 0
	for scanner.Scan() {
		line := scanner.Text()
		if !atLeast(line, floor) {
			continue
		}
		ring[idx] = line
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	out := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			out[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(out, ring[:count])
	}
	return out, nil
}

// atLeast reports whether a slog text line is at or above floor. Lines without
// a level field are kept.
func atLeast(line string, floor slog.Level) bool {
	_, rest, ok := strings.Cut(line, "level=")
	if !ok {
		return true
	}
	field, _, _ := strings.Cut(rest, " ")
	var level slog.Level
	if err := level.UnmarshalText([]byte(field)); err != nil {
		return true
	}
	return level >= floor
}
