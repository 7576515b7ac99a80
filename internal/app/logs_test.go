package app

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "galley.log")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLogKeepsNewestLines(t *testing.T) {
	var lines []string
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("level=INFO msg=line%d", i))
	}
	path := writeLog(t, lines...)

	tests := []struct {
		name     string
		maxLines int
		want     []string
	}{
		{"partial", 3, lines[7:]},
		{"exact", 10, lines},
		{"more than file", 20, lines},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tailLog(path, tt.maxLines, slog.LevelDebug)
			if err != nil {
				t.Fatalf("tailLog: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("tailLog = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTailLogFiltersByLevel(t *testing.T) {
	path := writeLog(t,
		`time=2026-01-01T00:00:00Z level=DEBUG msg="probe ok"`,
		`time=2026-01-01T00:00:01Z level=WARN msg="disk cache write failed"`,
		`badger: plain line`,
		`time=2026-01-01T00:00:02Z level=INFO msg="galley starting"`,
		`time=2026-01-01T00:00:03Z level=ERROR msg="open cache db"`,
	)

	got, err := tailLog(path, 10, slog.LevelWarn)
	if err != nil {
		t.Fatalf("tailLog: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d lines, want 3: %v", len(got), got)
	}
	if !strings.Contains(got[0], "WARN") || got[1] != "badger: plain line" || !strings.Contains(got[2], "ERROR") {
		t.Fatalf("unexpected lines: %v", got)
	}
}

func TestTailLogMissingFile(t *testing.T) {
	got, err := tailLog(filepath.Join(t.TempDir(), "absent.log"), 5, slog.LevelDebug)
	if err != nil || got != nil {
		t.Fatalf("tailLog missing = %v, %v; want nil, nil", got, err)
	}
}

func TestLogsRejectsUnknownLevel(t *testing.T) {
	opts := writeConfig(t, "https://example.com")
	if err := Logs(opts, LogsOptions{MinLevel: "loud"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
