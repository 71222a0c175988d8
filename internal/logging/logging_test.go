package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestSetupLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level   string
		want    log.Level
		wantErr bool
	}{
		{level: "", want: log.InfoLevel},
		{level: "debug", want: log.DebugLevel},
		{level: "WARN", want: log.WarnLevel},
		{level: "error", want: log.ErrorLevel},
		{level: "chatty", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			logger, closer, err := setup(&buf, tt.level, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("setup() error = %v, wantErr %v", err, tt.wantErr)
			}

			if tt.wantErr {
				return
			}

			defer closer()
			if logger.GetLevel() != tt.want {
				t.Fatalf("level = %v, want %v", logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, _, err := setup(&buf, "warn", "")
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("quiet")
	logger.Warn("loud", "key", 1)
	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") || !strings.Contains(out, "key=1") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestSetupFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "logs", "wiggle.log")
	logger, closer, err := Setup("info", path)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	logger.Info("rendered", "events", 3)
	if err := closer(); err != nil {
		t.Fatalf("closer() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "rendered") || !strings.Contains(string(data), "events=3") {
		t.Fatalf("log file = %q", data)
	}
}
