package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMake_WriterAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New().ToWriter(&buf).WithLevel("warn").Make()
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	l.Logger.Info().Msg("hidden")
	l.Logger.Warn().Str("pageId", "p1").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %s", out)
	}
	if !strings.Contains(out, `"pageId":"p1"`) || !strings.Contains(out, `"time"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestMake_UnknownLevelKeepsDefault(t *testing.T) {
	var buf bytes.Buffer
	l, _ := New().ToWriter(&buf).WithLevel("loud").Make()
	l.Logger.Debug().Msg("debug")
	l.Logger.Info().Msg("info")
	if strings.Contains(buf.String(), `"debug"`) || !strings.Contains(buf.String(), "info") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestMake_Path(t *testing.T) {
	path := filepath.Join(t.TempDir(), "editor.log")
	l, err := New().ToPath(path).Make()
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	l.Logger.Info().Msg("to file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q", data)
	}
}
