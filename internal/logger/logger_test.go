package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// restoreGlobals puts Log, Sugar and the shared level back after a test that
// calls Init.
func restoreGlobals(t *testing.T) {
	t.Helper()
	prevLog, prevSugar, prevLevel := Log, Sugar, Level()
	t.Cleanup(func() {
		Log, Sugar = prevLog, prevSugar
		SetLevel(prevLevel)
	})
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestNew_FileLevels(t *testing.T) {
	dir := t.TempDir()
	defer SetLevel("info")

	for _, lvl := range []string{"debug", "info", "warn", "error"} {
		t.Run(lvl, func(t *testing.T) {
			path := filepath.Join(dir, lvl+".log")
			log := New(Options{Level: lvl, File: FileConfig{Path: path, MaxSizeMB: 1}})

			log.Debug("frame drawn")
			log.Info("palette loaded")
			log.Warn("bank out of range")
			log.Error("shader rejected")
			_ = log.Sync()

			out := readFile(t, path)
			want := map[string]bool{
				"DEBUG": lvl == "debug",
				"INFO":  lvl == "debug" || lvl == "info",
				"WARN":  lvl != "error",
				"ERROR": true,
			}
			for name, present := range want {
				if strings.Contains(out, name) != present {
					t.Errorf("level %s: %s present = %v, want %v\n%s", lvl, name, !present, present, out)
				}
			}
			if !strings.Contains(out, "logger_test.go:") {
				t.Errorf("expected caller in file output, got %q", out)
			}
		})
	}
}

func TestNew_FileRotates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "palview.log")
	log := New(Options{Level: "info", File: FileConfig{Path: path, MaxSizeMB: 1, MaxBackups: 2}})
	defer SetLevel("info")

	// Just over the 1MB limit.
	line := strings.Repeat("p", 512)
	for i := 0; i < 2200; i++ {
		log.Info(line, zap.Int("entry", i))
	}
	_ = log.Sync()

	backups, err := filepath.Glob(filepath.Join(dir, "palview-*.log"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) == 0 {
		t.Fatal("expected a rotated backup next to palview.log")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("current log missing after rotation: %v", err)
	}
}

func TestNew_ConsoleWriter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "warn", Console: &buf})
	defer SetLevel("info")

	log.Info("hidden")
	log.Warn("palette reloaded")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message written at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "palette reloaded") {
		t.Errorf("expected warn entry, got %q", out)
	}
	// Buffers are not terminals, so levels are not colored
	if strings.Contains(out, "\x1b[") {
		t.Errorf("unexpected color codes in %q", out)
	}
}

func TestNew_NoOutputs(t *testing.T) {
	log := New(Options{Level: "debug"})
	defer SetLevel("info")
	log.Error("dropped")
	if err := log.Sync(); err != nil {
		t.Errorf("sync with no cores: %v", err)
	}
}

func TestInit_ConsoleIsStderr(t *testing.T) {
	restoreGlobals(t)

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stderr := os.Stderr
	os.Stderr = w
	err = Init("info", "")
	os.Stderr = stderr
	if err != nil {
		t.Fatalf("Init: %v", err)
	}

	Info("rendered", zap.String("image", "ramp.png"))
	Debug("filtered out")
	Sync()
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "rendered") || !strings.Contains(string(out), "ramp.png") {
		t.Errorf("expected entry on stderr, got %q", out)
	}
	if strings.Contains(string(out), "filtered out") {
		t.Errorf("debug entry written at info level: %q", out)
	}
}

func TestInit_LogFile(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "paltool.log")

	if err := InitWithFileConfig("debug", DefaultFileConfig(path), false); err != nil {
		t.Fatalf("InitWithFileConfig: %v", err)
	}
	Sugar.Debugf("loaded %d palettes", 3)
	Sync()

	if out := readFile(t, path); !strings.Contains(out, "loaded 3 palettes") {
		t.Errorf("expected sugared entry in file, got %q", out)
	}
}

func TestDefaultFileConfig(t *testing.T) {
	want := FileConfig{Path: "palview.log", MaxSizeMB: 20, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if got := DefaultFileConfig("palview.log"); got != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", got, want)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Console: &buf})
	defer SetLevel("info")

	log.Debug("before")
	SetLevel("debug")
	if Level() != "debug" {
		t.Errorf("expected level debug, got %s", Level())
	}
	log.Debug("after")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("debug entry logged before level change")
	}
	if !strings.Contains(out, "after") {
		t.Error("debug entry missing after level change")
	}

	SetLevel("verbose")
	if Level() != "info" {
		t.Errorf("unknown level should fall back to info, got %s", Level())
	}
}

func TestNopBeforeInit(t *testing.T) {
	// The zero state must be safe to call.
	Info("not initialized")
	Sync()
}
