package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

var allKeys = []string{
	EnvOutputDir, EnvAudioOnly, EnvMaxWorkers, EnvLogLevel, EnvProgress,
	EnvPicker, EnvTranscode, EnvTagAudio, EnvTimeout,
}

// clearEnv unsets every variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)
	log, hook := test.NewNullLogger()
	cfg := FromEnv(log)
	if cfg != Default() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
	if len(hook.Entries) != 0 {
		t.Fatalf("unexpected warnings: %v", hook.AllEntries())
	}
}

func TestFromEnvValues(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Setenv(EnvOutputDir, dir)
	t.Setenv(EnvAudioOnly, "1")
	t.Setenv(EnvMaxWorkers, "3")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvProgress, "PLAIN")
	t.Setenv(EnvPicker, "tui")
	t.Setenv(EnvTranscode, "true")
	t.Setenv(EnvTagAudio, "1")
	t.Setenv(EnvTimeout, "90s")

	log, _ := test.NewNullLogger()
	cfg := FromEnv(log)
	want := Config{
		OutputDir:  dir,
		AudioOnly:  true,
		MaxWorkers: 3,
		LogLevel:   "DEBUG",
		Progress:   "plain",
		Picker:     PickerTUI,
		Transcode:  true,
		TagAudio:   true,
		Timeout:    90 * time.Second,
	}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestFromEnvFallbacks(t *testing.T) {
	tests := []struct {
		key   string
		value string
		check func(Config) bool
	}{
		{EnvMaxWorkers, "foo", func(c Config) bool { return c.MaxWorkers == 1 }},
		{EnvMaxWorkers, "0", func(c Config) bool { return c.MaxWorkers == 1 }},
		{EnvMaxWorkers, "-4", func(c Config) bool { return c.MaxWorkers == 1 }},
		{EnvProgress, "fancy", func(c Config) bool { return c.Progress == "bar" }},
		{EnvPicker, "mouse", func(c Config) bool { return c.Picker == PickerPrompt }},
		{EnvTranscode, "maybe", func(c Config) bool { return !c.Transcode }},
		{EnvTimeout, "soon", func(c Config) bool { return c.Timeout == 5*time.Minute }},
		{EnvTimeout, "-1s", func(c Config) bool { return c.Timeout == 5*time.Minute }},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)
			log, hook := test.NewNullLogger()
			cfg := FromEnv(log)
			if !tt.check(cfg) {
				t.Fatalf("unexpected fallback %+v", cfg)
			}
			if hook.LastEntry() == nil {
				t.Fatal("expected a warning")
			}
		})
	}
}

func TestAudioOnlyParsesBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
		warn  bool
	}{
		{"1", true, false},
		{"true", true, false},
		{"0", false, false},
		{"false", false, false},
		{"yes", false, true},
	}
	for _, tt := range tests {
		clearEnv(t)
		t.Setenv(EnvAudioOnly, tt.value)
		log, hook := test.NewNullLogger()
		if got := FromEnv(log).AudioOnly; got != tt.want {
			t.Fatalf("%s=%q: got %v, want %v", EnvAudioOnly, tt.value, got, tt.want)
		}
		if warned := len(hook.AllEntries()) > 0; warned != tt.warn {
			t.Fatalf("%s=%q: warned=%v, want %v", EnvAudioOnly, tt.value, warned, tt.warn)
		}
	}
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPicker, "prompt")
	file := filepath.Join(t.TempDir(), ".env")
	content := EnvMaxWorkers + "=4\n" + EnvPicker + "=tui\n"
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	log, _ := test.NewNullLogger()
	cfg := Load(log, file)
	if cfg.MaxWorkers != 4 {
		t.Fatalf("expected workers from .env, got %d", cfg.MaxWorkers)
	}
	if cfg.Picker != PickerPrompt {
		t.Fatalf("real environment must win, got %q", cfg.Picker)
	}
}

func TestLoadMissingFileIsSilent(t *testing.T) {
	clearEnv(t)
	log, hook := test.NewNullLogger()
	Load(log, filepath.Join(t.TempDir(), "absent.env"))
	if len(hook.Entries) != 0 {
		t.Fatalf("unexpected log entries: %v", hook.AllEntries())
	}
}
