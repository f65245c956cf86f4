package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"budget/internal/config"
	"budget/internal/log"
	"budget/internal/state"
	"budget/internal/state/memory"
	"budget/internal/state/sqlite"
)

func TestNewStore(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		backend string
		check   func(state.Store) bool
		wantErr bool
	}{
		{config.BackendMemory, func(s state.Store) bool { _, ok := s.(*memory.Store); return ok }, false},
		{config.BackendSQLite, func(s state.Store) bool { _, ok := s.(*sqlite.Store); return ok }, false},
		{"redis", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			s, err := NewStore(ctx, &config.Config{StateBackend: tt.backend})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewStore: %v", err)
			}
			defer s.Close()
			if !tt.check(s) {
				t.Fatalf("wrong store type %T", s)
			}
			if err := s.Dispatch(ctx, state.AddBudget(10)); err != nil {
				t.Fatalf("dispatch: %v", err)
			}
		})
	}
}

func TestLoadCategories(t *testing.T) {
	cats, err := LoadCategories(&config.Config{})
	if err != nil || len(cats) == 0 {
		t.Fatalf("default categories: %v %d", err, len(cats))
	}

	_, err = LoadCategories(&config.Config{CategoriesFile: filepath.Join(t.TempDir(), "missing.toml")})
	if err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	for _, key := range []string{"STATE_BACKEND", "CATEGORIES_FILE", "AMQP_URL", "SESSION_TTL", "SESSION_MAX", "SESSION_CLEANUP_INTERVAL"} {
		t.Setenv(key, "")
	}

	tests := []struct {
		name     string
		port     string
		logLevel string
		wantErr  bool
	}{
		{"defaults", "", "", false},
		{"padded log level", "", " info ", false},
		{"bad port", "abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			t.Setenv("LOG_LEVEL", tt.logLevel)

			cfg, err := LoadAndValidateConfig()
			if !tt.wantErr {
				if err != nil || cfg == nil {
					t.Fatalf("LoadAndValidateConfig() = %v, %v", cfg, err)
				}
				if _, err := SetupLogger(cfg.LogLevel); err != nil {
					t.Fatalf("validated level rejected by logger: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected an error")
			}
			if n := strings.Count(err.Error(), "configuration validation failed"); n != 1 {
				t.Errorf("prefix repeated %d times: %v", n, err)
			}
		})
	}
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := SetupLogger("loud"); err == nil {
		t.Fatalf("expected an error")
	}
}

func TestDispatchLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(&buf, nil),
	})

	s := memory.New()
	s.Subscribe(DispatchLogger(logger))
	if err := s.Dispatch(context.Background(), state.AddBudget(300)); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Action dispatched", "action=add-budget", "budget=300", "remaining=300"} {
		if !strings.Contains(out, want) {
			t.Errorf("log line missing %q: %s", want, out)
		}
	}
}
