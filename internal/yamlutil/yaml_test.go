package yamlutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-mmd2pdf/internal/yamlutil"
)

type testConfig struct {
	Name    string   `yaml:"name"`
	Count   int      `yaml:"count"`
	Enabled bool     `yaml:"enabled"`
	Tags    []string `yaml:"tags"`
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Strict decoding
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
		wantAny bool
		check   func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("name: test\ncount: 42\nenabled: true\ntags: [a, b]"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if cfg.Name != "test" || cfg.Count != 42 || !cfg.Enabled || len(cfg.Tags) != 2 {
					t.Errorf("decoded %+v", cfg)
				}
			},
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("name: test"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "unknown field rejected",
			data:    []byte("name: test\nunknown: 1"),
			dest:    &testConfig{},
			wantAny: true,
		},
		{
			name:    "invalid syntax",
			data:    []byte("name: [unclosed"),
			dest:    &testConfig{},
			wantAny: true,
		},
		{
			name:    "too large",
			data:    []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize)),
			dest:    &testConfig{},
			wantErr: yamlutil.ErrInputTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.UnmarshalStrict(tt.data, tt.dest)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			case tt.wantAny:
				if err == nil {
					t.Error("expected error")
				} else if !strings.HasPrefix(err.Error(), "yamlutil:") {
					t.Errorf("error %q should carry the yamlutil prefix", err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				tt.check(t, tt.dest)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestReadFileStrict - File decoding
// ---------------------------------------------------------------------------

func TestReadFileStrict(t *testing.T) {
	t.Parallel()

	t.Run("reads file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "c.yaml")
		if err := os.WriteFile(path, []byte("name: from-file\n"), 0o600); err != nil {
			t.Fatal(err)
		}

		var cfg testConfig
		if err := yamlutil.ReadFileStrict(path, &cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Name != "from-file" {
			t.Errorf("Name = %q, want %q", cfg.Name, "from-file")
		}
	})

	t.Run("missing file keeps not-exist error", func(t *testing.T) {
		t.Parallel()

		var cfg testConfig
		err := yamlutil.ReadFileStrict(filepath.Join(t.TempDir(), "missing.yaml"), &cfg)
		if !os.IsNotExist(err) {
			t.Errorf("error = %v, want not-exist", err)
		}
	})

	t.Run("oversized file rejected", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "big.yaml")
		data := []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize+10))
		if err := os.WriteFile(path, data, 0o600); err != nil {
			t.Fatal(err)
		}

		var cfg testConfig
		if err := yamlutil.ReadFileStrict(path, &cfg); !errors.Is(err, yamlutil.ErrInputTooLarge) {
			t.Errorf("error = %v, want ErrInputTooLarge", err)
		}
	})
}
