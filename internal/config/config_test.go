package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gomemo/internal/memo"
)

func writeProfile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gomemo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    memo.Config
		wantErr bool
	}{
		{
			name: "duration string and coalesce",
			body: "ttl: 1500ms\nmode: coalesce\nforget_failures: true\n",
			want: memo.Config{TTL: 1500 * time.Millisecond, Mode: memo.Coalescing, ForgetFailures: true},
		},
		{
			name: "integer milliseconds",
			body: "ttl: 1000\nsliding: true\n",
			want: memo.Config{TTL: time.Second, Sliding: true},
		},
		{
			name: "empty file",
			body: "",
			want: memo.Config{},
		},
		{
			name:    "bad duration",
			body:    "ttl: soon\n",
			wantErr: true,
		},
		{
			name:    "bad mode",
			body:    "mode: eventually\n",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(writeProfile(t, tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.MemoConfig())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)

	p, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]memo.Mode{
		"":           memo.Synchronous,
		"sync":       memo.Synchronous,
		"Coalesce":   memo.Coalescing,
		" async ":    memo.Coalescing,
		"coalescing": memo.Coalescing,
	} {
		got, err := ParseMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseMode("later")
	assert.Error(t, err)
}
