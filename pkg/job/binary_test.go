package job

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBinary(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		debug bool
		want  string
	}{
		{
			name:  "bin takes precedence",
			files: []string{"/repo/bin/tcp-ping-pong", "/repo/target/release/examples/tcp-ping-pong"},
			want:  "/repo/bin/tcp-ping-pong",
		},
		{
			name:  "release example",
			files: []string{"/repo/target/release/examples/tcp-ping-pong"},
			want:  "/repo/target/release/examples/tcp-ping-pong",
		},
		{
			name:  "debug example",
			files: []string{"/repo/target/release/examples/tcp-ping-pong", "/repo/target/debug/examples/tcp-ping-pong"},
			debug: true,
			want:  "/repo/target/debug/examples/tcp-ping-pong",
		},
		{
			name:  "plain target",
			files: []string{"/repo/target/release/tcp-ping-pong"},
			want:  "/repo/target/release/tcp-ping-pong",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			for _, f := range tt.files {
				require.NoError(t, afero.WriteFile(fs, f, []byte("elf"), 0o755))
			}

			got, err := ResolveBinary(fs, "/repo", "tcp-ping-pong", tt.debug)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveBinary_SkipsDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/repo/bin/tcp-ping-pong", 0o755))

	_, err := ResolveBinary(fs, "/repo", "tcp-ping-pong", false)
	assert.Error(t, err)
}

func TestResolveBinary_Absolute(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/bench/server", []byte("elf"), 0o755))

	got, err := ResolveBinary(fs, "/repo", "/opt/bench/server", false)
	require.NoError(t, err)
	assert.Equal(t, "/opt/bench/server", got)
}

func TestResolveBinary_Empty(t *testing.T) {
	_, err := ResolveBinary(afero.NewMemMapFs(), "/repo", "", false)
	assert.Error(t, err)
}
