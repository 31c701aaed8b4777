package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_LogsEachLine(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	w := Writer(logger, "tcp-ping-pong-10", "server", zerolog.InfoLevel)
	n, err := w.Write([]byte("listening\n\nround 1 done\n"))
	require.NoError(t, err)
	assert.Equal(t, len("listening\n\nround 1 done\n"), n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"message":"listening"`)
	assert.Contains(t, lines[0], `"scenario":"tcp-ping-pong-10"`)
	assert.Contains(t, lines[0], `"role":"server"`)
	assert.Contains(t, lines[1], `"message":"round 1 done"`)
}

func TestWriter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.InfoLevel)

	w := Writer(logger, "tcp-ping-pong-10", "client", zerolog.DebugLevel)
	w.Write([]byte("hidden\n"))
	assert.Empty(t, buf.String())
}

func TestWriter_JoinsLinesAcrossWrites(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	w := Writer(logger, "tcp-ping-pong-10", "client", zerolog.InfoLevel)
	w.Write([]byte("round 1 do"))
	assert.Empty(t, buf.String(), "nothing is logged before the line is complete")

	w.Write([]byte("ne\r\nround 2"))
	w.Write([]byte(" done\nbye"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"message":"round 1 done"`)
	assert.Contains(t, lines[1], `"message":"round 2 done"`)

	require.NoError(t, w.Close())
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], `"message":"bye"`)

	require.NoError(t, w.Close())
	assert.Len(t, strings.Split(strings.TrimSpace(buf.String()), "\n"), 3, "close is idempotent")
}

func TestLastMsgFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	require.NoError(t, os.WriteFile(path, []byte("first\nsecond\nlast line\n\n"), 0o644))

	msg, err := LastMsgFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "last line", msg)

	msg, err = LastMsgFromFile(path, func(b []byte) (string, error) {
		return strings.ToUpper(string(b)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "LAST LINE", msg)
}

func TestLastMsgFromFile_Missing(t *testing.T) {
	_, err := LastMsgFromFile(filepath.Join(t.TempDir(), "nope.log"))
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.Disabled, ParseLevel(""))
	assert.Equal(t, zerolog.Disabled, ParseLevel("loud"))
}
