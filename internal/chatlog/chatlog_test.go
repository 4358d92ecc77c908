package chatlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/keepmind9/heliumbot/internal/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ts = time.Date(2022, 7, 20, 23, 5, 0, 0, time.UTC)

func message(content string) bot.BotMessage {
	return bot.BotMessage{
		Platform:    "discord",
		Channel:     "123",
		ChannelName: "general",
		AuthorTag:   "alice#1234",
		Content:     content,
		Timestamp:   ts,
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestRecord(t *testing.T) {
	assert.Equal(t, `2022-07-20T23:05:00Z|general|alice#1234|line one\nline two`, Record(message("line one\nline two")))
}

func TestObserve_FiltersBotsAndDirectMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "chat.log")
	l, err := Open(path)
	require.NoError(t, err)
	defer l.Close()

	fromBot := message("beep")
	fromBot.IsBot = true
	direct := message("psst")
	direct.IsDirect = true

	require.NoError(t, l.Observe(message("hello\nworld")))
	require.NoError(t, l.Observe(fromBot))
	require.NoError(t, l.Observe(direct))
	require.NoError(t, l.Observe(message("!hm stats")))

	assert.Equal(t, []string{
		`2022-07-20T23:05:00Z|general|alice#1234|hello\nworld`,
		`2022-07-20T23:05:00Z|general|alice#1234|!hm stats`,
	}, readLines(t, path))
}

func TestOpen_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.log")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o644))

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Observe(message("new")))
	require.NoError(t, l.Close())

	assert.Equal(t, []string{"existing", "2022-07-20T23:05:00Z|general|alice#1234|new"}, readLines(t, path))
}

type failingWriter struct {
	writes int
	err    error
}

func (f *failingWriter) Write(p []byte) (int, error) {
	f.writes++
	return 0, f.err
}

func (f *failingWriter) Sync() error  { return nil }
func (f *failingWriter) Close() error { return nil }

func TestObserve_DisablesAfterFailure(t *testing.T) {
	w := &failingWriter{err: errors.New("disk full")}
	l := &Logger{path: "test.log", out: w}

	err := l.Observe(message("first"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	err = l.Observe(message("second"))
	assert.ErrorIs(t, err, ErrDisabled)
	assert.Equal(t, 1, w.writes)

	// messages that are never logged do not report the failure
	direct := message("dm")
	direct.IsDirect = true
	assert.NoError(t, l.Observe(direct))
}
