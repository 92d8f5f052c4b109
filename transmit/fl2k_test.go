package transmit

import (
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plc4trucks/keyholetx/config"
)

type recordingWriter struct {
	writes [][]byte
	err    error
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	w.writes = append(w.writes, append([]byte(nil), p...))
	return len(p), nil
}

func (w *recordingWriter) Close() error { return nil }

func Test_NewFL2K_Defaults(t *testing.T) {
	tx := NewFL2K(config.TransmitConf{}, 1e6)

	assert.Equal(t, DefaultFL2KPath, tx.Path)
	assert.Equal(t, DefaultChunkSize, tx.ChunkSize)
	assert.Equal(t, float64(DefaultWarmupSecs), tx.WarmupSecs)
	assert.Equal(t, float64(DefaultCooldownSecs), tx.CooldownSecs)
	assert.Equal(t, "idle", tx.State)
}

func Test_writeChunked(t *testing.T) {
	w := &recordingWriter{}
	tx := NewFL2K(config.TransmitConf{ChunkSize: 4}, 1e6)
	tx.stdin = w

	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	require.NoError(t, tx.writeChunked(buf))

	// chunk boundaries respected, bytes delivered in order
	require.Len(t, w.writes, 3)
	assert.Equal(t, []byte{1, 2, 3, 4}, w.writes[0])
	assert.Equal(t, []byte{5, 6, 7, 8}, w.writes[1])
	assert.Equal(t, []byte{9, 10}, w.writes[2])
	assert.Equal(t, int64(len(buf)), tx.BytesWritten)
}

func Test_Stream_ClosedPipeIsCleanShutdown(t *testing.T) {
	tx := NewFL2K(config.TransmitConf{}, 1e6)
	tx.stdin = &recordingWriter{err: syscall.EPIPE}

	err := tx.Stream([][]byte{{1, 2, 3}})
	assert.NoError(t, err)
	assert.Equal(t, "stopped", tx.State)
}

func Test_Stream_StopEndsLoop(t *testing.T) {
	w := &recordingWriter{}
	tx := NewFL2K(config.TransmitConf{ChunkSize: 8}, 1e6)
	tx.stdin = w
	tx.Stop()

	require.NoError(t, tx.Stream([][]byte{{1, 2, 3}}))
	assert.Empty(t, w.writes)
	assert.Equal(t, "stopped", tx.State)
}
