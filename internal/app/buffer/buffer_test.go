package buffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

func newTestEngine(t *testing.T, numBuffs int) (*file.FileManager, *log.LogManager, *BufferManager) {
	t.Helper()
	fm, err := file.NewFileManager(t.TempDir(), 400)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })

	lm, err := log.NewLogManager(fm, "testlog")
	require.NoError(t, err)

	return fm, lm, NewBufferManager(fm, lm, numBuffs)
}

func TestBufferManagerPinUnpinAvailability(t *testing.T) {
	_, _, bm := newTestEngine(t, 3)
	assert.Equal(t, 3, bm.Available())

	blk := file.NewBlockID("testfile", 0)
	buff, err := bm.Pin(blk)
	require.NoError(t, err)
	assert.Equal(t, 2, bm.Available())

	bm.Unpin(buff)
	assert.Equal(t, 3, bm.Available())
}

func TestBufferManagerPinningSameBlockTwiceSharesFrame(t *testing.T) {
	_, _, bm := newTestEngine(t, 3)
	blk := file.NewBlockID("testfile", 0)

	b1, err := bm.Pin(blk)
	require.NoError(t, err)
	b2, err := bm.Pin(blk)
	require.NoError(t, err)

	assert.Same(t, b1, b2, "pinning the same block twice must return the same frame")
	assert.Equal(t, 2, bm.Available())
}

func TestBufferManagerAbortsWhenPoolExhausted(t *testing.T) {
	_, _, bm := newTestEngine(t, 1)

	_, err := bm.Pin(file.NewBlockID("testfile", 0))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := bm.Pin(file.NewBlockID("testfile", 1))
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		var abortErr BufferAbortError
		assert.ErrorAs(t, err, &abortErr)
	case <-time.After(MaxWaitTime + 5*time.Second):
		t.Fatal("Pin did not time out")
	}
}

func TestBufferSetModifiedAndFlush(t *testing.T) {
	fm, lm, bm := newTestEngine(t, 1)
	_ = fm
	_ = lm

	blk := file.NewBlockID("testfile", 0)
	buff, err := bm.Pin(blk)
	require.NoError(t, err)

	buff.Contents().SetInt(0, 99)
	lsn, err := lm.Append([]byte("dummy"))
	require.NoError(t, err)
	buff.SetModified(1, lsn)

	require.NoError(t, buff.Flush())
	assert.Equal(t, -1, buff.ModifyingTx())

	reread := file.NewPage(fm.BlockSize())
	require.NoError(t, fm.Read(blk, reread))
	assert.Equal(t, int32(99), reread.GetInt(0))
}
