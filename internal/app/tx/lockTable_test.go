package tx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centauridb/internal/app/file"
)

func TestLockTableSharedLocksDoNotConflict(t *testing.T) {
	lt := NewLockTable()
	blk := file.NewBlockID("testfile", 0)

	require.NoError(t, lt.SLock(blk))
	require.NoError(t, lt.SLock(blk))
}

func TestLockTableExclusiveBlocksShared(t *testing.T) {
	lt := NewLockTable()
	blk := file.NewBlockID("testfile", 0)

	require.NoError(t, lt.XLock(blk))

	done := make(chan error, 1)
	go func() {
		done <- lt.SLock(blk)
	}()

	select {
	case <-done:
		t.Fatal("SLock should not succeed while an XLock is held")
	case <-time.After(200 * time.Millisecond):
	}

	lt.Unlock(blk)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("SLock should have been granted after Unlock")
	}
}

func TestLockTableAbortsOnTimeout(t *testing.T) {
	lt := NewLockTable()
	blk := file.NewBlockID("testfile", 0)

	// Two shared holders: an upgrade by one of them waits for the other,
	// which never releases.
	require.NoError(t, lt.SLock(blk))
	require.NoError(t, lt.SLock(blk))

	done := make(chan error, 1)
	go func() {
		done <- lt.XLock(blk)
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		var abortErr LockAbortError
		assert.ErrorAs(t, err, &abortErr)
	case <-time.After(MaxLockTime + 5*time.Second):
		t.Fatal("XLock did not time out")
	}
}
