package log

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centauridb/internal/app/file"
)

func newTestFileManager(t *testing.T, blockSize int) *file.FileManager {
	t.Helper()
	fm, err := file.NewFileManager(t.TempDir(), blockSize)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	return fm
}

func TestLogManagerAppendAndIteratorOrder(t *testing.T) {
	fm := newTestFileManager(t, 400)

	lm, err := NewLogManager(fm, "testlog")
	require.NoError(t, err)

	recordCount := 50
	records := make([][]byte, recordCount)
	for i := 0; i < recordCount; i++ {
		records[i] = []byte(fmt.Sprintf("log record %d", i+1))
		_, err := lm.Append(records[i])
		require.NoError(t, err)
	}

	iter, err := lm.Iterator()
	require.NoError(t, err)

	for i := recordCount - 1; i >= 0; i-- {
		require.True(t, iter.HasNext(), "expected record %d", i)
		rec, err := iter.Next()
		require.NoError(t, err)
		assert.Equal(t, records[i], rec)
	}
	assert.False(t, iter.HasNext())
}

func TestLogManagerFlushMakesRecordDurableAcrossBlocks(t *testing.T) {
	fm := newTestFileManager(t, 64)

	lm, err := NewLogManager(fm, "testlog")
	require.NoError(t, err)

	var lastLSN int
	for i := 0; i < 20; i++ {
		lsn, err := lm.Append([]byte(fmt.Sprintf("record-%02d", i)))
		require.NoError(t, err)
		lastLSN = lsn
	}

	require.NoError(t, lm.Flush(lastLSN))

	iter, err := lm.Iterator()
	require.NoError(t, err)
	count := 0
	for iter.HasNext() {
		_, err := iter.Next()
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 20, count)
}

func TestLogManagerSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	fm1, err := file.NewFileManager(dir, 400)
	require.NoError(t, err)
	lm1, err := NewLogManager(fm1, "testlog")
	require.NoError(t, err)
	_, err = lm1.Append([]byte("first"))
	require.NoError(t, err)
	lsn, err := lm1.Append([]byte("second"))
	require.NoError(t, err)
	require.NoError(t, lm1.Flush(lsn))
	require.NoError(t, fm1.Close())

	fm2, err := file.NewFileManager(dir, 400)
	require.NoError(t, err)
	defer fm2.Close()
	lm2, err := NewLogManager(fm2, "testlog")
	require.NoError(t, err)

	iter, err := lm2.Iterator()
	require.NoError(t, err)
	require.True(t, iter.HasNext())
	rec, err := iter.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), rec)
}
