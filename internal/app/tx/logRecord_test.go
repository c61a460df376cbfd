package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

func newTestLogManager(t *testing.T) *log.LogManager {
	t.Helper()
	fm, err := file.NewFileManager(t.TempDir(), 400)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	lm, err := log.NewLogManager(fm, "testlog")
	require.NoError(t, err)
	return lm
}

func readBack(t *testing.T, lm *log.LogManager) LogRecord {
	t.Helper()
	iter, err := lm.Iterator()
	require.NoError(t, err)
	require.True(t, iter.HasNext())
	bytes, err := iter.Next()
	require.NoError(t, err)
	rec, err := CreateLogRecord(bytes)
	require.NoError(t, err)
	return rec
}

func TestCheckpointRecordRoundTrip(t *testing.T) {
	lm := newTestLogManager(t)
	_, err := writeCheckpointToLog(lm)
	require.NoError(t, err)

	rec := readBack(t, lm)
	assert.Equal(t, Checkpoint, rec.Op())
	assert.Equal(t, -1, rec.TxNumber())
	assert.NoError(t, rec.Undo(nil))
}

func TestStartCommitRollbackRecordRoundTrip(t *testing.T) {
	lm := newTestLogManager(t)

	_, err := writeStartToLog(lm, 7)
	require.NoError(t, err)
	start := readBack(t, lm)
	assert.Equal(t, Start, start.Op())
	assert.Equal(t, 7, start.TxNumber())

	_, err = writeCommitToLog(lm, 7)
	require.NoError(t, err)
	commit := readBack(t, lm)
	assert.Equal(t, Commit, commit.Op())
	assert.Equal(t, 7, commit.TxNumber())

	_, err = writeRollbackToLog(lm, 7)
	require.NoError(t, err)
	rollback := readBack(t, lm)
	assert.Equal(t, Rollback, rollback.Op())
	assert.Equal(t, 7, rollback.TxNumber())
}

func TestSetIntRecordRoundTrip(t *testing.T) {
	lm := newTestLogManager(t)
	blk := file.NewBlockID("testfile", 3)

	_, err := writeSetIntToLog(lm, 9, blk, 24, 100)
	require.NoError(t, err)

	rec := readBack(t, lm)
	sir, ok := rec.(*SetIntRecord)
	require.True(t, ok)
	assert.Equal(t, SetInt, sir.Op())
	assert.Equal(t, 9, sir.TxNumber())
	assert.Equal(t, blk, sir.block)
	assert.Equal(t, 24, sir.offset)
	assert.Equal(t, 100, sir.oldVal)
}

func TestSetStringRecordRoundTrip(t *testing.T) {
	lm := newTestLogManager(t)
	blk := file.NewBlockID("testfile", 3)

	_, err := writeSetStringToLog(lm, 9, blk, 24, "old value")
	require.NoError(t, err)

	rec := readBack(t, lm)
	ssr, ok := rec.(*SetStringRecord)
	require.True(t, ok)
	assert.Equal(t, SetString, ssr.Op())
	assert.Equal(t, 9, ssr.TxNumber())
	assert.Equal(t, blk, ssr.block)
	assert.Equal(t, 24, ssr.offset)
	assert.Equal(t, "old value", ssr.oldVal)
}

func TestCreateLogRecordRejectsUnknownOpCode(t *testing.T) {
	rec := make([]byte, 8)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, 99)

	_, err := CreateLogRecord(rec)
	require.Error(t, err)
	var corruptionErr LogCorruptionError
	assert.ErrorAs(t, err, &corruptionErr)
}

func TestCreateLogRecordRejectsTruncatedSetStringValue(t *testing.T) {
	blk := file.NewBlockID("testfile", 3)
	rec := make([]byte, 64)
	p := file.NewPageFromBytes(rec)

	fPos := 8
	bPos := fPos + file.MaxLength(len(blk.FileName()))
	oPos := bPos + 4
	vPos := oPos + 4

	p.SetInt(0, int32(SetString))
	p.SetInt(4, 9)
	p.SetString(fPos, blk.FileName())
	p.SetInt(bPos, int32(blk.Number()))
	p.SetInt(oPos, 24)
	// A length prefix claiming far more bytes than the record holds
	// must surface a LogCorruptionError, not panic.
	p.SetInt(vPos, 1000)

	_, err := CreateLogRecord(rec)
	require.Error(t, err)
	var corruptionErr LogCorruptionError
	assert.ErrorAs(t, err, &corruptionErr)
}
