package file

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	dir := t.TempDir()
	fm, err := NewFileManager(dir, 400)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fm.Close() })
	return fm
}

func TestFileManagerIsNew(t *testing.T) {
	dir := t.TempDir()
	sub := dir + "/db"

	fm, err := NewFileManager(sub, 400)
	require.NoError(t, err)
	assert.True(t, fm.IsNew())
	require.NoError(t, fm.Close())

	fm2, err := NewFileManager(sub, 400)
	require.NoError(t, err)
	assert.False(t, fm2.IsNew())
	require.NoError(t, fm2.Close())
}

func TestFileManagerWriteReadRoundTrip(t *testing.T) {
	fm := newTestFileManager(t)

	blk := NewBlockID("testfile", 2)
	p1 := NewPage(fm.BlockSize())
	p1.SetString(0, "abcdefg")
	p1.SetInt(MaxLength(len("abcdefg")), 42)

	require.NoError(t, fm.Write(blk, p1))

	p2 := NewPage(fm.BlockSize())
	require.NoError(t, fm.Read(blk, p2))
	assert.Equal(t, p1.Contents(), p2.Contents())
}

func TestFileManagerReadPastEndOfFileReadsZero(t *testing.T) {
	fm := newTestFileManager(t)

	blk := NewBlockID("sparse", 5)
	p := NewPage(fm.BlockSize())
	for i := range p.Contents() {
		p.Contents()[i] = 0xFF
	}

	require.NoError(t, fm.Read(blk, p))
	for i, b := range p.Contents() {
		assert.Equalf(t, byte(0), b, "byte %d should read as zero past end of file", i)
	}
}

func TestFileManagerAppendGrowsLength(t *testing.T) {
	fm := newTestFileManager(t)

	length, err := fm.Length("growing")
	require.NoError(t, err)
	assert.Equal(t, 0, length)

	blk, err := fm.Append("growing")
	require.NoError(t, err)
	assert.Equal(t, 0, blk.Number())

	length, err = fm.Length("growing")
	require.NoError(t, err)
	assert.Equal(t, 1, length)

	blk2, err := fm.Append("growing")
	require.NoError(t, err)
	assert.Equal(t, 1, blk2.Number())
}

func TestFileManagerDeletesTempFilesOnReopen(t *testing.T) {
	dir := t.TempDir()

	fm, err := NewFileManager(dir, 400)
	require.NoError(t, err)
	_, err = fm.Append("tempscratch")
	require.NoError(t, err)
	require.NoError(t, fm.Close())

	path := dir + "/tempscratch"
	_, err = os.Stat(path)
	require.NoError(t, err)

	fm2, err := NewFileManager(dir, 400)
	require.NoError(t, err)
	defer fm2.Close()

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "temp file should be removed on reopen")
}
