package log

import (
	"centauridb/internal/app/file"
	"fmt"
)

// LogIterator walks a log file's records in reverse order of
// insertion: newest record first, oldest last. It is lazy (one block
// is held in memory at a time) and not restartable.
type LogIterator struct {
	fm           *file.FileManager
	currentBlock file.BlockID
	page         *file.Page
	currentPos   int
	boundary     int
}

// newLogIterator positions an iterator at the boundary of blk, the
// most recently written block in the log.
func newLogIterator(fm *file.FileManager, blk file.BlockID) (*LogIterator, error) {
	li := &LogIterator{
		fm:           fm,
		currentBlock: blk,
		page:         file.NewPage(fm.BlockSize()),
	}
	if err := li.moveToBlock(blk); err != nil {
		return nil, err
	}
	return li, nil
}

// HasNext reports whether another record remains: either the current
// block has unread records, or an earlier block exists.
func (li *LogIterator) HasNext() bool {
	return li.currentPos < li.fm.BlockSize() || li.currentBlock.Number() > 0
}

// Next returns the next record in reverse-insertion order, moving to
// the previous block first if the current one is exhausted.
func (li *LogIterator) Next() ([]byte, error) {
	if li.currentPos == li.fm.BlockSize() {
		prev := file.NewBlockID(li.currentBlock.FileName(), li.currentBlock.Number()-1)
		if err := li.moveToBlock(prev); err != nil {
			return nil, err
		}
	}

	rec, err := li.page.GetBytes(li.currentPos)
	if err != nil {
		return nil, fmt.Errorf("corrupt log record in block %v at %d: %w", li.currentBlock, li.currentPos, err)
	}
	li.currentPos += 4 + len(rec)
	return rec, nil
}

// moveToBlock loads block into the iterator's page and resets the
// cursor to that block's boundary.
func (li *LogIterator) moveToBlock(block file.BlockID) error {
	if err := li.fm.Read(block, li.page); err != nil {
		return fmt.Errorf("cannot read log block %v: %w", block, err)
	}

	li.currentBlock = block
	li.boundary = int(li.page.GetInt(0))
	li.currentPos = li.boundary
	return nil
}
