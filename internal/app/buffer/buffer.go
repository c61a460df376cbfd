package buffer

import (
	"fmt"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// unmodified is the sentinel transaction id meaning "this buffer has no
// pending modifications to flush."
const unmodified = -1

// noLSN is the sentinel LSN meaning "no log record corresponds to the
// buffer's current contents."
const noLSN = -1

// Buffer is one slot in the buffer pool: a Page paired with the
// BlockID it currently holds, a pin count, and enough bookkeeping
// (modifying transaction, LSN) to support write-ahead logging on
// eviction.
type Buffer struct {
	fm       *file.FileManager
	lm       *log.LogManager
	contents *file.Page
	block    *file.BlockID // nil: buffer holds no block
	pins     int
	txnum    int
	lsn      int
}

// NewBuffer allocates an unassigned buffer backed by fm and lm.
func NewBuffer(fm *file.FileManager, lm *log.LogManager) *Buffer {
	return &Buffer{
		fm:       fm,
		lm:       lm,
		contents: file.NewPage(fm.BlockSize()),
		txnum:    unmodified,
		lsn:      noLSN,
	}
}

// Contents returns the page this buffer wraps.
func (b *Buffer) Contents() *file.Page {
	return b.contents
}

// Block returns the BlockID currently assigned to this buffer, or nil
// if none is.
func (b *Buffer) Block() *file.BlockID {
	return b.block
}

// SetModified records that txnum modified this buffer's contents,
// producing the log record at lsn. Passing a negative lsn (the
// don't-log-undo path) leaves the buffer's recorded LSN untouched.
func (b *Buffer) SetModified(txnum int, lsn int) {
	b.txnum = txnum
	if lsn >= 0 {
		b.lsn = lsn
	}
}

// IsPinned reports whether the buffer has a non-zero pin count.
func (b *Buffer) IsPinned() bool {
	return b.pins > 0
}

// ModifyingTx returns the id of the transaction that last modified
// this buffer, or unmodified (-1) if it is clean.
func (b *Buffer) ModifyingTx() int {
	return b.txnum
}

// AssignToBlock flushes the buffer's current contents if dirty, then
// loads block into it and resets the pin count to zero.
func (b *Buffer) AssignToBlock(block file.BlockID) error {
	if err := b.Flush(); err != nil {
		return err
	}
	b.block = &block
	if err := b.fm.Read(block, b.contents); err != nil {
		return fmt.Errorf("cannot assign buffer to block %v: %w", block, err)
	}
	b.pins = 0
	return nil
}

// Flush writes the buffer to its disk block if it is dirty, forcing
// the log up to the buffer's LSN first so the write-ahead invariant
// holds: the record describing this change is durable before the
// change itself is.
func (b *Buffer) Flush() error {
	if b.txnum < 0 {
		return nil
	}
	if err := b.lm.Flush(b.lsn); err != nil {
		return fmt.Errorf("cannot flush log before buffer: %w", err)
	}
	if err := b.fm.Write(*b.block, b.contents); err != nil {
		return fmt.Errorf("cannot flush buffer: %w", err)
	}
	b.txnum = unmodified
	return nil
}

// Pin increments the buffer's pin count.
func (b *Buffer) Pin() {
	b.pins++
}

// Unpin decrements the buffer's pin count.
func (b *Buffer) Unpin() {
	b.pins--
}
