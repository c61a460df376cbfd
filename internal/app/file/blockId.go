package file

import "fmt"

// BlockID identifies a specific block within a specific file. It is the
// unit of disk I/O the rest of the engine operates on: a buffer is pinned
// to a BlockID, a lock is taken on a BlockID, a log record names the
// BlockID it modified.
//
// BlockID is a plain comparable value: it is safe to copy, compare with
// ==, and use directly as a map key.
type BlockID struct {
	filename    string
	blockNumber int
}

// EndOfFileBlockNumber is the block number used to build a dummy BlockID
// that stands in for "the end of this file" when locking file-level
// operations such as Size/Append. It is never read or written.
const EndOfFileBlockNumber = -1

// NewBlockID returns the identifier for the given file and block number.
func NewBlockID(filename string, blockNumber int) BlockID {
	return BlockID{filename: filename, blockNumber: blockNumber}
}

// NewEndOfFileBlockID returns the dummy block used to lock file-level
// operations (Size, Append) on filename.
func NewEndOfFileBlockID(filename string) BlockID {
	return BlockID{filename: filename, blockNumber: EndOfFileBlockNumber}
}

func (b BlockID) FileName() string {
	return b.filename
}

func (b BlockID) Number() int {
	return b.blockNumber
}

// Equals reports whether b and other identify the same block.
func (b BlockID) Equals(other BlockID) bool {
	return b.filename == other.filename && b.blockNumber == other.blockNumber
}

func (b BlockID) String() string {
	return fmt.Sprintf("[file %s, block %d]", b.filename, b.blockNumber)
}
