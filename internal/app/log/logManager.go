package log

import (
	"centauridb/internal/app/file"
	"fmt"
	"sync"
)

// boundaryOffset is where each log block stores the byte offset of its
// most recently written record. Records grow downward from the end of
// the block toward the boundary.
const boundaryOffset = 0

// LogManager appends variable-length log records to a dedicated log
// file, filling each block from the high end down, and hands out
// strictly increasing log sequence numbers (LSNs) as it does so.
//
// It serializes Append/Flush/Iterator under a single mutex: the log is
// a shared, process-wide resource and every transaction appends to it.
type LogManager struct {
	fm           *file.FileManager
	logfile      string
	logpage      *file.Page
	currentBlock file.BlockID
	latestLSN    int
	lastSavedLSN int
	mu           sync.Mutex
}

// NewLogManager opens (or creates) logfile within fm's directory. If
// the file is empty a fresh block is allocated; otherwise the last
// block is loaded into memory so Append can continue filling it.
func NewLogManager(fm *file.FileManager, logfile string) (*LogManager, error) {
	lm := &LogManager{
		fm:      fm,
		logfile: logfile,
		logpage: file.NewPage(fm.BlockSize()),
	}

	logSize, err := fm.Length(logfile)
	if err != nil {
		return nil, fmt.Errorf("cannot determine log size: %w", err)
	}

	if logSize == 0 {
		block, err := lm.appendNewBlock()
		if err != nil {
			return nil, fmt.Errorf("cannot allocate first log block: %w", err)
		}
		lm.currentBlock = block
	} else {
		lm.currentBlock = file.NewBlockID(logfile, logSize-1)
		if err := fm.Read(lm.currentBlock, lm.logpage); err != nil {
			return nil, fmt.Errorf("cannot read last log block: %w", err)
		}
	}

	return lm, nil
}

// Append writes logrec to the log, allocating a new block first if it
// does not fit in the current one, and returns the LSN assigned to it.
// The record is not guaranteed durable until Flush(lsn) returns.
func (lm *LogManager) Append(logrec []byte) (int, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	boundary := int(lm.logpage.GetInt(boundaryOffset))
	bytesNeeded := len(logrec) + 4

	if boundary-bytesNeeded < 4 {
		if err := lm.flush(); err != nil {
			return 0, fmt.Errorf("cannot flush before rolling log block: %w", err)
		}
		block, err := lm.appendNewBlock()
		if err != nil {
			return 0, fmt.Errorf("cannot allocate log block: %w", err)
		}
		lm.currentBlock = block
		boundary = int(lm.logpage.GetInt(boundaryOffset))
	}

	recpos := boundary - bytesNeeded
	lm.logpage.SetBytes(recpos, logrec)
	lm.logpage.SetInt(boundaryOffset, int32(recpos))

	lm.latestLSN++
	return lm.latestLSN, nil
}

// appendNewBlock extends the log file by one block and initializes its
// boundary header to the block size, so the record area starts empty.
// Caller must hold lm.mu.
func (lm *LogManager) appendNewBlock() (file.BlockID, error) {
	block, err := lm.fm.Append(lm.logfile)
	if err != nil {
		return file.BlockID{}, fmt.Errorf("cannot append log block: %w", err)
	}

	lm.logpage.SetInt(boundaryOffset, int32(lm.fm.BlockSize()))
	if err := lm.fm.Write(block, lm.logpage); err != nil {
		return file.BlockID{}, fmt.Errorf("cannot write new log block: %w", err)
	}
	return block, nil
}

// Flush guarantees that the record with the given LSN (and every
// record before it) is durable. It is a no-op if that is already true.
func (lm *LogManager) Flush(lsn int) error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if lsn >= lm.lastSavedLSN {
		return lm.flush()
	}
	return nil
}

// flush writes the in-memory log page to disk. Caller must hold lm.mu.
func (lm *LogManager) flush() error {
	if err := lm.fm.Write(lm.currentBlock, lm.logpage); err != nil {
		return fmt.Errorf("cannot write log page: %w", err)
	}
	lm.lastSavedLSN = lm.latestLSN
	return nil
}

// Iterator flushes the log and returns an iterator over its records in
// reverse order of insertion, starting at the current block.
func (lm *LogManager) Iterator() (*LogIterator, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if err := lm.flush(); err != nil {
		return nil, fmt.Errorf("cannot flush before iterating: %w", err)
	}
	return newLogIterator(lm.fm, lm.currentBlock)
}
