// Package engine wires the storage and transaction core together and
// carries out the startup contract: construct the FileManager, the
// LogManager, the BufferManager, then run a recovery transaction
// before any user transaction begins.
package engine

import (
	"fmt"
	"log"

	"centauridb/internal/app/buffer"
	"centauridb/internal/app/file"
	dblog "centauridb/internal/app/log"
	"centauridb/internal/app/tx"
)

// Defaults match the on-disk layout spec: a 400-byte block size and a
// log file named simpledb.log.
const (
	DefaultBlockSize  = 400
	DefaultBufferSize = 8
	DefaultLogFile    = "simpledb.log"
)

// Config names everything a caller needs to stand up an Engine. Zero
// values for BlockSize/BufferSize/LogFile fall back to the defaults
// above; Directory has no default and must be set.
type Config struct {
	Directory  string
	BlockSize  int
	BufferSize int
	LogFile    string
}

func (c Config) withDefaults() Config {
	if c.BlockSize == 0 {
		c.BlockSize = DefaultBlockSize
	}
	if c.BufferSize == 0 {
		c.BufferSize = DefaultBufferSize
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	return c
}

// Engine owns the process-wide FileManager, LogManager, and
// BufferManager, and hands out Transactions built on top of them.
type Engine struct {
	fm *file.FileManager
	lm *dblog.LogManager
	bm *buffer.BufferManager
}

// Open constructs an Engine per the startup contract: build the three
// managers, then run a dedicated recovery transaction. If the database
// directory already existed, that transaction calls Recover, which
// undoes any work left unfinished by a prior crash and writes a
// terminal CHECKPOINT. A freshly created directory skips recovery: it
// has no log to replay.
func Open(cfg Config) (*Engine, error) {
	cfg = cfg.withDefaults()

	fm, err := file.NewFileManager(cfg.Directory, cfg.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("cannot open file manager: %w", err)
	}

	lm, err := dblog.NewLogManager(fm, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("cannot open log manager: %w", err)
	}

	bm := buffer.NewBufferManager(fm, lm, cfg.BufferSize)

	e := &Engine{fm: fm, lm: lm, bm: bm}

	recoveryTx, err := e.NewTransaction()
	if err != nil {
		return nil, fmt.Errorf("cannot start recovery transaction: %w", err)
	}

	if fm.IsNew() {
		log.Printf("creating new database at %s", cfg.Directory)
		return e, nil
	}

	log.Printf("recovering existing database at %s", cfg.Directory)
	if err := recoveryTx.Recover(); err != nil {
		return nil, fmt.Errorf("recovery failed: %w", err)
	}
	return e, nil
}

// NewTransaction begins a new user transaction against this engine.
func (e *Engine) NewTransaction() (*tx.Transaction, error) {
	return tx.NewTransaction(e.fm, e.lm, e.bm)
}

// BlockSize returns the block size this engine's FileManager uses.
func (e *Engine) BlockSize() int {
	return e.fm.BlockSize()
}

// AvailableBuffers returns the number of currently unpinned buffers.
func (e *Engine) AvailableBuffers() int {
	return e.bm.Available()
}

// Close releases the engine's file handles and directory lock.
func (e *Engine) Close() error {
	return e.fm.Close()
}
