package tx

import (
	"log"
	"sync"
	"sync/atomic"

	"centauridb/internal/app/buffer"
	"centauridb/internal/app/file"
	dblog "centauridb/internal/app/log"
)

var nextTxNum atomic.Int64 // process-wide counter handing out transaction numbers

// sharedLockTable is the one LockTable every transaction in the
// process contends on, as required by the one-LockTable-per-process
// resource model.
var (
	sharedLockTableOnce sync.Once
	sharedLockTable     *LockTable
)

func lockTable() *LockTable {
	sharedLockTableOnce.Do(func() {
		sharedLockTable = NewLockTable()
	})
	return sharedLockTable
}

// Transaction is the central façade of the engine: it composes buffer
// management, concurrency control, and recovery logging behind a
// single API, and it is the unit at which ACID guarantees apply.
type Transaction struct {
	rm        *RecoveryManager
	cm        *ConcurrencyManager
	bm        *buffer.BufferManager
	fm        *file.FileManager
	lm        *dblog.LogManager
	txnum     int
	myBuffers *BufferList
}

// NewTransaction begins a new transaction against the given engine
// components, writing its START record.
func NewTransaction(fm *file.FileManager, lm *dblog.LogManager, bm *buffer.BufferManager) (*Transaction, error) {
	txNum := nextTxNumber()

	tx := &Transaction{
		fm:        fm,
		bm:        bm,
		lm:        lm,
		txnum:     txNum,
		cm:        NewConcurrencyManager(lockTable()),
		myBuffers: NewBufferList(bm),
	}

	rm, err := NewRecoveryManager(tx, txNum, lm, bm)
	if err != nil {
		return nil, err
	}
	tx.rm = rm
	return tx, nil
}

// Commit makes the transaction's changes durable, releases every lock
// it holds, and unpins its buffers. The transaction must not be used
// afterward. Locks and buffers are released even if the recovery
// manager fails, since a terminal transaction releases them exactly
// once regardless of outcome.
func (tx *Transaction) Commit() (err error) {
	defer func() {
		tx.cm.Release()
		tx.myBuffers.UnpinAll()
	}()
	if err = tx.rm.Commit(); err != nil {
		return err
	}
	log.Printf("transaction %d committed", tx.txnum)
	return nil
}

// Rollback undoes every change the transaction made, releases its
// locks, and unpins its buffers. The transaction must not be used
// afterward. Locks and buffers are released even if the recovery
// manager fails, since a terminal transaction releases them exactly
// once regardless of outcome.
func (tx *Transaction) Rollback() (err error) {
	defer func() {
		tx.cm.Release()
		tx.myBuffers.UnpinAll()
	}()
	if err = tx.rm.Rollback(); err != nil {
		return err
	}
	log.Printf("transaction %d rolled back", tx.txnum)
	return nil
}

// Recover runs crash recovery: it flushes the buffers this transaction
// has modified and then undoes any transaction that was left
// unfinished at the time of the crash.
// It is meant to be called once, by the system's startup recovery
// transaction.
func (tx *Transaction) Recover() error {
	if err := tx.bm.FlushAll(tx.txnum); err != nil {
		return err
	}
	return tx.rm.Recover()
}

// Pin loads block into the buffer pool, if it isn't already, and
// marks it in use by this transaction.
func (tx *Transaction) Pin(block file.BlockID) error {
	return tx.myBuffers.Pin(block)
}

// Unpin releases this transaction's claim on block.
func (tx *Transaction) Unpin(block file.BlockID) {
	tx.myBuffers.Unpin(block)
}

// GetInt reads the integer at offset in block, under a shared lock.
func (tx *Transaction) GetInt(block file.BlockID, offset int) (int32, error) {
	if err := tx.cm.SLock(block); err != nil {
		return 0, err
	}
	buff, err := tx.myBuffers.GetBuffer(block)
	if err != nil {
		return 0, err
	}
	return buff.Contents().GetInt(offset), nil
}

// GetString reads the string at offset in block, under a shared lock.
func (tx *Transaction) GetString(block file.BlockID, offset int) (string, error) {
	if err := tx.cm.SLock(block); err != nil {
		return "", err
	}
	buff, err := tx.myBuffers.GetBuffer(block)
	if err != nil {
		return "", err
	}
	return buff.Contents().GetString(offset)
}

// SetInt writes val at offset in block, under an exclusive lock. The
// old value is logged first so it can be restored on undo.
func (tx *Transaction) SetInt(block file.BlockID, offset int, val int) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buff, err := tx.myBuffers.GetBuffer(block)
	if err != nil {
		return err
	}

	lsn, err := tx.rm.SetInt(buff, offset)
	if err != nil {
		return err
	}

	buff.Contents().SetInt(offset, int32(val))
	buff.SetModified(tx.txnum, lsn)
	return nil
}

// SetString writes val at offset in block, under an exclusive lock. The
// old value is logged first so it can be restored on undo.
func (tx *Transaction) SetString(block file.BlockID, offset int, val string) error {
	if err := tx.cm.XLock(block); err != nil {
		return err
	}
	buff, err := tx.myBuffers.GetBuffer(block)
	if err != nil {
		return err
	}

	lsn, err := tx.rm.SetString(buff, offset)
	if err != nil {
		return err
	}

	buff.Contents().SetString(offset, val)
	buff.SetModified(tx.txnum, lsn)
	return nil
}

// restoreInt writes val at offset in block without acquiring a lock or
// logging a new record. It is used only by LogRecord.Undo: the
// recovery transaction acts as a bystander replaying pre-images, not a
// participant contending for locks in the shared LockTable, and the
// write it performs must never itself be undoable.
func (tx *Transaction) restoreInt(block file.BlockID, offset int, val int) error {
	buff, err := tx.myBuffers.GetBuffer(block)
	if err != nil {
		return err
	}
	buff.Contents().SetInt(offset, int32(val))
	buff.SetModified(tx.txnum, -1)
	return nil
}

// restoreString is the string counterpart of restoreInt.
func (tx *Transaction) restoreString(block file.BlockID, offset int, val string) error {
	buff, err := tx.myBuffers.GetBuffer(block)
	if err != nil {
		return err
	}
	buff.Contents().SetString(offset, val)
	buff.SetModified(tx.txnum, -1)
	return nil
}

// Size returns the number of blocks in filename. It locks the file's
// dummy end-of-file block exclusively, not shared: this serializes
// size() against append() on the same file, so a concurrent append
// cannot be observed mid-extension.
func (tx *Transaction) Size(filename string) (int, error) {
	dummyBlock := file.NewEndOfFileBlockID(filename)
	if err := tx.cm.XLock(dummyBlock); err != nil {
		return 0, err
	}
	return tx.fm.Length(filename)
}

// Append adds a new block to the end of filename and returns its
// BlockID, under an exclusive lock on the file's dummy end-of-file
// block.
func (tx *Transaction) Append(filename string) (file.BlockID, error) {
	dummyBlock := file.NewEndOfFileBlockID(filename)
	if err := tx.cm.XLock(dummyBlock); err != nil {
		return file.BlockID{}, err
	}
	return tx.fm.Append(filename)
}

// BlockSize returns the engine's fixed block size in bytes.
func (tx *Transaction) BlockSize() int {
	return tx.fm.BlockSize()
}

// AvailableBuffers returns the number of currently unpinned buffers.
func (tx *Transaction) AvailableBuffers() int {
	return tx.bm.Available()
}

// nextTxNumber hands out a fresh, process-wide unique transaction number.
func nextTxNumber() int {
	next := nextTxNum.Add(1)
	log.Printf("new transaction: %d", next)
	return int(next)
}
