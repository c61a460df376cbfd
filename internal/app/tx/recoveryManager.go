package tx

import (
	"centauridb/internal/app/buffer"
	"centauridb/internal/app/log"
)

// RecoveryManager writes the log records a transaction needs for
// undo-only recovery and replays them on rollback or after a crash.
// Because a dirty buffer is always flushed before its transaction
// commits, recovery never needs a redo pass: committed work is
// already on disk, and only uncommitted work needs undoing.
type RecoveryManager struct {
	lm    *log.LogManager
	bm    *buffer.BufferManager
	tx    *Transaction
	txnum int
}

// NewRecoveryManager writes the transaction's START record and
// returns a manager bound to it.
func NewRecoveryManager(tx *Transaction, txnum int, lm *log.LogManager, bm *buffer.BufferManager) (*RecoveryManager, error) {
	rm := &RecoveryManager{lm: lm, bm: bm, tx: tx, txnum: txnum}
	if _, err := writeStartToLog(lm, txnum); err != nil {
		return nil, err
	}
	return rm, nil
}

// Commit flushes every buffer this transaction modified, then writes
// and durably flushes a COMMIT record. The buffer flush happens
// before the log flush so that, by the time COMMIT is durable, every
// change it promises is already on disk.
func (rm *RecoveryManager) Commit() error {
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeCommitToLog(rm.lm, rm.txnum)
	if err != nil {
		return err
	}
	return rm.lm.Flush(lsn)
}

// Rollback undoes this transaction's writes, flushes the affected
// buffers, then writes and flushes a ROLLBACK record.
func (rm *RecoveryManager) Rollback() error {
	if err := rm.doRollback(); err != nil {
		return err
	}
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeRollbackToLog(rm.lm, rm.txnum)
	if err != nil {
		return err
	}
	return rm.lm.Flush(lsn)
}

// Recover performs crash recovery: undo every write made by a
// transaction that never committed or rolled back, flush the
// result, and mark the log with a fresh CHECKPOINT.
func (rm *RecoveryManager) Recover() error {
	if err := rm.doRecover(); err != nil {
		return err
	}
	if err := rm.bm.FlushAll(rm.txnum); err != nil {
		return err
	}
	lsn, err := writeCheckpointToLog(rm.lm)
	if err != nil {
		return err
	}
	return rm.lm.Flush(lsn)
}

// SetInt logs the pre-image of an integer write about to be made to
// buff at offset, so it can be restored on undo. It does not touch
// buff's contents.
func (rm *RecoveryManager) SetInt(buff *buffer.Buffer, offset int) (int, error) {
	oldVal := int(buff.Contents().GetInt(offset))
	return writeSetIntToLog(rm.lm, rm.txnum, *buff.Block(), offset, oldVal)
}

// SetString logs the pre-image of a string write about to be made to
// buff at offset, so it can be restored on undo.
func (rm *RecoveryManager) SetString(buff *buffer.Buffer, offset int) (int, error) {
	oldVal, err := buff.Contents().GetString(offset)
	if err != nil {
		return 0, err
	}
	return writeSetStringToLog(rm.lm, rm.txnum, *buff.Block(), offset, oldVal)
}

// doRollback scans the log backwards, undoing every record that
// belongs to this transaction, stopping as soon as its START record
// is reached.
func (rm *RecoveryManager) doRollback() error {
	iter, err := rm.lm.Iterator()
	if err != nil {
		return err
	}

	for iter.HasNext() {
		bytes, err := iter.Next()
		if err != nil {
			return err
		}
		record, err := CreateLogRecord(bytes)
		if err != nil {
			return err
		}
		if record.TxNumber() != rm.txnum {
			continue
		}
		if record.Op() == Start {
			return nil
		}
		if err := record.Undo(rm.tx); err != nil {
			return err
		}
	}
	return nil
}

// doRecover scans the log backwards from the most recent record,
// undoing every write made by a transaction that had neither
// committed nor rolled back by the time of the crash, and stops at
// the first CHECKPOINT it encounters.
func (rm *RecoveryManager) doRecover() error {
	finished := make(map[int]struct{})

	iter, err := rm.lm.Iterator()
	if err != nil {
		return err
	}

	for iter.HasNext() {
		bytes, err := iter.Next()
		if err != nil {
			return err
		}
		record, err := CreateLogRecord(bytes)
		if err != nil {
			return err
		}

		switch record.Op() {
		case Checkpoint:
			return nil
		case Commit, Rollback:
			finished[record.TxNumber()] = struct{}{}
		default:
			if _, done := finished[record.TxNumber()]; !done {
				if err := record.Undo(rm.tx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
