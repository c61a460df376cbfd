package tx

import (
	"fmt"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// RollbackRecord marks that a transaction's changes were undone.
type RollbackRecord struct {
	txNum int
}

func newRollbackRecord(p *file.Page) *RollbackRecord {
	return &RollbackRecord{txNum: int(p.GetInt(4))}
}

func (r *RollbackRecord) Op() LogRecordType {
	return Rollback
}

func (r *RollbackRecord) TxNumber() int {
	return r.txNum
}

// Undo is a no-op: a rollback record carries no undo information.
func (r *RollbackRecord) Undo(tx *Transaction) error {
	return nil
}

func (r *RollbackRecord) String() string {
	return fmt.Sprintf("<ROLLBACK %d>", r.txNum)
}

// writeRollbackToLog appends a ROLLBACK record for txNum and returns its LSN.
func writeRollbackToLog(lm *log.LogManager, txNum int) (int, error) {
	rec := make([]byte, 8)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(Rollback))
	p.SetInt(4, int32(txNum))
	return lm.Append(rec)
}
