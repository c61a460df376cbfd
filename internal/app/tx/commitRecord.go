package tx

import (
	"fmt"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// CommitRecord marks that a transaction's changes are durable.
type CommitRecord struct {
	txNum int
}

func newCommitRecord(p *file.Page) *CommitRecord {
	return &CommitRecord{txNum: int(p.GetInt(4))}
}

func (r *CommitRecord) Op() LogRecordType {
	return Commit
}

func (r *CommitRecord) TxNumber() int {
	return r.txNum
}

// Undo is a no-op: a committed transaction is never rolled back.
func (r *CommitRecord) Undo(tx *Transaction) error {
	return nil
}

func (r *CommitRecord) String() string {
	return fmt.Sprintf("<COMMIT %d>", r.txNum)
}

// writeCommitToLog appends a COMMIT record for txNum and returns its LSN.
func writeCommitToLog(lm *log.LogManager, txNum int) (int, error) {
	rec := make([]byte, 8)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(Commit))
	p.SetInt(4, int32(txNum))
	return lm.Append(rec)
}
