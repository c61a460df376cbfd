package tx

import (
	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// CheckpointRecord marks a point in the log before which recovery
// never needs to look: a quiescent checkpoint, written only when no
// user transaction is active.
type CheckpointRecord struct{}

func newCheckpointRecord() *CheckpointRecord {
	return &CheckpointRecord{}
}

func (r *CheckpointRecord) Op() LogRecordType {
	return Checkpoint
}

// TxNumber returns -1: a checkpoint record belongs to no transaction.
func (r *CheckpointRecord) TxNumber() int {
	return -1
}

// Undo is a no-op: a checkpoint carries no undo information.
func (r *CheckpointRecord) Undo(tx *Transaction) error {
	return nil
}

func (r *CheckpointRecord) String() string {
	return "<CHECKPOINT>"
}

// writeCheckpointToLog appends a CHECKPOINT record and returns its LSN.
func writeCheckpointToLog(lm *log.LogManager) (int, error) {
	rec := make([]byte, 4)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(Checkpoint))
	return lm.Append(rec)
}
