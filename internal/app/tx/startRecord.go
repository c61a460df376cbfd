package tx

import (
	"fmt"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// StartRecord marks the beginning of a transaction in the log.
type StartRecord struct {
	txNum int
}

func newStartRecord(p *file.Page) *StartRecord {
	return &StartRecord{txNum: int(p.GetInt(4))}
}

func (r *StartRecord) Op() LogRecordType {
	return Start
}

func (r *StartRecord) TxNumber() int {
	return r.txNum
}

// Undo is a no-op: a start record carries no undo information.
func (r *StartRecord) Undo(tx *Transaction) error {
	return nil
}

func (r *StartRecord) String() string {
	return fmt.Sprintf("<START %d>", r.txNum)
}

// writeStartToLog appends a START record for txNum and returns its LSN.
func writeStartToLog(lm *log.LogManager, txNum int) (int, error) {
	rec := make([]byte, 8)
	p := file.NewPageFromBytes(rec)
	p.SetInt(0, int32(Start))
	p.SetInt(4, int32(txNum))
	return lm.Append(rec)
}
