package tx

import (
	"fmt"

	"centauridb/internal/app/file"
)

// LogRecordType identifies which of the six log record variants a
// record is. The wire value is the first 4 bytes of every record.
type LogRecordType int32

const (
	Checkpoint LogRecordType = 0
	Start      LogRecordType = 1
	Commit     LogRecordType = 2
	Rollback   LogRecordType = 3
	SetInt     LogRecordType = 4
	SetString  LogRecordType = 5
)

// LogRecord is the common capability every log record variant
// implements: its op code, the transaction it belongs to (-1 for
// CHECKPOINT, which belongs to none), and how to undo it.
type LogRecord interface {
	Op() LogRecordType
	TxNumber() int
	Undo(tx *Transaction) error
}

// LogCorruptionError is returned when a log record cannot be decoded:
// an unknown op code, or a length prefix that would read past the
// record's own bytes. Recovery must stop and report rather than guess.
type LogCorruptionError struct {
	reason string
}

func (e LogCorruptionError) Error() string {
	return fmt.Sprintf("corrupt log record: %s", e.reason)
}

// CreateLogRecord decodes the op code at the front of bytes and builds
// the matching LogRecord variant.
func CreateLogRecord(bytes []byte) (LogRecord, error) {
	p := file.NewPageFromBytes(bytes)
	op := p.GetInt(0)

	switch LogRecordType(op) {
	case Checkpoint:
		return newCheckpointRecord(), nil
	case Start:
		return newStartRecord(p), nil
	case Commit:
		return newCommitRecord(p), nil
	case Rollback:
		return newRollbackRecord(p), nil
	case SetInt:
		return newSetIntRecord(p)
	case SetString:
		return newSetStringRecord(p)
	default:
		return nil, LogCorruptionError{reason: fmt.Sprintf("unknown op code %d", op)}
	}
}
