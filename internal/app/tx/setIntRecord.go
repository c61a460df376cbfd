package tx

import (
	"fmt"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// SetIntRecord captures the pre-image of an integer write: the value
// that was AT offset in block before the transaction overwrote it.
// Undoing it restores that old value; it never carries the new one.
type SetIntRecord struct {
	txNum  int
	block  file.BlockID
	offset int
	oldVal int
}

func newSetIntRecord(p *file.Page) (*SetIntRecord, error) {
	txNum := int(p.GetInt(4))

	fPos := 8
	filename, err := p.GetString(fPos)
	if err != nil {
		return nil, LogCorruptionError{reason: fmt.Sprintf("SETINT filename: %v", err)}
	}

	bPos := fPos + file.MaxLength(len(filename))
	blockNum := int(p.GetInt(bPos))

	oPos := bPos + 4
	offset := int(p.GetInt(oPos))

	vPos := oPos + 4
	oldVal := int(p.GetInt(vPos))

	return &SetIntRecord{
		txNum:  txNum,
		block:  file.NewBlockID(filename, blockNum),
		offset: offset,
		oldVal: oldVal,
	}, nil
}

func (r *SetIntRecord) Op() LogRecordType {
	return SetInt
}

func (r *SetIntRecord) TxNumber() int {
	return r.txNum
}

func (r *SetIntRecord) String() string {
	return fmt.Sprintf("<SETINT %d %v %d %d>", r.txNum, r.block, r.offset, r.oldVal)
}

// Undo restores oldVal at offset in block, pinning the block for the
// duration and writing the restoration directly through the buffer
// pool: it does not lock and does not write a new log record.
func (r *SetIntRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.restoreInt(r.block, r.offset, r.oldVal)
}

// writeSetIntToLog appends a SETINT record carrying the pre-image
// (oldVal) of the write about to be made to block at offset.
func writeSetIntToLog(lm *log.LogManager, txNum int, block file.BlockID, offset int, oldVal int) (int, error) {
	fPos := 8
	bPos := fPos + file.MaxLength(len(block.FileName()))
	oPos := bPos + 4
	vPos := oPos + 4

	rec := make([]byte, vPos+4)
	p := file.NewPageFromBytes(rec)

	p.SetInt(0, int32(SetInt))
	p.SetInt(4, int32(txNum))
	p.SetString(fPos, block.FileName())
	p.SetInt(bPos, int32(block.Number()))
	p.SetInt(oPos, int32(offset))
	p.SetInt(vPos, int32(oldVal))

	return lm.Append(rec)
}
