package tx

import (
	"fmt"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// SetStringRecord captures the pre-image of a string write: the value
// that was AT offset in block before the transaction overwrote it.
type SetStringRecord struct {
	txNum  int
	block  file.BlockID
	offset int
	oldVal string
}

func newSetStringRecord(p *file.Page) (*SetStringRecord, error) {
	txNum := int(p.GetInt(4))

	fPos := 8
	filename, err := p.GetString(fPos)
	if err != nil {
		return nil, LogCorruptionError{reason: fmt.Sprintf("SETSTRING filename: %v", err)}
	}

	bPos := fPos + file.MaxLength(len(filename))
	blockNum := int(p.GetInt(bPos))

	oPos := bPos + 4
	offset := int(p.GetInt(oPos))

	vPos := oPos + 4
	oldVal, err := p.GetString(vPos)
	if err != nil {
		return nil, LogCorruptionError{reason: fmt.Sprintf("SETSTRING value: %v", err)}
	}

	return &SetStringRecord{
		txNum:  txNum,
		block:  file.NewBlockID(filename, blockNum),
		offset: offset,
		oldVal: oldVal,
	}, nil
}

func (r *SetStringRecord) Op() LogRecordType {
	return SetString
}

func (r *SetStringRecord) TxNumber() int {
	return r.txNum
}

func (r *SetStringRecord) String() string {
	return fmt.Sprintf("<SETSTRING %d %v %d %s>", r.txNum, r.block, r.offset, r.oldVal)
}

// Undo restores oldVal at offset in block, pinning the block for the
// duration and writing the restoration directly through the buffer
// pool: it does not lock and does not write a new log record.
func (r *SetStringRecord) Undo(tx *Transaction) error {
	if err := tx.Pin(r.block); err != nil {
		return err
	}
	defer tx.Unpin(r.block)
	return tx.restoreString(r.block, r.offset, r.oldVal)
}

// writeSetStringToLog appends a SETSTRING record carrying the
// pre-image (oldVal) of the write about to be made to block at offset.
func writeSetStringToLog(lm *log.LogManager, txNum int, block file.BlockID, offset int, oldVal string) (int, error) {
	fPos := 8
	bPos := fPos + file.MaxLength(len(block.FileName()))
	oPos := bPos + 4
	vPos := oPos + 4

	rec := make([]byte, vPos+file.MaxLength(len(oldVal)))
	p := file.NewPageFromBytes(rec)

	p.SetInt(0, int32(SetString))
	p.SetInt(4, int32(txNum))
	p.SetString(fPos, block.FileName())
	p.SetInt(bPos, int32(block.Number()))
	p.SetInt(oPos, int32(offset))
	p.SetString(vPos, oldVal)

	return lm.Append(rec)
}
