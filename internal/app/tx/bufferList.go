package tx

import (
	"fmt"

	"centauridb/internal/app/buffer"
	"centauridb/internal/app/file"
)

// BufferList tracks the buffers a single transaction has pinned. A
// block can be pinned more than once (pin/unpin calls nest); every
// Pin and Unpin is passed on to the buffer manager.
type BufferList struct {
	buffers map[file.BlockID]*buffer.Buffer
	pins    []file.BlockID
	bm      *buffer.BufferManager
}

// NewBufferList returns an empty list backed by bm.
func NewBufferList(bm *buffer.BufferManager) *BufferList {
	return &BufferList{
		buffers: make(map[file.BlockID]*buffer.Buffer),
		bm:      bm,
	}
}

// GetBuffer returns the buffer currently pinned for block. The caller
// must have pinned block first.
func (bl *BufferList) GetBuffer(block file.BlockID) (*buffer.Buffer, error) {
	buff, ok := bl.buffers[block]
	if !ok {
		return nil, fmt.Errorf("block %v is not pinned by this transaction", block)
	}
	return buff, nil
}

// Pin pins block via the buffer manager and records the pin.
func (bl *BufferList) Pin(block file.BlockID) error {
	buff, err := bl.bm.Pin(block)
	if err != nil {
		return err
	}
	bl.buffers[block] = buff
	bl.pins = append(bl.pins, block)
	return nil
}

// Unpin removes one pin on block. If that was the last pin this
// transaction held on block, the buffer is forgotten.
func (bl *BufferList) Unpin(block file.BlockID) {
	buff, ok := bl.buffers[block]
	if !ok {
		return
	}
	bl.bm.Unpin(buff)

	for i, b := range bl.pins {
		if b == block {
			bl.pins = append(bl.pins[:i], bl.pins[i+1:]...)
			break
		}
	}

	for _, b := range bl.pins {
		if b == block {
			return
		}
	}
	delete(bl.buffers, block)
}

// UnpinAll releases every pin this transaction holds.
func (bl *BufferList) UnpinAll() {
	for _, block := range bl.pins {
		if buff, ok := bl.buffers[block]; ok {
			bl.bm.Unpin(buff)
		}
	}
	bl.buffers = make(map[file.BlockID]*buffer.Buffer)
	bl.pins = nil
}
