package buffer

import (
	"fmt"
	"sync"
	"time"

	"centauridb/internal/app/file"
	"centauridb/internal/app/log"
)

// MaxWaitTime bounds how long Pin will wait for a buffer to become
// available before giving up with a BufferAbortError.
const MaxWaitTime = 10 * time.Second

// BufferAbortError is returned by Pin when no buffer became available
// within MaxWaitTime. The caller's transaction must roll back.
type BufferAbortError struct {
	block file.BlockID
}

func (e BufferAbortError) Error() string {
	return fmt.Sprintf("no buffer available to pin block %v within %s", e.block, MaxWaitTime)
}

// BufferManager owns a fixed pool of buffer frames shared by every
// transaction in the process. Pin is the only operation that blocks:
// it waits (with a deadline) for a frame to free up when the pool is
// fully pinned.
type BufferManager struct {
	bufferPool   []*Buffer
	numAvailable int
	mu           sync.Mutex
	cond         *sync.Cond
}

// NewBufferManager allocates numBuffs frames, each backed by fm and lm.
func NewBufferManager(fm *file.FileManager, lm *log.LogManager, numBuffs int) *BufferManager {
	bm := &BufferManager{
		bufferPool:   make([]*Buffer, numBuffs),
		numAvailable: numBuffs,
	}
	bm.cond = sync.NewCond(&bm.mu)

	for i := range bm.bufferPool {
		bm.bufferPool[i] = NewBuffer(fm, lm)
	}
	return bm
}

// Available returns the number of currently unpinned buffers.
func (bm *BufferManager) Available() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.numAvailable
}

// FlushAll flushes every buffer last modified by txNum.
func (bm *BufferManager) FlushAll(txNum int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	for _, buff := range bm.bufferPool {
		if buff.ModifyingTx() == txNum {
			if err := buff.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Unpin releases one pin on buff. If the buffer becomes fully unpinned
// it rejoins the available pool and every Pin waiter is woken to
// recheck its block.
func (bm *BufferManager) Unpin(buff *Buffer) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	buff.Unpin()
	if !buff.IsPinned() {
		bm.numAvailable++
		bm.cond.Broadcast()
	}
}

// Pin pins a buffer to block, blocking until one is available. It
// returns BufferAbortError if MaxWaitTime elapses with no buffer freed.
func (bm *BufferManager) Pin(block file.BlockID) (*Buffer, error) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	buff, err := bm.tryToPin(block)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(MaxWaitTime)
	for buff == nil {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, BufferAbortError{block: block}
		}

		bm.waitWithTimeout(remaining)

		buff, err = bm.tryToPin(block)
		if err != nil {
			return nil, err
		}
	}
	return buff, nil
}

// waitWithTimeout blocks the caller on the condition variable until
// woken or until d elapses. The caller must hold bm.mu on entry; bm.mu
// is held again on return. The actual unlock/relock around the wait is
// driven from a helper goroutine so that a timer can also force a
// wakeup when nothing is ever unpinned; Pin re-checks its own deadline
// afterward regardless of which of the two woke it.
func (bm *BufferManager) waitWithTimeout(d time.Duration) {
	done := make(chan struct{})
	go func() {
		bm.cond.Wait()
		close(done)
	}()

	timer := time.AfterFunc(d, func() {
		bm.mu.Lock()
		bm.cond.Broadcast()
		bm.mu.Unlock()
	})
	defer timer.Stop()

	<-done
}

// tryToPin attempts a single, non-blocking pin attempt: reuse an
// existing buffer already assigned to block, or claim any unpinned
// buffer and assign it. Returns (nil, nil) if the pool is fully
// pinned. Caller must hold bm.mu.
func (bm *BufferManager) tryToPin(block file.BlockID) (*Buffer, error) {
	buff := bm.findExistingBuffer(block)
	if buff == nil {
		buff = bm.chooseUnpinnedBuffer()
		if buff == nil {
			return nil, nil
		}
		if err := buff.AssignToBlock(block); err != nil {
			return nil, err
		}
	}

	if !buff.IsPinned() {
		bm.numAvailable--
	}
	buff.Pin()
	return buff, nil
}

func (bm *BufferManager) findExistingBuffer(block file.BlockID) *Buffer {
	for _, buff := range bm.bufferPool {
		if b := buff.Block(); b != nil && b.Equals(block) {
			return buff
		}
	}
	return nil
}

func (bm *BufferManager) chooseUnpinnedBuffer() *Buffer {
	for _, buff := range bm.bufferPool {
		if !buff.IsPinned() {
			return buff
		}
	}
	return nil
}
