package tx

import (
	"centauridb/internal/app/file"
)

// lockKind records the strongest lock a transaction holds on a block.
type lockKind string

const (
	lockShared    lockKind = "S"
	lockExclusive lockKind = "X"
)

// ConcurrencyManager is a transaction's private view over the
// process-wide LockTable. It tracks which locks this transaction
// currently holds so it only ever asks the LockTable for a lock it
// doesn't already have, and it is what actually enforces two-phase
// locking: every acquisition happens during normal operation, and
// every release happens together, once, in Release.
type ConcurrencyManager struct {
	locks     map[file.BlockID]lockKind
	lockTable *LockTable
}

// NewConcurrencyManager returns a manager that routes lock requests
// through the shared lockTable.
func NewConcurrencyManager(lockTable *LockTable) *ConcurrencyManager {
	return &ConcurrencyManager{
		locks:     make(map[file.BlockID]lockKind),
		lockTable: lockTable,
	}
}

// SLock obtains a shared lock on block, if this transaction doesn't
// already hold one (shared or exclusive).
func (cm *ConcurrencyManager) SLock(block file.BlockID) error {
	if _, held := cm.locks[block]; held {
		return nil
	}
	if err := cm.lockTable.SLock(block); err != nil {
		return err
	}
	cm.locks[block] = lockShared
	return nil
}

// XLock obtains an exclusive lock on block, first obtaining a shared
// lock if this transaction holds none, then upgrading it.
func (cm *ConcurrencyManager) XLock(block file.BlockID) error {
	if cm.locks[block] == lockExclusive {
		return nil
	}
	if err := cm.SLock(block); err != nil {
		return err
	}
	if err := cm.lockTable.XLock(block); err != nil {
		return err
	}
	cm.locks[block] = lockExclusive
	return nil
}

// Release unlocks every block this transaction holds a lock on and
// forgets them. Called exactly once, at transaction commit/rollback.
func (cm *ConcurrencyManager) Release() {
	for block := range cm.locks {
		cm.lockTable.Unlock(block)
	}
	cm.locks = make(map[file.BlockID]lockKind)
}
