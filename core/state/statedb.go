// Package state provides a journaled, cached view of the account ledger.
package state

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/core/rawdb"
	"github.com/tos-network/gvault/core/types"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/tosdb"
)

var (
	ErrAccountExists        = errors.New("account already exists")
	ErrAccountNotFound      = errors.New("account not found")
	ErrInsufficientLamports = errors.New("insufficient lamports")
	ErrLamportsOverflow     = errors.New("lamport balance overflow")
)

type revision struct {
	id           int
	journalIndex int
}

// StateDB caches accounts read from the backing store and journals every
// modification so a failed action can be unwound with RevertToSnapshot.
// Nothing reaches the store until Commit, which writes all dirty accounts in
// one batch.
//
// A StateDB is not safe for concurrent use; the owner serialises mutators.
type StateDB struct {
	db tosdb.KeyValueStore

	// Accounts touched during execution, keyed by address.
	accounts map[solana.PublicKey]*types.StateAccount

	// Journal of state modifications. This is the backbone of
	// Snapshot and RevertToSnapshot.
	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New creates a new state view over the given store.
func New(db tosdb.KeyValueStore) *StateDB {
	return &StateDB{
		db:       db,
		accounts: make(map[solana.PublicKey]*types.StateAccount),
		journal:  newJournal(),
	}
}

// Database returns the backing store.
func (s *StateDB) Database() tosdb.KeyValueStore {
	return s.db
}

// getAccount returns the live account for addr, loading it from the store on
// first access. It returns nil if the account does not exist.
func (s *StateDB) getAccount(addr solana.PublicKey) *types.StateAccount {
	if acct, ok := s.accounts[addr]; ok {
		return acct
	}
	acct := rawdb.ReadAccount(s.db, addr)
	if acct == nil {
		return nil
	}
	s.accounts[addr] = acct
	return acct
}

// Exist reports whether the given account exists in state.
func (s *StateDB) Exist(addr solana.PublicKey) bool {
	return s.getAccount(addr) != nil
}

// GetAccount returns a copy of the account stored under addr, or nil.
func (s *StateDB) GetAccount(addr solana.PublicKey) *types.StateAccount {
	if acct := s.getAccount(addr); acct != nil {
		return acct.Copy()
	}
	return nil
}

// GetBalance retrieves the lamport balance from the given address or 0 if
// the account does not exist.
func (s *StateDB) GetBalance(addr solana.PublicKey) uint64 {
	if acct := s.getAccount(addr); acct != nil {
		return acct.Lamports
	}
	return 0
}

// GetOwner returns the program owning addr, or the zero key.
func (s *StateDB) GetOwner(addr solana.PublicKey) solana.PublicKey {
	if acct := s.getAccount(addr); acct != nil {
		return acct.Owner
	}
	return solana.PublicKey{}
}

// GetData returns a copy of the program data of addr.
func (s *StateDB) GetData(addr solana.PublicKey) []byte {
	if acct := s.getAccount(addr); acct != nil && acct.Data != nil {
		return append([]byte(nil), acct.Data...)
	}
	return nil
}

// CreateAccount allocates a new account. It fails if addr is already in use.
func (s *StateDB) CreateAccount(addr solana.PublicKey, owner solana.PublicKey, lamports uint64, data []byte) error {
	if s.getAccount(addr) != nil {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	if len(data) > types.MaxAccountDataLen {
		return types.ErrAccountDataTooLarge
	}
	key := addr
	s.journal.append(createAccountChange{account: &key})
	s.accounts[addr] = &types.StateAccount{
		Lamports: lamports,
		Owner:    owner,
		Data:     append([]byte(nil), data...),
	}
	return nil
}

// AddBalance adds amount to the account associated with addr. A missing
// account is created as a system-owned account.
func (s *StateDB) AddBalance(addr solana.PublicKey, amount uint64) error {
	acct := s.getAccount(addr)
	if acct == nil {
		if err := s.CreateAccount(addr, solana.SystemProgramID, 0, nil); err != nil {
			return err
		}
		acct = s.accounts[addr]
	}
	if acct.Lamports > math.MaxUint64-amount {
		return fmt.Errorf("%w: %s", ErrLamportsOverflow, addr)
	}
	key := addr
	s.journal.append(balanceChange{account: &key, prev: acct.Lamports})
	acct.Lamports += amount
	return nil
}

// SubBalance subtracts amount from the account associated with addr.
func (s *StateDB) SubBalance(addr solana.PublicKey, amount uint64) error {
	acct := s.getAccount(addr)
	if acct == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if acct.Lamports < amount {
		return fmt.Errorf("%w: %s has %d, want %d", ErrInsufficientLamports, addr, acct.Lamports, amount)
	}
	key := addr
	s.journal.append(balanceChange{account: &key, prev: acct.Lamports})
	acct.Lamports -= amount
	return nil
}

// SetData replaces the program data of an existing account.
func (s *StateDB) SetData(addr solana.PublicKey, data []byte) error {
	acct := s.getAccount(addr)
	if acct == nil {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if len(data) > types.MaxAccountDataLen {
		return types.ErrAccountDataTooLarge
	}
	key := addr
	s.journal.append(dataChange{account: &key, prevData: acct.Data})
	acct.Data = append([]byte(nil), data...)
	return nil
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionId
	s.nextRevisionId++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// Dirty reports whether uncommitted modifications exist.
func (s *StateDB) Dirty() bool {
	return len(s.journal.dirties) > 0
}

// Commit writes every dirty account to the backing store in a single batch
// and clears the journal. Either all changes become visible or none do.
func (s *StateDB) Commit() error {
	if len(s.journal.dirties) == 0 {
		return nil
	}
	addrs := make([]solana.PublicKey, 0, len(s.journal.dirties))
	for addr := range s.journal.dirties {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return string(addrs[i][:]) < string(addrs[j][:])
	})
	batch := s.db.NewBatch()
	for _, addr := range addrs {
		if acct, ok := s.accounts[addr]; ok {
			rawdb.WriteAccount(batch, addr, acct)
		}
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("state commit: %w", err)
	}
	log.Debug("Committed ledger state", "accounts", len(addrs), "size", batch.ValueSize())

	s.journal = newJournal()
	s.validRevisions = s.validRevisions[:0]
	return nil
}

// Dump returns a copy of every account visible through this view, committed
// or not.
func (s *StateDB) Dump() (map[solana.PublicKey]types.StateAccount, error) {
	out := make(map[solana.PublicKey]types.StateAccount)
	err := rawdb.IterateAccounts(s.db, func(addr solana.PublicKey, acct *types.StateAccount) bool {
		out[addr] = *acct
		return true
	})
	if err != nil {
		return nil, err
	}
	for addr, acct := range s.accounts {
		out[addr] = *acct.Copy()
	}
	return out, nil
}
