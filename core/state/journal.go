package state

import "github.com/gagliardetto/solana-go"

// journalEntry is a modification entry in the state change journal that can be
// reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*StateDB)

	// dirtied returns the address modified by this journal entry.
	dirtied() *solana.PublicKey
}

// journal contains the list of state modifications applied since the last state
// commit. These are tracked to be able to be reverted in the case of a failed
// action or an explicit revert request.
type journal struct {
	entries []journalEntry           // Current changes tracked by the journal
	dirties map[solana.PublicKey]int // Dirty accounts and the number of changes
}

// newJournal creates a new initialized journal.
func newJournal() *journal {
	return &journal{
		dirties: make(map[solana.PublicKey]int),
	}
}

// append inserts a new modification entry to the end of the change journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
	if addr := entry.dirtied(); addr != nil {
		j.dirties[*addr]++
	}
}

// revert undoes a batch of journalled modifications along with any reverted
// dirty handling too.
func (j *journal) revert(statedb *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		// Undo the changes made by the operation
		j.entries[i].revert(statedb)

		// Drop any dirty tracking induced by the change
		if addr := j.entries[i].dirtied(); addr != nil {
			if j.dirties[*addr]--; j.dirties[*addr] == 0 {
				delete(j.dirties, *addr)
			}
		}
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

type (
	// Changes to the account set
	createAccountChange struct {
		account *solana.PublicKey
	}

	// Changes to individual accounts
	balanceChange struct {
		account *solana.PublicKey
		prev    uint64
	}
	dataChange struct {
		account  *solana.PublicKey
		prevData []byte
	}
)

func (ch createAccountChange) revert(s *StateDB) {
	delete(s.accounts, *ch.account)
}

func (ch createAccountChange) dirtied() *solana.PublicKey {
	return ch.account
}

func (ch balanceChange) revert(s *StateDB) {
	s.accounts[*ch.account].Lamports = ch.prev
}

func (ch balanceChange) dirtied() *solana.PublicKey {
	return ch.account
}

func (ch dataChange) revert(s *StateDB) {
	s.accounts[*ch.account].Data = ch.prevData
}

func (ch dataChange) dirtied() *solana.PublicKey {
	return ch.account
}
