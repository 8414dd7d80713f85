package state

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/core/rawdb"
	"github.com/tos-network/gvault/tosdb/memorydb"
)

func newTestState(t *testing.T) (*StateDB, *memorydb.Database) {
	t.Helper()
	db := memorydb.New()
	return New(db), db
}

func TestCreateAccountAndCommit(t *testing.T) {
	st, db := newTestState(t)
	addr := solana.NewWallet().PublicKey()
	owner := solana.TokenProgramID

	if err := st.CreateAccount(addr, owner, 500, []byte{1, 2, 3}); err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if err := st.CreateAccount(addr, owner, 1, nil); !errors.Is(err, ErrAccountExists) {
		t.Fatalf("expected ErrAccountExists, got %v", err)
	}
	if rawdb.HasAccount(db, addr) {
		t.Fatal("account visible before commit")
	}
	if err := st.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	acct := rawdb.ReadAccount(db, addr)
	if acct == nil {
		t.Fatal("account missing after commit")
	}
	if acct.Lamports != 500 || !acct.Owner.Equals(owner) || string(acct.Data) != "\x01\x02\x03" {
		t.Fatalf("unexpected account: %+v", acct)
	}
	if st.Dirty() {
		t.Fatal("state still dirty after commit")
	}

	// A fresh view reads the committed record back.
	fresh := New(db)
	if got := fresh.GetBalance(addr); got != 500 {
		t.Fatalf("balance mismatch: have %d, want 500", got)
	}
}

func TestBalanceArithmetic(t *testing.T) {
	st, _ := newTestState(t)
	addr := solana.NewWallet().PublicKey()

	if err := st.SubBalance(addr, 1); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
	if err := st.AddBalance(addr, 100); err != nil {
		t.Fatalf("AddBalance: %v", err)
	}
	if owner := st.GetOwner(addr); !owner.Equals(solana.SystemProgramID) {
		t.Fatalf("implicit account owner mismatch: %s", owner)
	}
	if err := st.SubBalance(addr, 101); !errors.Is(err, ErrInsufficientLamports) {
		t.Fatalf("expected ErrInsufficientLamports, got %v", err)
	}
	if err := st.SubBalance(addr, 40); err != nil {
		t.Fatalf("SubBalance: %v", err)
	}
	if got := st.GetBalance(addr); got != 60 {
		t.Fatalf("balance mismatch: have %d, want 60", got)
	}
	if err := st.AddBalance(addr, ^uint64(0)); !errors.Is(err, ErrLamportsOverflow) {
		t.Fatalf("expected ErrLamportsOverflow, got %v", err)
	}
	if got := st.GetBalance(addr); got != 60 {
		t.Fatalf("failed add changed balance: %d", got)
	}
}

func TestSnapshotRevert(t *testing.T) {
	st, db := newTestState(t)
	kept := solana.NewWallet().PublicKey()
	if err := st.CreateAccount(kept, solana.SystemProgramID, 10, []byte("keep")); err != nil {
		t.Fatal(err)
	}
	if err := st.Commit(); err != nil {
		t.Fatal(err)
	}

	snap := st.Snapshot()
	created := solana.NewWallet().PublicKey()
	if err := st.CreateAccount(created, solana.SystemProgramID, 7, nil); err != nil {
		t.Fatal(err)
	}
	if err := st.AddBalance(kept, 5); err != nil {
		t.Fatal(err)
	}
	if err := st.SetData(kept, []byte("changed")); err != nil {
		t.Fatal(err)
	}
	st.RevertToSnapshot(snap)

	if st.Exist(created) {
		t.Fatal("created account survived revert")
	}
	if got := st.GetBalance(kept); got != 10 {
		t.Fatalf("balance not reverted: %d", got)
	}
	if got := string(st.GetData(kept)); got != "keep" {
		t.Fatalf("data not reverted: %q", got)
	}
	if st.Dirty() {
		t.Fatal("reverted state should not be dirty")
	}
	if err := st.Commit(); err != nil {
		t.Fatal(err)
	}
	if rawdb.HasAccount(db, created) {
		t.Fatal("reverted account reached the store")
	}
}

func TestNestedSnapshots(t *testing.T) {
	st, _ := newTestState(t)
	addr := solana.NewWallet().PublicKey()

	outer := st.Snapshot()
	if err := st.AddBalance(addr, 1); err != nil {
		t.Fatal(err)
	}
	inner := st.Snapshot()
	if err := st.AddBalance(addr, 2); err != nil {
		t.Fatal(err)
	}
	st.RevertToSnapshot(inner)
	if got := st.GetBalance(addr); got != 1 {
		t.Fatalf("inner revert: have %d, want 1", got)
	}
	st.RevertToSnapshot(outer)
	if st.Exist(addr) {
		t.Fatal("outer revert left account behind")
	}
}

func TestRevertUnknownSnapshotPanics(t *testing.T) {
	st, _ := newTestState(t)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	st.RevertToSnapshot(42)
}

func TestGetAccountReturnsCopy(t *testing.T) {
	st, _ := newTestState(t)
	addr := solana.NewWallet().PublicKey()
	if err := st.CreateAccount(addr, solana.SystemProgramID, 1, []byte{9}); err != nil {
		t.Fatal(err)
	}
	acct := st.GetAccount(addr)
	acct.Lamports = 1000
	acct.Data[0] = 0
	if st.GetBalance(addr) != 1 || st.GetData(addr)[0] != 9 {
		t.Fatal("GetAccount leaked internal state")
	}
}

func TestDump(t *testing.T) {
	st, _ := newTestState(t)
	a, b := solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey()
	if err := st.AddBalance(a, 1); err != nil {
		t.Fatal(err)
	}
	if err := st.Commit(); err != nil {
		t.Fatal(err)
	}
	if err := st.AddBalance(b, 2); err != nil {
		t.Fatal(err)
	}
	dump, err := st.Dump()
	if err != nil {
		t.Fatal(err)
	}
	if len(dump) != 2 || dump[a].Lamports != 1 || dump[b].Lamports != 2 {
		t.Fatalf("unexpected dump: %v", dump)
	}
}
