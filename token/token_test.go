package token

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gvault/core/state"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/tosdb/memorydb"
)

// pdaSigner is a program-derived signer built from arbitrary seeds.
type pdaSigner struct {
	key     solana.PublicKey
	seeds   [][]byte
	program solana.PublicKey
}

func newPDASigner(t *testing.T, program solana.PublicKey, seeds ...[]byte) *pdaSigner {
	t.Helper()
	key, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		t.Fatalf("FindProgramAddress: %v", err)
	}
	return &pdaSigner{key: key, seeds: append(seeds, []byte{bump}), program: program}
}

func (s *pdaSigner) Key() solana.PublicKey       { return s.key }
func (s *pdaSigner) SignerSeeds() [][]byte       { return s.seeds }
func (s *pdaSigner) ProgramID() solana.PublicKey { return s.program }

type testEnv struct {
	db        *state.StateDB
	payer     solana.PublicKey
	mint      solana.PublicKey
	authority solana.PublicKey
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db:        state.New(memorydb.New()),
		payer:     solana.NewWallet().PublicKey(),
		mint:      solana.NewWallet().PublicKey(),
		authority: solana.NewWallet().PublicKey(),
	}
	if err := env.db.AddBalance(env.payer, 10*params.LamportsPerSOL); err != nil {
		t.Fatal(err)
	}
	if _, err := InitializeMint(env.db, env.mint, env.payer, env.authority, 6); err != nil {
		t.Fatalf("InitializeMint: %v", err)
	}
	return env
}

func TestAccountLayoutSizes(t *testing.T) {
	mint, err := EncodeMint(&Mint{MintAuthority: solana.NewWallet().PublicKey(), Supply: 7, Decimals: 9, IsInitialized: true})
	require.NoError(t, err)
	require.Len(t, mint, int(params.MintAccountSize))

	acct, err := EncodeAccount(&Account{Mint: solana.NewWallet().PublicKey(), Owner: solana.NewWallet().PublicKey(), Amount: 5, State: Initialized})
	require.NoError(t, err)
	require.Len(t, acct, int(params.TokenAccountSize))

	dec, err := DecodeAccount(acct)
	require.NoError(t, err)
	require.Equal(t, uint64(5), dec.Amount)
	require.Equal(t, Initialized, dec.State)
	require.True(t, dec.Delegate.IsZero())

	_, err = DecodeAccount(acct[:100])
	require.ErrorIs(t, err, ErrInvalidAccountData)
	acct[108] = 9 // state byte
	_, err = DecodeAccount(acct)
	require.ErrorIs(t, err, ErrInvalidAccountData)
}

func TestInitializeMint(t *testing.T) {
	env := newTestEnv(t)
	m, err := ReadMint(env.db, env.mint)
	require.NoError(t, err)
	require.Equal(t, uint8(6), m.Decimals)
	require.True(t, m.MintAuthority.Equals(env.authority))
	require.Equal(t, 10*params.LamportsPerSOL-params.MintAccountRentExempt, env.db.GetBalance(env.payer))

	_, err = InitializeMint(env.db, env.mint, env.payer, env.authority, 6)
	require.ErrorIs(t, err, ErrAlreadyInUse)

	_, err = ReadMint(env.db, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, ErrInvalidMint)
	_, err = ReadMint(env.db, solana.PublicKey{})
	require.ErrorIs(t, err, ErrInvalidMint)

	// A system account is not a mint.
	require.NoError(t, env.db.AddBalance(env.authority, 1))
	_, err = ReadMint(env.db, env.authority)
	require.ErrorIs(t, err, ErrInvalidMint)

	poor := solana.NewWallet().PublicKey()
	_, err = InitializeMint(env.db, solana.NewWallet().PublicKey(), poor, env.authority, 0)
	require.ErrorIs(t, err, ErrInsufficientRent)
}

func TestAssociatedAccounts(t *testing.T) {
	env := newTestEnv(t)
	owner := solana.NewWallet().PublicKey()
	before := env.db.GetBalance(env.payer)

	addr, created, err := EnsureAssociatedAccount(env.db, env.payer, owner, env.mint)
	require.NoError(t, err)
	require.True(t, created)
	want, err := AssociatedAddress(owner, env.mint)
	require.NoError(t, err)
	require.Equal(t, want, addr)
	require.Equal(t, before-params.TokenAccountRentExempt, env.db.GetBalance(env.payer))
	require.Equal(t, params.TokenAccountRentExempt, env.db.GetBalance(addr))

	// Second call is a no-op and charges nothing.
	require.NoError(t, MintTo(env.db, env.mint, addr, env.authority, 9))
	again, created, err := EnsureAssociatedAccount(env.db, env.payer, owner, env.mint)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, addr, again)
	require.Equal(t, before-params.TokenAccountRentExempt, env.db.GetBalance(env.payer))
	bal, err := Balance(env.db, addr)
	require.NoError(t, err)
	require.Equal(t, uint64(9), bal)

	_, err = CreateAssociatedAccount(env.db, env.payer, owner, env.mint)
	require.ErrorIs(t, err, ErrAlreadyInUse)
}

func TestEnsureAssociatedAccountRejectsMismatch(t *testing.T) {
	env := newTestEnv(t)
	owner := solana.NewWallet().PublicKey()
	addr, err := AssociatedAddress(owner, env.mint)
	require.NoError(t, err)

	other := solana.NewWallet().PublicKey()
	data, err := EncodeAccount(&Account{Mint: other, Owner: owner, State: Initialized})
	require.NoError(t, err)
	require.NoError(t, env.db.CreateAccount(addr, solana.TokenProgramID, 0, data))

	_, _, err = EnsureAssociatedAccount(env.db, env.payer, owner, env.mint)
	require.ErrorIs(t, err, ErrMintMismatch)

	data, err = EncodeAccount(&Account{Mint: env.mint, Owner: other, State: Initialized})
	require.NoError(t, err)
	require.NoError(t, env.db.SetData(addr, data))
	_, _, err = EnsureAssociatedAccount(env.db, env.payer, owner, env.mint)
	require.ErrorIs(t, err, ErrOwnerMismatch)
}

func TestMintTo(t *testing.T) {
	env := newTestEnv(t)
	owner := solana.NewWallet().PublicKey()
	addr, err := CreateAssociatedAccount(env.db, env.payer, owner, env.mint)
	require.NoError(t, err)

	require.ErrorIs(t, MintTo(env.db, env.mint, addr, owner, 1), ErrOwnerMismatch)
	require.NoError(t, MintTo(env.db, env.mint, addr, env.authority, 100))
	require.ErrorIs(t, MintTo(env.db, env.mint, addr, env.authority, ^uint64(0)), ErrOverflow)

	m, err := ReadMint(env.db, env.mint)
	require.NoError(t, err)
	require.Equal(t, uint64(100), m.Supply)
}

func TestTransferSigned(t *testing.T) {
	env := newTestEnv(t)
	program := solana.NewWallet().PublicKey()
	signer := newPDASigner(t, program, []byte("vault"), env.mint[:])

	source, err := CreateAssociatedAccount(env.db, env.payer, signer.Key(), env.mint)
	require.NoError(t, err)
	recipient := solana.NewWallet().PublicKey()
	dest, err := CreateAssociatedAccount(env.db, env.payer, recipient, env.mint)
	require.NoError(t, err)
	require.NoError(t, MintTo(env.db, env.mint, source, env.authority, 100))

	require.NoError(t, TransferSigned(env.db, source, dest, signer, 40))
	srcBal, _ := Balance(env.db, source)
	dstBal, _ := Balance(env.db, dest)
	require.Equal(t, uint64(60), srcBal)
	require.Equal(t, uint64(40), dstBal)

	err = TransferSigned(env.db, source, dest, signer, 61)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	srcBal, _ = Balance(env.db, source)
	require.Equal(t, uint64(60), srcBal)
}

func TestTransferSignedRejectsForeignSigner(t *testing.T) {
	env := newTestEnv(t)
	program := solana.NewWallet().PublicKey()
	owner := newPDASigner(t, program, []byte("vault"), env.mint[:])
	source, err := CreateAssociatedAccount(env.db, env.payer, owner.Key(), env.mint)
	require.NoError(t, err)
	dest, err := CreateAssociatedAccount(env.db, env.payer, solana.NewWallet().PublicKey(), env.mint)
	require.NoError(t, err)
	require.NoError(t, MintTo(env.db, env.mint, source, env.authority, 10))

	// Valid derivation, but not the owner of the source account.
	other := newPDASigner(t, program, []byte("other"), env.mint[:])
	require.ErrorIs(t, TransferSigned(env.db, source, dest, other, 1), ErrOwnerMismatch)

	// Claimed key does not follow from the seeds.
	forged := &pdaSigner{key: owner.Key(), seeds: other.seeds, program: program}
	require.ErrorIs(t, TransferSigned(env.db, source, dest, forged, 1), ErrInvalidSeeds)

	// Same seeds under a different program derive a different key.
	moved := &pdaSigner{key: owner.Key(), seeds: owner.seeds, program: solana.NewWallet().PublicKey()}
	err = TransferSigned(env.db, source, dest, moved, 1)
	require.True(t, errors.Is(err, ErrInvalidSeeds))
}

func TestTransferSignedMintMismatch(t *testing.T) {
	env := newTestEnv(t)
	otherMint := solana.NewWallet().PublicKey()
	_, err := InitializeMint(env.db, otherMint, env.payer, env.authority, 0)
	require.NoError(t, err)

	signer := newPDASigner(t, solana.NewWallet().PublicKey(), []byte("vault"), env.mint[:])
	source, err := CreateAssociatedAccount(env.db, env.payer, signer.Key(), env.mint)
	require.NoError(t, err)
	dest, err := CreateAssociatedAccount(env.db, env.payer, solana.NewWallet().PublicKey(), otherMint)
	require.NoError(t, err)
	require.NoError(t, MintTo(env.db, env.mint, source, env.authority, 10))

	require.ErrorIs(t, TransferSigned(env.db, source, dest, signer, 1), ErrMintMismatch)
}

func TestUIAmounts(t *testing.T) {
	tests := []struct {
		raw      uint64
		decimals uint8
		ui       string
	}{
		{0, 0, "0"},
		{5, 0, "5"},
		{1_500_000, 6, "1.5"},
		{1, 6, "0.000001"},
		{123_000_000_000, 9, "123"},
		{18_446_744_073_709_551_615, 0, "18446744073709551615"},
		{18_446_744_073_709_551_615, 9, "18446744073.709551615"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.raw, tt.decimals); got != tt.ui {
			t.Errorf("FormatAmount(%d, %d) = %q, want %q", tt.raw, tt.decimals, got, tt.ui)
		}
		got, err := ParseUIAmount(tt.ui, tt.decimals)
		if err != nil || got != tt.raw {
			t.Errorf("ParseUIAmount(%q, %d) = %d, %v, want %d", tt.ui, tt.decimals, got, err, tt.raw)
		}
	}
	// Trailing zeros past the mint's precision do not change the value.
	if got, err := ParseUIAmount(" 1.5000000 ", 6); err != nil || got != 1_500_000 {
		t.Errorf("ParseUIAmount with padding = %d, %v, want 1500000", got, err)
	}
	for _, bad := range []string{"", "  ", "1.2345678", "abc", "-1", "1.2.3", "99999999999999999999", "18446744073709.551616"} {
		if _, err := ParseUIAmount(bad, 6); !errors.Is(err, ErrInvalidUIAmount) {
			t.Errorf("ParseUIAmount(%q) error = %v, want ErrInvalidUIAmount", bad, err)
		}
	}
}
