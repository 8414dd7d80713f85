package vault

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/gagliardetto/solana-go"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/gvault/core/state"
	"github.com/tos-network/gvault/core/types"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/token"
	"github.com/tos-network/gvault/tosdb/memorydb"
)

type testVault struct {
	*Vault
	db        *state.StateDB
	caller    solana.PublicKey
	mint      solana.PublicKey
	mintAuth  solana.PublicKey
	authority *Authority
}

// newTestVault sets up a funded caller, an initialized mint and, if
// provisioned is set, a holding account containing balance tokens.
func newTestVault(t *testing.T, provisioned bool, balance uint64) *testVault {
	t.Helper()
	caller := solana.NewWallet().PublicKey()
	v, err := New(&params.VaultConfig{ProgramID: testProgramID, AuthorizedCaller: caller})
	require.NoError(t, err)

	tv := &testVault{
		Vault:    v,
		db:       state.New(memorydb.New()),
		caller:   caller,
		mint:     solana.NewWallet().PublicKey(),
		mintAuth: solana.NewWallet().PublicKey(),
	}
	require.NoError(t, tv.db.AddBalance(caller, 10*params.LamportsPerSOL))
	_, err = token.InitializeMint(tv.db, tv.mint, caller, tv.mintAuth, 6)
	require.NoError(t, err)
	tv.authority, err = v.Authority(tv.mint)
	require.NoError(t, err)

	if provisioned {
		_, err := v.Provision(tv.db, tv.mint, caller)
		require.NoError(t, err)
		if balance > 0 {
			require.NoError(t, token.MintTo(tv.db, tv.mint, tv.authority.HoldingAccount(), tv.mintAuth, balance))
		}
	}
	require.NoError(t, tv.db.Commit())
	return tv
}

func (tv *testVault) dump(t *testing.T) map[solana.PublicKey]types.StateAccount {
	t.Helper()
	d, err := tv.db.Dump()
	require.NoError(t, err)
	return d
}

func (tv *testVault) holding(t *testing.T) uint64 {
	t.Helper()
	bal, err := tv.HoldingBalance(tv.db, tv.mint)
	require.NoError(t, err)
	return bal
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(&params.VaultConfig{ProgramID: testProgramID})
	require.ErrorIs(t, err, params.ErrMissingAuthorizedCaller)
	_, err = New(nil)
	require.ErrorIs(t, err, params.ErrMissingProgramID)
}

func TestProvision(t *testing.T) {
	tv := newTestVault(t, false, 0)
	before := tv.db.GetBalance(tv.caller)

	receipt, err := tv.Provision(tv.db, tv.mint, tv.caller)
	require.NoError(t, err)
	assert.Equal(t, tv.authority.HoldingAccount(), receipt.HoldingAccount)
	assert.Equal(t, tv.authority.Key(), receipt.Authority)
	assert.Equal(t, tv.authority.Bump(), receipt.Bump)
	assert.Equal(t, params.TokenAccountRentExempt, receipt.RentPaid)
	assert.Equal(t, before-params.TokenAccountRentExempt, tv.db.GetBalance(tv.caller))

	acct, err := token.ReadAccount(tv.db, receipt.HoldingAccount)
	require.NoError(t, err)
	assert.Equal(t, tv.authority.Key(), acct.Owner)
	assert.Equal(t, tv.mint, acct.Mint)
	assert.Zero(t, acct.Amount)
}

func TestProvisionAuditRecord(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Root()
	log.SetDefault(log.NewLogger(log.Config{Verbosity: log.LvlInfo, JSON: true, Output: &buf}))
	t.Cleanup(func() { log.SetDefault(prev) })

	tv := newTestVault(t, false, 0)
	receipt, err := tv.Provision(tv.db, tv.mint, tv.caller)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec), "log output: %s", buf.String())
	assert.Equal(t, "Created program token account", rec["msg"])
	assert.Equal(t, "provision", rec["operation"])
	assert.Equal(t, receipt.HoldingAccount.String(), rec["holding_account"])
	assert.Equal(t, tv.mint.String(), rec["mint"])
	assert.Equal(t, tv.authority.Key().String(), rec["authority"])
	assert.Equal(t, tv.caller.String(), rec["payer"])
}

func TestProvisionTwice(t *testing.T) {
	tv := newTestVault(t, true, 0)
	after := tv.dump(t)

	_, err := tv.Provision(tv.db, tv.mint, tv.caller)
	require.ErrorIs(t, err, ErrDuplicateHoldingAccount)
	require.Equal(t, after, tv.dump(t), "state changed by duplicate provisioning:\n%s", spew.Sdump(tv.dump(t)))
}

func TestProvisionInvalidMint(t *testing.T) {
	tv := newTestVault(t, false, 0)
	_, err := tv.Provision(tv.db, solana.NewWallet().PublicKey(), tv.caller)
	require.ErrorIs(t, err, ErrInvalidAssetClass)
	_, err = tv.Provision(tv.db, solana.PublicKey{}, tv.caller)
	require.ErrorIs(t, err, ErrInvalidAssetClass)
	_, err = tv.Provision(tv.db, tv.mint, solana.PublicKey{})
	require.ErrorIs(t, err, ErrInvalidPayer)
}

func TestProvisionPayerCannotPay(t *testing.T) {
	tv := newTestVault(t, false, 0)
	before := tv.dump(t)
	_, err := tv.Provision(tv.db, tv.mint, solana.NewWallet().PublicKey())
	require.ErrorIs(t, err, ErrPayerInsufficientFunds)
	require.Equal(t, before, tv.dump(t))
}

func TestTransferToNewRecipient(t *testing.T) {
	tv := newTestVault(t, true, 100)
	recipient := solana.NewWallet().PublicKey()
	callerBefore := tv.db.GetBalance(tv.caller)

	receipt, err := tv.Transfer(tv.db, &TransferRequest{
		Mint:      tv.mint,
		Recipient: recipient,
		Amount:    40,
		Caller:    tv.caller,
	})
	require.NoError(t, err)
	assert.True(t, receipt.RecipientCreated)
	assert.Equal(t, params.TokenAccountRentExempt, receipt.RentPaid)
	assert.Equal(t, tv.caller, receipt.Payer)
	assert.Equal(t, tv.authority.HoldingAccount(), receipt.Source)
	assert.Equal(t, uint64(60), receipt.HoldingBalance)
	assert.Equal(t, callerBefore-params.TokenAccountRentExempt, tv.db.GetBalance(tv.caller))

	assert.Equal(t, uint64(60), tv.holding(t))
	bal, err := token.Balance(tv.db, receipt.Destination)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), bal)

	acct, err := token.ReadAccount(tv.db, receipt.Destination)
	require.NoError(t, err)
	assert.Equal(t, recipient, acct.Owner)
}

func TestTransferSeparatePayer(t *testing.T) {
	tv := newTestVault(t, true, 10)
	payer := solana.NewWallet().PublicKey()
	require.NoError(t, tv.db.AddBalance(payer, params.TokenAccountRentExempt))

	receipt, err := tv.Transfer(tv.db, &TransferRequest{
		Mint:      tv.mint,
		Recipient: solana.NewWallet().PublicKey(),
		Amount:    1,
		Payer:     payer,
		Caller:    tv.caller,
	})
	require.NoError(t, err)
	assert.Equal(t, payer, receipt.Payer)
	assert.Zero(t, tv.db.GetBalance(payer))
}

func TestTransferUnauthorized(t *testing.T) {
	tv := newTestVault(t, true, 100)
	before := tv.dump(t)

	_, err := tv.Transfer(tv.db, &TransferRequest{
		Mint:      tv.mint,
		Recipient: solana.NewWallet().PublicKey(),
		Amount:    40,
		Caller:    solana.NewWallet().PublicKey(),
	})
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, uint64(100), tv.holding(t))
	assert.Equal(t, before, tv.dump(t))
}

// Any request from a foreign caller fails with ErrUnauthorized whatever the
// other fields hold, provided the amount is non-zero.
func TestTransferUnauthorizedRandomized(t *testing.T) {
	tv := newTestVault(t, true, 100)
	before := tv.dump(t)
	f := fuzz.New().NilChance(0)

	for i := 0; i < 500; i++ {
		var req TransferRequest
		f.Fuzz(&req)
		if req.Amount == 0 {
			req.Amount = 1
		}
		if i%2 == 0 {
			req.Mint = tv.mint
		}
		if req.Caller.Equals(tv.caller) {
			continue
		}
		_, err := tv.Transfer(tv.db, &req)
		require.ErrorIs(t, err, ErrUnauthorized, "request: %s", spew.Sdump(req))
	}
	require.Equal(t, before, tv.dump(t))
}

func TestTransferZeroAmount(t *testing.T) {
	tv := newTestVault(t, true, 100)
	before := tv.dump(t)

	// The amount check precedes the caller check.
	for _, caller := range []solana.PublicKey{tv.caller, solana.NewWallet().PublicKey()} {
		_, err := tv.Transfer(tv.db, &TransferRequest{
			Mint:      tv.mint,
			Recipient: solana.NewWallet().PublicKey(),
			Caller:    caller,
		})
		require.ErrorIs(t, err, ErrInvalidAmount)
	}
	assert.Equal(t, before, tv.dump(t))
}

func TestTransferExistingRecipient(t *testing.T) {
	tv := newTestVault(t, true, 100)
	recipient := solana.NewWallet().PublicKey()

	first, err := tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, Recipient: recipient, Amount: 10, Caller: tv.caller})
	require.NoError(t, err)
	require.True(t, first.RecipientCreated)
	callerBefore := tv.db.GetBalance(tv.caller)

	second, err := tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, Recipient: recipient, Amount: 15, Caller: tv.caller})
	require.NoError(t, err)
	assert.False(t, second.RecipientCreated)
	assert.Zero(t, second.RentPaid)
	assert.Equal(t, first.Destination, second.Destination)
	assert.Equal(t, callerBefore, tv.db.GetBalance(tv.caller))

	bal, err := token.Balance(tv.db, second.Destination)
	require.NoError(t, err)
	assert.Equal(t, uint64(25), bal)
	assert.Equal(t, uint64(75), tv.holding(t))
}

func TestTransferInsufficientBalance(t *testing.T) {
	tv := newTestVault(t, true, 100)
	before := tv.dump(t)
	recipient := solana.NewWallet().PublicKey()

	_, err := tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, Recipient: recipient, Amount: 101, Caller: tv.caller})
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// The recipient account created on the way is rolled back too.
	dest, err := token.AssociatedAddress(recipient, tv.mint)
	require.NoError(t, err)
	assert.False(t, tv.db.Exist(dest))
	assert.Equal(t, before, tv.dump(t))
}

func TestTransferUnprovisioned(t *testing.T) {
	tv := newTestVault(t, false, 0)
	_, err := tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, Recipient: solana.NewWallet().PublicKey(), Amount: 1, Caller: tv.caller})
	require.ErrorIs(t, err, ErrInvalidVaultAuthority)
}

func TestTransferForeignSource(t *testing.T) {
	tv := newTestVault(t, true, 100)

	// Token account of the same mint that the authority does not own.
	someone := solana.NewWallet().PublicKey()
	other, err := token.CreateAssociatedAccount(tv.db, tv.caller, someone, tv.mint)
	require.NoError(t, err)
	_, err = tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, From: other, Recipient: someone, Amount: 1, Caller: tv.caller})
	require.ErrorIs(t, err, ErrInvalidVaultAuthority)

	// Holding account of another mint.
	otherMint := solana.NewWallet().PublicKey()
	_, err = token.InitializeMint(tv.db, otherMint, tv.caller, tv.mintAuth, 0)
	require.NoError(t, err)
	receipt, err := tv.Provision(tv.db, otherMint, tv.caller)
	require.NoError(t, err)
	_, err = tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, From: receipt.HoldingAccount, Recipient: someone, Amount: 1, Caller: tv.caller})
	require.ErrorIs(t, err, ErrTokenMintMismatch)

	// Explicitly naming the right holding account is accepted.
	_, err = tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, From: tv.authority.HoldingAccount(), Recipient: someone, Amount: 1, Caller: tv.caller})
	require.NoError(t, err)
}

func TestTransferHoldingAccountWrongMint(t *testing.T) {
	tv := newTestVault(t, true, 100)
	data, err := token.EncodeAccount(&token.Account{Mint: solana.NewWallet().PublicKey(), Owner: tv.authority.Key(), Amount: 100, State: token.Initialized})
	require.NoError(t, err)
	require.NoError(t, tv.db.SetData(tv.authority.HoldingAccount(), data))

	_, err = tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, Recipient: solana.NewWallet().PublicKey(), Amount: 1, Caller: tv.caller})
	require.ErrorIs(t, err, ErrTokenMintMismatch)
}

func TestTransferRecipientMismatch(t *testing.T) {
	tv := newTestVault(t, true, 100)
	recipient := solana.NewWallet().PublicKey()
	dest, err := token.AssociatedAddress(recipient, tv.mint)
	require.NoError(t, err)

	data, err := token.EncodeAccount(&token.Account{Mint: tv.mint, Owner: solana.NewWallet().PublicKey(), State: token.Initialized})
	require.NoError(t, err)
	require.NoError(t, tv.db.CreateAccount(dest, solana.TokenProgramID, 0, data))

	_, err = tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, Recipient: recipient, Amount: 1, Caller: tv.caller})
	require.ErrorIs(t, err, ErrInvalidRecipientAccount)
	assert.Equal(t, uint64(100), tv.holding(t))
}

func TestTransferPayerCannotPay(t *testing.T) {
	tv := newTestVault(t, true, 100)
	before := tv.dump(t)
	_, err := tv.Transfer(tv.db, &TransferRequest{
		Mint:      tv.mint,
		Recipient: solana.NewWallet().PublicKey(),
		Amount:    1,
		Payer:     solana.NewWallet().PublicKey(),
		Caller:    tv.caller,
	})
	require.ErrorIs(t, err, ErrPayerInsufficientFunds)
	assert.Equal(t, before, tv.dump(t))
}

// A retry after a failure between recipient creation and credit neither
// charges the payer twice nor credits twice.
func TestTransferRetryAfterPartialFailure(t *testing.T) {
	tv := newTestVault(t, true, 100)
	recipient := solana.NewWallet().PublicKey()

	// Simulate a crash after the recipient account was created and committed.
	dest, created, err := tv.EnsureRecipientAccount(tv.db, tv.mint, recipient, tv.caller)
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, tv.db.Commit())
	callerBefore := tv.db.GetBalance(tv.caller)

	receipt, err := tv.Transfer(tv.db, &TransferRequest{Mint: tv.mint, Recipient: recipient, Amount: 40, Caller: tv.caller})
	require.NoError(t, err)
	assert.False(t, receipt.RecipientCreated)
	assert.Equal(t, dest, receipt.Destination)
	assert.Equal(t, callerBefore, tv.db.GetBalance(tv.caller))

	bal, err := token.Balance(tv.db, dest)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), bal)
	assert.Equal(t, uint64(60), tv.holding(t))
}

func TestEnsureRecipientAccountValidation(t *testing.T) {
	tv := newTestVault(t, false, 0)
	_, _, err := tv.EnsureRecipientAccount(tv.db, tv.mint, solana.PublicKey{}, tv.caller)
	require.ErrorIs(t, err, ErrInvalidRecipient)
	_, _, err = tv.EnsureRecipientAccount(tv.db, tv.mint, solana.NewWallet().PublicKey(), solana.PublicKey{})
	require.ErrorIs(t, err, ErrInvalidPayer)
	_, _, err = tv.EnsureRecipientAccount(tv.db, solana.NewWallet().PublicKey(), solana.NewWallet().PublicKey(), tv.caller)
	require.ErrorIs(t, err, ErrInvalidAssetClass)
}
