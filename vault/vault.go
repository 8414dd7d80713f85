// Package vault moves tokens out of program-custodied holding accounts.
//
// Every holding account belongs to a keyless authority derived from the
// "vault" namespace and the mint. Transfers are accepted only from the
// configured caller and are signed by re-deriving that authority, so a
// signature can never apply to a holding account of another mint.
package vault

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/token"
)

// StateDB is the ledger the vault mutates. Each operation runs inside its own
// snapshot and reverts it on failure.
type StateDB interface {
	token.StateDB
	Snapshot() int
	RevertToSnapshot(int)
}

// Vault validates and executes provisioning and transfer requests for one
// program configuration.
type Vault struct {
	config  *params.VaultConfig
	deriver *Deriver
}

// New creates a vault service. The config is copied.
func New(config *params.VaultConfig) (*Vault, error) {
	if err := config.CheckConfig(); err != nil {
		return nil, err
	}
	deriver, err := NewDeriver(config.ProgramID)
	if err != nil {
		return nil, err
	}
	return &Vault{config: config.Copy(), deriver: deriver}, nil
}

// Config returns a copy of the active configuration.
func (v *Vault) Config() *params.VaultConfig {
	return v.config.Copy()
}

// Deriver returns the authority deriver of this vault.
func (v *Vault) Deriver() *Deriver {
	return v.deriver
}

// Authority derives the vault authority for mint.
func (v *Vault) Authority(mint solana.PublicKey) (*Authority, error) {
	return v.deriver.Vault(mint)
}

// resolveMint derives the authority and checks the mint is a live token mint.
func (v *Vault) resolveMint(db StateDB, mint solana.PublicKey) (*Authority, *token.Mint, error) {
	auth, err := v.deriver.Vault(mint)
	if err != nil {
		return nil, nil, err
	}
	m, err := token.ReadMint(db, mint)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidAssetClass, err)
	}
	return auth, m, nil
}

// HoldingBalance returns the token balance of the holding account for mint.
func (v *Vault) HoldingBalance(db StateDB, mint solana.PublicKey) (uint64, error) {
	auth, err := v.deriver.Vault(mint)
	if err != nil {
		return 0, err
	}
	acct, err := v.holdingAccount(db, auth)
	if err != nil {
		return 0, err
	}
	return acct.Amount, nil
}

// holdingAccount loads the holding account of auth and checks it is bound to
// the authority and its mint.
func (v *Vault) holdingAccount(db StateDB, auth *Authority) (*token.Account, error) {
	addr := auth.HoldingAccount()
	if !db.Exist(addr) {
		return nil, fmt.Errorf("%w: holding account %s not provisioned", ErrInvalidVaultAuthority, addr)
	}
	acct, err := token.ReadAccount(db, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVaultAuthority, err)
	}
	if !acct.Mint.Equals(auth.Mint()) {
		return nil, fmt.Errorf("%w: holding account %s holds %s", ErrTokenMintMismatch, addr, acct.Mint)
	}
	if !acct.Owner.Equals(auth.Key()) {
		return nil, fmt.Errorf("%w: holding account %s owned by %s", ErrInvalidVaultAuthority, addr, acct.Owner)
	}
	return acct, nil
}

// EnsureRecipientAccount makes sure owner has a token account for mint,
// creating it at the payer's expense if missing. An existing account is left
// untouched.
func (v *Vault) EnsureRecipientAccount(db StateDB, mint, owner, payer solana.PublicKey) (solana.PublicKey, bool, error) {
	if owner.IsZero() {
		return solana.PublicKey{}, false, ErrInvalidRecipient
	}
	if payer.IsZero() {
		return solana.PublicKey{}, false, ErrInvalidPayer
	}
	if _, _, err := v.resolveMint(db, mint); err != nil {
		return solana.PublicKey{}, false, err
	}
	snap := db.Snapshot()
	addr, created, err := token.EnsureAssociatedAccount(db, payer, owner, mint)
	if err != nil {
		db.RevertToSnapshot(snap)
		return solana.PublicKey{}, false, translateTokenError(err)
	}
	return addr, created, nil
}

// translateTokenError maps token program failures onto vault errors.
func translateTokenError(err error) error {
	switch {
	case errors.Is(err, token.ErrInsufficientFunds):
		return fmt.Errorf("%w: %v", ErrInsufficientBalance, err)
	case errors.Is(err, token.ErrMintMismatch):
		return fmt.Errorf("%w: %v", ErrTokenMintMismatch, err)
	case errors.Is(err, token.ErrInsufficientRent):
		return fmt.Errorf("%w: %v", ErrPayerInsufficientFunds, err)
	case errors.Is(err, token.ErrInvalidMint), errors.Is(err, token.ErrMintNotInitialized):
		return fmt.Errorf("%w: %v", ErrInvalidAssetClass, err)
	case errors.Is(err, token.ErrInvalidSeeds):
		return fmt.Errorf("%w: %v", ErrInvalidVaultAuthority, err)
	}
	return err
}
