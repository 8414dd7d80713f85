package token

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/core/state"
	"github.com/tos-network/gvault/params"
)

// StateDB is the ledger surface the token program operates on. It is
// satisfied by *state.StateDB.
type StateDB interface {
	Exist(addr solana.PublicKey) bool
	GetOwner(addr solana.PublicKey) solana.PublicKey
	GetData(addr solana.PublicKey) []byte
	SetData(addr solana.PublicKey, data []byte) error
	GetBalance(addr solana.PublicKey) uint64
	SubBalance(addr solana.PublicKey, amount uint64) error
	CreateAccount(addr solana.PublicKey, owner solana.PublicKey, lamports uint64, data []byte) error
}

// ReadMint loads and validates the mint stored at addr.
func ReadMint(db StateDB, addr solana.PublicKey) (*Mint, error) {
	if addr.IsZero() || !db.Exist(addr) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMint, addr)
	}
	if !db.GetOwner(addr).Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: %s not owned by token program", ErrInvalidMint, addr)
	}
	m, err := DecodeMint(db.GetData(addr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMint, err)
	}
	if !m.IsInitialized {
		return nil, fmt.Errorf("%w: %s", ErrMintNotInitialized, addr)
	}
	return m, nil
}

// ReadAccount loads and validates the token account stored at addr.
func ReadAccount(db StateDB, addr solana.PublicKey) (*Account, error) {
	if !db.Exist(addr) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if !db.GetOwner(addr).Equals(solana.TokenProgramID) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountOwner, addr)
	}
	acct, err := DecodeAccount(db.GetData(addr))
	if err != nil {
		return nil, err
	}
	if acct.State == Uninitialized {
		return nil, fmt.Errorf("%w: %s", ErrUninitializedAccount, addr)
	}
	return acct, nil
}

// Balance returns the token amount held in the account at addr.
func Balance(db StateDB, addr solana.PublicKey) (uint64, error) {
	acct, err := ReadAccount(db, addr)
	if err != nil {
		return 0, err
	}
	return acct.Amount, nil
}

// chargeRent moves the rent-exempt minimum out of the payer. The lamports are
// handed to the created account by the caller.
func chargeRent(db StateDB, payer solana.PublicKey, rent uint64) error {
	if err := db.SubBalance(payer, rent); err != nil {
		if errors.Is(err, state.ErrInsufficientLamports) || errors.Is(err, state.ErrAccountNotFound) {
			return fmt.Errorf("%w: %v", ErrInsufficientRent, err)
		}
		return err
	}
	return nil
}

// InitializeMint creates a new mint account at addr funded by payer.
func InitializeMint(db StateDB, addr, payer, mintAuthority solana.PublicKey, decimals uint8) (*Mint, error) {
	if addr.IsZero() {
		return nil, fmt.Errorf("%w: zero address", ErrInvalidMint)
	}
	if db.Exist(addr) {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInUse, addr)
	}
	m := &Mint{
		MintAuthority: mintAuthority,
		Decimals:      decimals,
		IsInitialized: true,
	}
	data, err := EncodeMint(m)
	if err != nil {
		return nil, err
	}
	if err := chargeRent(db, payer, params.MintAccountRentExempt); err != nil {
		return nil, err
	}
	if err := db.CreateAccount(addr, solana.TokenProgramID, params.MintAccountRentExempt, data); err != nil {
		return nil, err
	}
	return m, nil
}

// MintTo issues amount new units of mint into destination. authority must be
// the mint authority.
func MintTo(db StateDB, mint, destination, authority solana.PublicKey, amount uint64) error {
	m, err := ReadMint(db, mint)
	if err != nil {
		return err
	}
	if m.MintAuthority.IsZero() || !m.MintAuthority.Equals(authority) {
		return fmt.Errorf("%w: %s is not the mint authority", ErrOwnerMismatch, authority)
	}
	dst, err := ReadAccount(db, destination)
	if err != nil {
		return err
	}
	if !dst.Mint.Equals(mint) {
		return fmt.Errorf("%w: %s", ErrMintMismatch, destination)
	}
	if dst.State == Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, destination)
	}
	if m.Supply+amount < m.Supply || dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}
	m.Supply += amount
	dst.Amount += amount

	mintData, err := EncodeMint(m)
	if err != nil {
		return err
	}
	dstData, err := EncodeAccount(dst)
	if err != nil {
		return err
	}
	if err := db.SetData(mint, mintData); err != nil {
		return err
	}
	return db.SetData(destination, dstData)
}
