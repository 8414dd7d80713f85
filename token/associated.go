package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/params"
)

// AssociatedAddress returns the canonical token account of owner for mint.
func AssociatedAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

// CreateAssociatedAccount creates the associated token account of owner for
// mint, charging its rent to payer. It fails if the account already exists.
func CreateAssociatedAccount(db StateDB, payer, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	if _, err := ReadMint(db, mint); err != nil {
		return solana.PublicKey{}, err
	}
	addr, err := AssociatedAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if db.Exist(addr) {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", ErrAlreadyInUse, addr)
	}
	data, err := EncodeAccount(&Account{
		Mint:  mint,
		Owner: owner,
		State: Initialized,
	})
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := chargeRent(db, payer, params.TokenAccountRentExempt); err != nil {
		return solana.PublicKey{}, err
	}
	if err := db.CreateAccount(addr, solana.TokenProgramID, params.TokenAccountRentExempt, data); err != nil {
		return solana.PublicKey{}, err
	}
	return addr, nil
}

// EnsureAssociatedAccount is the idempotent variant of CreateAssociatedAccount.
// An existing account is accepted only if it is a token account of the same
// mint and owner; it is never reset and the payer is not charged again.
func EnsureAssociatedAccount(db StateDB, payer, owner, mint solana.PublicKey) (addr solana.PublicKey, created bool, err error) {
	if _, err := ReadMint(db, mint); err != nil {
		return solana.PublicKey{}, false, err
	}
	addr, err = AssociatedAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, false, err
	}
	if !db.Exist(addr) {
		addr, err = CreateAssociatedAccount(db, payer, owner, mint)
		if err != nil {
			return solana.PublicKey{}, false, err
		}
		return addr, true, nil
	}
	acct, err := ReadAccount(db, addr)
	if err != nil {
		return solana.PublicKey{}, false, err
	}
	if !acct.Mint.Equals(mint) {
		return solana.PublicKey{}, false, fmt.Errorf("%w: %s", ErrMintMismatch, addr)
	}
	if !acct.Owner.Equals(owner) {
		return solana.PublicKey{}, false, fmt.Errorf("%w: %s owned by %s", ErrOwnerMismatch, addr, acct.Owner)
	}
	return addr, false, nil
}
