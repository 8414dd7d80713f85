package token

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Signer is a program-derived identity able to authorize a transfer. The
// token program accepts it only if its seeds re-derive its key under its
// program id.
type Signer interface {
	Key() solana.PublicKey
	SignerSeeds() [][]byte
	ProgramID() solana.PublicKey
}

// verifySigner checks that the signer seeds produce the signer key.
func verifySigner(signer Signer) error {
	addr, err := solana.CreateProgramAddress(signer.SignerSeeds(), signer.ProgramID())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
	}
	if !addr.Equals(signer.Key()) {
		return fmt.Errorf("%w: derived %s, signer %s", ErrInvalidSeeds, addr, signer.Key())
	}
	return nil
}

// TransferSigned moves amount tokens from source to destination on behalf of
// a program-derived signer that owns source. Every check runs before the
// first write, so either both balances change or neither does.
func TransferSigned(db StateDB, source, destination solana.PublicKey, signer Signer, amount uint64) error {
	if err := verifySigner(signer); err != nil {
		return err
	}
	src, err := ReadAccount(db, source)
	if err != nil {
		return err
	}
	dst, err := ReadAccount(db, destination)
	if err != nil {
		return err
	}
	if src.State == Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, source)
	}
	if dst.State == Frozen {
		return fmt.Errorf("%w: %s", ErrAccountFrozen, destination)
	}
	if !src.Mint.Equals(dst.Mint) {
		return fmt.Errorf("%w: source %s, destination %s", ErrMintMismatch, src.Mint, dst.Mint)
	}
	if !src.Owner.Equals(signer.Key()) {
		return fmt.Errorf("%w: %s owned by %s, signer %s", ErrOwnerMismatch, source, src.Owner, signer.Key())
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: have %d, want %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if source.Equals(destination) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}
	src.Amount -= amount
	dst.Amount += amount

	srcData, err := EncodeAccount(src)
	if err != nil {
		return err
	}
	dstData, err := EncodeAccount(dst)
	if err != nil {
		return err
	}
	if err := db.SetData(source, srcData); err != nil {
		return err
	}
	return db.SetData(destination, dstData)
}
