package token

import "errors"

var (
	ErrInvalidMint          = errors.New("token: invalid mint")
	ErrMintNotInitialized   = errors.New("token: mint not initialized")
	ErrAccountNotFound      = errors.New("token: account not found")
	ErrInvalidAccountOwner  = errors.New("token: account not owned by token program")
	ErrInvalidAccountData   = errors.New("token: invalid account data")
	ErrUninitializedAccount = errors.New("token: account not initialized")
	ErrAlreadyInUse         = errors.New("token: account already in use")
	ErrOwnerMismatch        = errors.New("token: owner does not match")
	ErrMintMismatch         = errors.New("token: account not associated with this mint")
	ErrInsufficientFunds    = errors.New("token: insufficient funds")
	ErrOverflow             = errors.New("token: operation overflowed")
	ErrAccountFrozen        = errors.New("token: account is frozen")
	ErrInvalidSeeds         = errors.New("token: signer seeds do not derive signer")
	ErrInsufficientRent     = errors.New("token: payer cannot fund rent exemption")
	ErrInvalidUIAmount      = errors.New("token: invalid ui amount")
)
