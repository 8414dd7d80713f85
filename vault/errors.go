package vault

import "errors"

var (
	ErrInvalidAmount           = errors.New("vault: invalid amount")
	ErrUnauthorized            = errors.New("vault: unauthorized")
	ErrInvalidVaultAuthority   = errors.New("vault: invalid vault authority")
	ErrTokenMintMismatch       = errors.New("vault: token mint mismatch")
	ErrInsufficientBalance     = errors.New("vault: insufficient balance")
	ErrDuplicateHoldingAccount = errors.New("vault: holding account already provisioned")
	ErrInvalidAssetClass       = errors.New("vault: invalid asset class")

	ErrInvalidNamespace        = errors.New("vault: invalid namespace")
	ErrInvalidRecipient        = errors.New("vault: invalid recipient")
	ErrInvalidRecipientAccount = errors.New("vault: recipient account bound to another owner")
	ErrInvalidPayer            = errors.New("vault: invalid payer")
	ErrPayerInsufficientFunds  = errors.New("vault: payer cannot fund account creation")
)
