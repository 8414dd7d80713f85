package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/token"
)

// TransferRequest asks the vault to move Amount tokens of Mint out of its
// holding account to the token account of Recipient.
type TransferRequest struct {
	Mint solana.PublicKey

	// From is the account to debit. It may be left zero, in which case the
	// holding account of Mint is used; otherwise it must be that account.
	From solana.PublicKey

	Recipient solana.PublicKey
	Amount    uint64

	// Payer funds recipient account creation and defaults to Caller. It must
	// be an identity that authorized the charge; the action handler only
	// ever passes the sender.
	Payer solana.PublicKey

	// Caller is the verified identity issuing the request.
	Caller solana.PublicKey
}

// Receipt is the outcome of a successful transfer.
type Receipt struct {
	Mint             solana.PublicKey `json:"mint"`
	Source           solana.PublicKey `json:"source"`
	Destination      solana.PublicKey `json:"destination"`
	Recipient        solana.PublicKey `json:"recipient"`
	Amount           uint64           `json:"amount"`
	Payer            solana.PublicKey `json:"payer"`
	Authority        solana.PublicKey `json:"authority"`
	Bump             uint8            `json:"bump"`
	RecipientCreated bool             `json:"recipient_created"`
	RentPaid         uint64           `json:"rent_paid"`
	HoldingBalance   uint64           `json:"holding_balance"`
}

// Transfer validates req and, if it is acceptable, moves the tokens. Checks
// run in a fixed order and stop at the first failure:
//
//  1. the amount is non-zero
//  2. the caller is the authorized caller
//  3. the source is the holding account of the mint's vault authority
//  4. the recipient account exists, or is created at the payer's expense
//  5. the re-derived authority signs the debit of its own holding account
//
// A failed request leaves the ledger as it found it.
func (v *Vault) Transfer(db StateDB, req *TransferRequest) (*Receipt, error) {
	if req.Amount == 0 {
		return nil, ErrInvalidAmount
	}
	if !req.Caller.Equals(v.config.AuthorizedCaller) {
		return nil, fmt.Errorf("%w: caller %s", ErrUnauthorized, req.Caller)
	}
	payer := req.Payer
	if payer.IsZero() {
		payer = req.Caller
	}
	auth, _, err := v.resolveMint(db, req.Mint)
	if err != nil {
		return nil, err
	}
	source := auth.HoldingAccount()
	if !req.From.IsZero() && !req.From.Equals(source) {
		return nil, v.foreignSourceError(db, req.From, req.Mint)
	}
	if _, err := v.holdingAccount(db, auth); err != nil {
		return nil, err
	}
	if req.Recipient.IsZero() {
		return nil, ErrInvalidRecipient
	}

	snap := db.Snapshot()
	dest, created, err := token.EnsureAssociatedAccount(db, payer, req.Recipient, req.Mint)
	if err != nil {
		db.RevertToSnapshot(snap)
		return nil, recipientError(err)
	}
	if err := auth.Verify(); err != nil {
		db.RevertToSnapshot(snap)
		return nil, err
	}
	if err := token.TransferSigned(db, source, dest, auth, req.Amount); err != nil {
		db.RevertToSnapshot(snap)
		return nil, translateTokenError(err)
	}
	remaining, err := token.Balance(db, source)
	if err != nil {
		db.RevertToSnapshot(snap)
		return nil, err
	}
	log.Info("Transferred tokens", "operation", "transfer", "amount", req.Amount,
		"source", source, "destination", dest, "payer", payer, "authority", auth.Key(),
		"mint", req.Mint, "created", created)

	receipt := &Receipt{
		Mint:             req.Mint,
		Source:           source,
		Destination:      dest,
		Recipient:        req.Recipient,
		Amount:           req.Amount,
		Payer:            payer,
		Authority:        auth.Key(),
		Bump:             auth.Bump(),
		RecipientCreated: created,
		HoldingBalance:   remaining,
	}
	if created {
		receipt.RentPaid = params.TokenAccountRentExempt
	}
	return receipt, nil
}

// foreignSourceError classifies a source account that is not the holding
// account of the requested mint.
func (v *Vault) foreignSourceError(db StateDB, from, mint solana.PublicKey) error {
	if acct, err := token.ReadAccount(db, from); err == nil && !acct.Mint.Equals(mint) {
		return fmt.Errorf("%w: source %s holds %s", ErrTokenMintMismatch, from, acct.Mint)
	}
	return fmt.Errorf("%w: %s is not the holding account of %s", ErrInvalidVaultAuthority, from, mint)
}

func recipientError(err error) error {
	if translated := translateTokenError(err); translated != err {
		return translated
	}
	return fmt.Errorf("%w: %v", ErrInvalidRecipientAccount, err)
}
