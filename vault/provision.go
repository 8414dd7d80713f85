package vault

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/token"
)

// ProvisionReceipt describes a newly created holding account.
type ProvisionReceipt struct {
	HoldingAccount solana.PublicKey `json:"holding_account"`
	Mint           solana.PublicKey `json:"mint"`
	Authority      solana.PublicKey `json:"authority"`
	Bump           uint8            `json:"bump"`
	Payer          solana.PublicKey `json:"payer"`
	RentPaid       uint64           `json:"rent_paid"`
}

// Provision creates the holding account of mint, owned by the vault authority
// and paid for by caller. It runs once per mint.
func (v *Vault) Provision(db StateDB, mint, caller solana.PublicKey) (*ProvisionReceipt, error) {
	if caller.IsZero() {
		return nil, ErrInvalidPayer
	}
	auth, _, err := v.resolveMint(db, mint)
	if err != nil {
		return nil, err
	}
	holding := auth.HoldingAccount()
	if db.Exist(holding) {
		return nil, fmt.Errorf("%w: %s for mint %s", ErrDuplicateHoldingAccount, holding, mint)
	}
	snap := db.Snapshot()
	addr, err := token.CreateAssociatedAccount(db, caller, auth.Key(), mint)
	if err != nil {
		db.RevertToSnapshot(snap)
		return nil, translateTokenError(err)
	}
	log.Info("Created program token account", "operation", "provision", "holding_account", addr,
		"mint", mint, "authority", auth.Key(), "payer", caller)

	return &ProvisionReceipt{
		HoldingAccount: addr,
		Mint:           mint,
		Authority:      auth.Key(),
		Bump:           auth.Bump(),
		Payer:          caller,
		RentPaid:       params.TokenAccountRentExempt,
	}, nil
}
