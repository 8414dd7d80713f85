// Package sysaction implements the vault action envelope.
//
// An action is a JSON-encoded SysAction message submitted by an identified
// caller. Execute decodes it and dispatches to the handler registered for its
// kind (e.g. the vault handler), which mutates the ledger state directly.
package sysaction

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

// ActionKind identifies the type of system action.
type ActionKind string

const (
	// Vault lifecycle
	ActionVaultProvision ActionKind = "VAULT_PROVISION"
	ActionVaultTransfer  ActionKind = "VAULT_TRANSFER"
)

// SysAction is the top-level envelope of an action.
type SysAction struct {
	Action  ActionKind      `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// VaultProvisionPayload is the payload for VAULT_PROVISION.
type VaultProvisionPayload struct {
	Mint  solana.PublicKey `json:"mint"`
	Payer solana.PublicKey `json:"payer"` // zero or the sender
}

// VaultTransferPayload is the payload for VAULT_TRANSFER.
type VaultTransferPayload struct {
	Mint      solana.PublicKey `json:"mint"`
	From      solana.PublicKey `json:"from"` // zero: the mint's holding account
	Recipient solana.PublicKey `json:"recipient"`
	Amount    uint64           `json:"amount"`
	Payer     solana.PublicKey `json:"payer"` // zero or the sender
}
