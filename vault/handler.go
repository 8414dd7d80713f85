package vault

import (
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/sysaction"
)

func init() {
	sysaction.DefaultRegistry.Register(&vaultHandler{vaults: make(map[params.VaultConfig]*Vault)})
}

// vaultHandler implements sysaction.Handler for vault actions. Vault services
// are created once per configuration so their authority caches are reused.
type vaultHandler struct {
	mu     sync.Mutex
	vaults map[params.VaultConfig]*Vault
}

func (h *vaultHandler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionVaultProvision, sysaction.ActionVaultTransfer:
		return true
	}
	return false
}

func (h *vaultHandler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) (interface{}, error) {
	v, err := h.vault(ctx.Config)
	if err != nil {
		return nil, err
	}
	switch sa.Action {
	case sysaction.ActionVaultProvision:
		return h.handleProvision(v, ctx, sa)
	case sysaction.ActionVaultTransfer:
		return h.handleTransfer(v, ctx, sa)
	}
	return nil, fmt.Errorf("vault handler: unsupported action %q", sa.Action)
}

func (h *vaultHandler) vault(config *params.VaultConfig) (*Vault, error) {
	if err := config.CheckConfig(); err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if v, ok := h.vaults[*config]; ok {
		return v, nil
	}
	v, err := New(config)
	if err != nil {
		return nil, err
	}
	h.vaults[*config] = v
	return v, nil
}

func (h *vaultHandler) handleProvision(v *Vault, ctx *sysaction.Context, sa *sysaction.SysAction) (interface{}, error) {
	var p sysaction.VaultProvisionPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return nil, fmt.Errorf("vault provision: %w", err)
	}
	if err := checkPayer(ctx, p.Payer); err != nil {
		return nil, fmt.Errorf("vault provision: %w", err)
	}
	return v.Provision(ctx.StateDB, p.Mint, ctx.From)
}

func (h *vaultHandler) handleTransfer(v *Vault, ctx *sysaction.Context, sa *sysaction.SysAction) (interface{}, error) {
	var p sysaction.VaultTransferPayload
	if err := sysaction.DecodePayload(sa, &p); err != nil {
		return nil, fmt.Errorf("vault transfer: %w", err)
	}
	if err := checkPayer(ctx, p.Payer); err != nil {
		return nil, fmt.Errorf("vault transfer: %w", err)
	}
	return v.Transfer(ctx.StateDB, &TransferRequest{
		Mint:      p.Mint,
		From:      p.From,
		Recipient: p.Recipient,
		Amount:    p.Amount,
		Payer:     ctx.From,
		Caller:    ctx.From,
	})
}

// checkPayer rejects a payload payer other than the sender, the only identity
// the envelope authenticates.
func checkPayer(ctx *sysaction.Context, payer solana.PublicKey) error {
	if !payer.IsZero() && !payer.Equals(ctx.From) {
		return fmt.Errorf("%w: %s did not send the action", ErrInvalidPayer, payer)
	}
	return nil
}
