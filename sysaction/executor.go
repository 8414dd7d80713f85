package sysaction

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/common"
	"github.com/tos-network/gvault/core/state"
	"github.com/tos-network/gvault/crypto"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/params"
)

// ErrUnknownAction is returned when no handler accepts an action kind.
var ErrUnknownAction = errors.New("unknown system action")

// Context carries information available to a system-action handler.
type Context struct {
	From    solana.PublicKey
	StateDB *state.StateDB
	Config  *params.VaultConfig
}

// Handler is implemented by sub-systems that own one or more action kinds.
// The returned value is reported as the action output.
type Handler interface {
	CanHandle(kind ActionKind) bool
	Handle(ctx *Context, sa *SysAction) (interface{}, error)
}

// Registry holds registered handlers.
type Registry struct{ handlers []Handler }

// DefaultRegistry is the process-wide handler registry.
var DefaultRegistry = &Registry{}

// Register adds a handler to the registry.
func (r *Registry) Register(h Handler) { r.handlers = append(r.handlers, h) }

// Lookup returns the first handler accepting kind, or nil.
func (r *Registry) Lookup(kind ActionKind) Handler {
	for _, h := range r.handlers {
		if h.CanHandle(kind) {
			return h
		}
	}
	return nil
}

// Result reports the outcome of an executed action.
type Result struct {
	Action  ActionKind  `json:"action"`
	Hash    common.Hash `json:"hash"`
	GasUsed uint64      `json:"gasUsed"`
	Output  interface{} `json:"output,omitempty"`
}

// Execute runs the action encoded in data against ctx.StateDB using the
// default registry. State changes made by a failing handler are reverted;
// nothing is committed here.
func Execute(ctx *Context, data []byte) (*Result, error) {
	return DefaultRegistry.Execute(ctx, data)
}

// Execute decodes data and dispatches it to the matching handler.
func (r *Registry) Execute(ctx *Context, data []byte) (*Result, error) {
	res := &Result{
		Hash:    crypto.Keccak256Hash(data),
		GasUsed: params.SysActionGas,
	}
	sa, err := Decode(data)
	if err != nil {
		return res, err
	}
	res.Action = sa.Action

	h := r.Lookup(sa.Action)
	if h == nil {
		return res, fmt.Errorf("%w: %q", ErrUnknownAction, sa.Action)
	}
	snap := ctx.StateDB.Snapshot()
	out, err := h.Handle(ctx, sa)
	if err != nil {
		ctx.StateDB.RevertToSnapshot(snap)
		log.Debug("System action failed", "action", sa.Action, "hash", res.Hash, "from", ctx.From, "err", err)
		return res, err
	}
	res.Output = out
	log.Debug("Executed system action", "action", sa.Action, "hash", res.Hash, "from", ctx.From)
	return res, nil
}
