package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/cmd/utils"
	"github.com/tos-network/gvault/core/state"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/sysaction"
	"github.com/tos-network/gvault/token"
	"github.com/tos-network/gvault/tosdb"
	"github.com/urfave/cli/v2"
)

// ledger bundles the opened store with a state view over it.
type ledger struct {
	db    tosdb.KeyValueStore
	state *state.StateDB
	vault *params.VaultConfig
}

// openLedger loads the configuration and opens the ledger database.
func openLedger(ctx *cli.Context) *ledger {
	cfg, vcfg := makeConfig(ctx)
	db, err := utils.OpenDatabase(cfg.Database.DataDir, cfg.Database.Cache, cfg.Database.Handles, cfg.Database.InMemory)
	if err != nil {
		utils.Fatalf("Failed to open ledger: %v", err)
	}
	return &ledger{db: db, state: state.New(db), vault: vcfg}
}

// commit persists all pending changes in a single batch.
func (l *ledger) commit() {
	if err := l.state.Commit(); err != nil {
		utils.Fatalf("Failed to commit ledger: %v", err)
	}
}

func (l *ledger) close() {
	l.db.Close()
}

// execute runs an encoded action as caller and commits it if it succeeds.
func (l *ledger) execute(caller solana.PublicKey, data []byte) (*sysaction.Result, error) {
	res, err := sysaction.Execute(&sysaction.Context{
		From:    caller,
		StateDB: l.state,
		Config:  l.vault,
	}, data)
	if err != nil {
		return res, err
	}
	l.commit()
	return res, nil
}

// publicKeyArg parses the n-th positional argument as an identity.
func publicKeyArg(ctx *cli.Context, n int, name string) solana.PublicKey {
	if ctx.NArg() <= n {
		utils.Fatalf("Missing %s argument", name)
	}
	key, err := utils.ParsePublicKey(name, ctx.Args().Get(n))
	if err != nil {
		utils.Fatalf("%v", err)
	}
	return key
}

// optionalKeyFlag parses an identity flag, returning the zero key if unset.
func optionalKeyFlag(ctx *cli.Context, flag *cli.StringFlag) solana.PublicKey {
	if !ctx.IsSet(flag.Name) {
		return solana.PublicKey{}
	}
	key, err := utils.ParsePublicKey(flag.Name, ctx.String(flag.Name))
	if err != nil {
		utils.Fatalf("%v", err)
	}
	return key
}

// parseAmount reads a raw amount, or a decimal one scaled by the mint's
// decimals when ui is set.
func parseAmount(db token.StateDB, mint solana.PublicKey, s string, ui bool) (uint64, error) {
	if !ui {
		amount, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q: %v", s, err)
		}
		return amount, nil
	}
	m, err := token.ReadMint(db, mint)
	if err != nil {
		return 0, err
	}
	return token.ParseUIAmount(s, m.Decimals)
}

// formatAmount renders amount with the mint's decimals when the mint is known.
func formatAmount(db token.StateDB, mint solana.PublicKey, amount uint64) string {
	m, err := token.ReadMint(db, mint)
	if err != nil {
		return strconv.FormatUint(amount, 10)
	}
	return token.FormatAmount(amount, m.Decimals)
}

func mustPrintJSON(w io.Writer, v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		utils.Fatalf("Failed to marshal JSON object: %v", err)
	}
	fmt.Fprintln(w, string(out))
}
