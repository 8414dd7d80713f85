package main

import (
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/olekukonko/tablewriter"
	"github.com/tos-network/gvault/core/rawdb"
	"github.com/tos-network/gvault/core/types"
	"github.com/tos-network/gvault/token"
	"github.com/urfave/cli/v2"
)

var accountsCommand = &cli.Command{
	Action:    listAccounts,
	Name:      "accounts",
	Usage:     "List every account in the ledger",
	ArgsUsage: " ",
	Flags:     []cli.Flag{jsonFlag},
}

type accountRow struct {
	Address  solana.PublicKey `json:"address"`
	Owner    solana.PublicKey `json:"owner"`
	Lamports uint64           `json:"lamports"`
	Kind     string           `json:"kind"`
	Mint     solana.PublicKey `json:"mint,omitempty"`
	Holder   solana.PublicKey `json:"holder,omitempty"`
	Amount   uint64           `json:"amount,omitempty"`
}

func describeAccount(addr solana.PublicKey, acct *types.StateAccount) accountRow {
	row := accountRow{Address: addr, Owner: acct.Owner, Lamports: acct.Lamports, Kind: "system"}
	if !acct.Owner.Equals(solana.TokenProgramID) {
		if !acct.Owner.Equals(solana.SystemProgramID) {
			row.Kind = "program"
		}
		return row
	}
	if m, err := token.DecodeMint(acct.Data); err == nil {
		row.Kind = "mint"
		row.Amount = m.Supply
		return row
	}
	if t, err := token.DecodeAccount(acct.Data); err == nil {
		row.Kind = "token"
		row.Mint, row.Holder, row.Amount = t.Mint, t.Owner, t.Amount
		return row
	}
	row.Kind = "invalid"
	return row
}

func listAccounts(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	var rows []accountRow
	err := rawdb.IterateAccounts(l.db, func(addr solana.PublicKey, acct *types.StateAccount) bool {
		rows = append(rows, describeAccount(addr, acct))
		return true
	})
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx.App.Writer, rows)
		return nil
	}
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Address", "Kind", "Lamports", "Mint", "Holder", "Amount"})
	for _, r := range rows {
		var mint, holder, amount string
		if r.Kind == "token" {
			mint, holder = r.Mint.String(), r.Holder.String()
		}
		if r.Kind == "token" || r.Kind == "mint" {
			amount = strconv.FormatUint(r.Amount, 10)
		}
		table.Append([]string{r.Address.String(), r.Kind, strconv.FormatUint(r.Lamports, 10), mint, holder, amount})
	}
	table.Render()
	return nil
}
