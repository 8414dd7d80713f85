package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/cmd/utils"
	"github.com/tos-network/gvault/sysaction"
	"github.com/tos-network/gvault/token"
	"github.com/tos-network/gvault/vault"
	"github.com/urfave/cli/v2"
)

var (
	fromFlag = &cli.StringFlag{
		Name:  "from",
		Usage: "Account to debit; must be the mint's holding account",
	}
	uiAmountFlag = &cli.BoolFlag{
		Name:  "ui-amount",
		Usage: "Interpret the amount as a decimal scaled by the mint's decimals",
	}
)

var (
	deriveCommand = &cli.Command{
		Action:    derive,
		Name:      "derive",
		Usage:     "Show the vault authority and holding account of a mint",
		ArgsUsage: "<mint>",
		Flags:     []cli.Flag{jsonFlag},
		Description: `
Derives the vault authority, its proof nonce and the holding account for the
given mint and reports whether the holding account has been provisioned.`,
	}
	provisionCommand = &cli.Command{
		Action:    provision,
		Name:      "provision",
		Usage:     "Create the holding account of a mint",
		ArgsUsage: "<mint>",
		Flags:     []cli.Flag{jsonFlag},
		Description: `
Creates the program-custodied holding account of the mint. The caller given by
--keyfile pays for the account.`,
	}
	transferCommand = &cli.Command{
		Action:    transfer,
		Name:      "transfer",
		Usage:     "Move tokens from a holding account to a recipient",
		ArgsUsage: "<mint> <recipient> <amount>",
		Flags:     []cli.Flag{fromFlag, uiAmountFlag, jsonFlag},
		Description: `
Transfers tokens out of the mint's holding account. Only the authorized caller
may transfer. The recipient's token account is created if it does not exist,
paid for by the caller.`,
	}
	balanceCommand = &cli.Command{
		Action:    balance,
		Name:      "balance",
		Usage:     "Show a token balance",
		ArgsUsage: "<mint> [owner]",
		Flags:     []cli.Flag{jsonFlag},
		Description: `
Prints the holding account balance of the mint, or the balance of the owner's
associated token account if an owner is given.`,
	}
	actionCommand = &cli.Command{
		Action:    runAction,
		Name:      "action",
		Usage:     "Execute a JSON encoded vault action",
		ArgsUsage: "<file|->",
		Description: `
Reads an action envelope such as
  {"action":"VAULT_TRANSFER","payload":{"mint":"...","recipient":"...","amount":1}}
and executes it as the identity given by --keyfile.`,
	}
)

type deriveOutput struct {
	Mint           solana.PublicKey `json:"mint"`
	ProgramID      solana.PublicKey `json:"program_id"`
	Authority      solana.PublicKey `json:"authority"`
	Bump           uint8            `json:"bump"`
	HoldingAccount solana.PublicKey `json:"holding_account"`
	Provisioned    bool             `json:"provisioned"`
	Balance        uint64           `json:"balance"`
}

func derive(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	mint := publicKeyArg(ctx, 0, "mint")
	v, err := vault.New(l.vault)
	if err != nil {
		return err
	}
	auth, err := v.Authority(mint)
	if err != nil {
		return err
	}
	out := deriveOutput{
		Mint:           mint,
		ProgramID:      auth.ProgramID(),
		Authority:      auth.Key(),
		Bump:           auth.Bump(),
		HoldingAccount: auth.HoldingAccount(),
	}
	if bal, err := v.HoldingBalance(l.state, mint); err == nil {
		out.Provisioned, out.Balance = true, bal
	} else if !errors.Is(err, vault.ErrInvalidVaultAuthority) {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx.App.Writer, out)
		return nil
	}
	w := ctx.App.Writer
	fmt.Fprintf(w, "Mint:            %s\n", out.Mint)
	fmt.Fprintf(w, "Program:         %s\n", out.ProgramID)
	fmt.Fprintf(w, "Authority:       %s (bump %d)\n", out.Authority, out.Bump)
	fmt.Fprintf(w, "Holding account: %s\n", out.HoldingAccount)
	if out.Provisioned {
		color.New(color.FgGreen).Fprintf(w, "Provisioned, balance %s\n", formatAmount(l.state, mint, out.Balance))
	} else {
		color.New(color.FgYellow).Fprintln(w, "Not provisioned")
	}
	return nil
}

func provision(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	mint := publicKeyArg(ctx, 0, "mint")
	caller, err := utils.LoadKeyFile(ctx)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	data, err := sysaction.MakeSysAction(sysaction.ActionVaultProvision, &sysaction.VaultProvisionPayload{
		Mint: mint,
	})
	if err != nil {
		return err
	}
	res, err := l.execute(caller.PublicKey(), data)
	if err != nil {
		utils.Fatalf("Provisioning failed: %v", err)
	}
	receipt := res.Output.(*vault.ProvisionReceipt)
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx.App.Writer, receipt)
		return nil
	}
	color.New(color.FgGreen).Fprintf(ctx.App.Writer, "Created program token account %s for mint %s with vault authority %s\n",
		receipt.HoldingAccount, receipt.Mint, receipt.Authority)
	return nil
}

func transfer(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	if ctx.NArg() != 3 {
		utils.Fatalf("Usage: transfer <mint> <recipient> <amount>")
	}
	mint := publicKeyArg(ctx, 0, "mint")
	recipient := publicKeyArg(ctx, 1, "recipient")
	amount, err := parseAmount(l.state, mint, ctx.Args().Get(2), ctx.Bool(uiAmountFlag.Name))
	if err != nil {
		utils.Fatalf("%v", err)
	}
	caller, err := utils.LoadKeyFile(ctx)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	data, err := sysaction.MakeSysAction(sysaction.ActionVaultTransfer, &sysaction.VaultTransferPayload{
		Mint:      mint,
		From:      optionalKeyFlag(ctx, fromFlag),
		Recipient: recipient,
		Amount:    amount,
	})
	if err != nil {
		return err
	}
	res, err := l.execute(caller.PublicKey(), data)
	if err != nil {
		utils.Fatalf("Transfer failed: %v", err)
	}
	receipt := res.Output.(*vault.Receipt)
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx.App.Writer, receipt)
		return nil
	}
	w := ctx.App.Writer
	color.New(color.FgGreen).Fprintf(w, "Transferred %s tokens from %s to %s\n",
		formatAmount(l.state, mint, receipt.Amount), receipt.Source, receipt.Destination)
	if receipt.RecipientCreated {
		fmt.Fprintf(w, "Created recipient account, rent %d lamports paid by %s\n", receipt.RentPaid, receipt.Payer)
	}
	fmt.Fprintf(w, "Holding balance: %s\n", formatAmount(l.state, mint, receipt.HoldingBalance))
	fmt.Fprintf(w, "Action hash:     %s\n", res.Hash.Hex())
	return nil
}

type balanceOutput struct {
	Mint     solana.PublicKey `json:"mint"`
	Account  solana.PublicKey `json:"account"`
	Amount   uint64           `json:"amount"`
	UIAmount string           `json:"ui_amount"`
}

func balance(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	mint := publicKeyArg(ctx, 0, "mint")
	var (
		account solana.PublicKey
		amount  uint64
		err     error
	)
	if ctx.NArg() > 1 {
		owner := publicKeyArg(ctx, 1, "owner")
		if account, err = token.AssociatedAddress(owner, mint); err != nil {
			return err
		}
		amount, err = token.Balance(l.state, account)
	} else {
		v, verr := vault.New(l.vault)
		if verr != nil {
			return verr
		}
		auth, aerr := v.Authority(mint)
		if aerr != nil {
			return aerr
		}
		account = auth.HoldingAccount()
		amount, err = v.HoldingBalance(l.state, mint)
	}
	if err != nil {
		utils.Fatalf("Failed to read balance of %s: %v", account, err)
	}
	out := balanceOutput{Mint: mint, Account: account, Amount: amount, UIAmount: formatAmount(l.state, mint, amount)}
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx.App.Writer, out)
		return nil
	}
	fmt.Fprintf(ctx.App.Writer, "%s: %s\n", out.Account, out.UIAmount)
	return nil
}

func runAction(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	var (
		in  io.Reader = os.Stdin
		src           = ctx.Args().First()
	)
	if src == "" {
		utils.Fatalf("Missing action file (use - for stdin)")
	}
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			utils.Fatalf("Failed to open action file: %v", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}
	caller, err := utils.LoadKeyFile(ctx)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	res, err := l.execute(caller.PublicKey(), data)
	if err != nil {
		utils.Fatalf("Action %s failed: %v", res.Hash.Hex(), err)
	}
	mustPrintJSON(ctx.App.Writer, res)
	return nil
}
