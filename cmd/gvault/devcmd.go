package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/cmd/utils"
	"github.com/tos-network/gvault/token"
	"github.com/urfave/cli/v2"
)

var decimalsFlag = &cli.UintFlag{
	Name:  "decimals",
	Usage: "Number of decimals of the new mint",
	Value: 6,
}

// The dev commands stand in for the wallet and token tooling that normally
// creates mints and funds identities.
var devCommand = &cli.Command{
	Name:  "dev",
	Usage: "Developer ledger utilities",
	Subcommands: []*cli.Command{
		{
			Action:    devKeygen,
			Name:      "keygen",
			Usage:     "Generate a new keypair file",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{jsonFlag},
		},
		{
			Action:    devAirdrop,
			Name:      "airdrop",
			Usage:     "Credit lamports to an identity",
			ArgsUsage: "<address> <lamports>",
		},
		{
			Action:    devCreateMint,
			Name:      "create-mint",
			Usage:     "Create a mint whose authority is the --keyfile identity",
			ArgsUsage: " ",
			Flags:     []cli.Flag{decimalsFlag, jsonFlag},
		},
		{
			Action:    devMintTo,
			Name:      "mint-to",
			Usage:     "Mint tokens to the associated account of an owner",
			ArgsUsage: "<mint> <owner> <amount>",
		},
	},
}

func devKeygen(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		utils.Fatalf("Missing keypair file argument")
	}
	if _, err := os.Stat(path); err == nil {
		utils.Fatalf("Keyfile already exists at %s.", path)
	}
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return err
	}
	// Keygen files hold the 64 key bytes as a JSON array of numbers.
	raw := make([]int, len(key))
	for i, b := range key {
		raw[i] = int(b)
	}
	out, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0600); err != nil {
		utils.Fatalf("Failed to write keyfile to %s: %v", path, err)
	}
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx.App.Writer, map[string]string{"address": key.PublicKey().String()})
		return nil
	}
	fmt.Fprintln(ctx.App.Writer, "Address:", key.PublicKey())
	return nil
}

func devAirdrop(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	addr := publicKeyArg(ctx, 0, "address")
	lamports, err := strconv.ParseUint(ctx.Args().Get(1), 10, 64)
	if err != nil {
		utils.Fatalf("Invalid lamport amount: %v", err)
	}
	if err := l.state.AddBalance(addr, lamports); err != nil {
		utils.Fatalf("Airdrop failed: %v", err)
	}
	l.commit()
	fmt.Fprintf(ctx.App.Writer, "%s: %d lamports\n", addr, l.state.GetBalance(addr))
	return nil
}

func devCreateMint(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	authority, err := utils.LoadKeyFile(ctx)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	decimals := ctx.Uint(decimalsFlag.Name)
	if decimals > 18 {
		utils.Fatalf("Too many decimals: %d", decimals)
	}
	mint := solana.NewWallet().PublicKey()
	if _, err := token.InitializeMint(l.state, mint, authority.PublicKey(), authority.PublicKey(), uint8(decimals)); err != nil {
		utils.Fatalf("Failed to create mint: %v", err)
	}
	l.commit()
	if ctx.Bool(jsonFlag.Name) {
		mustPrintJSON(ctx.App.Writer, map[string]string{"mint": mint.String()})
		return nil
	}
	color.New(color.FgGreen).Fprintf(ctx.App.Writer, "Created mint %s (decimals %d)\n", mint, decimals)
	return nil
}

func devMintTo(ctx *cli.Context) error {
	l := openLedger(ctx)
	defer l.close()

	mint := publicKeyArg(ctx, 0, "mint")
	owner := publicKeyArg(ctx, 1, "owner")
	amount, err := strconv.ParseUint(ctx.Args().Get(2), 10, 64)
	if err != nil {
		utils.Fatalf("Invalid amount: %v", err)
	}
	authority, err := utils.LoadKeyFile(ctx)
	if err != nil {
		utils.Fatalf("%v", err)
	}
	addr, _, err := token.EnsureAssociatedAccount(l.state, authority.PublicKey(), owner, mint)
	if err != nil {
		utils.Fatalf("Failed to open token account: %v", err)
	}
	if err := token.MintTo(l.state, mint, addr, authority.PublicKey(), amount); err != nil {
		utils.Fatalf("Mint failed: %v", err)
	}
	l.commit()
	bal, _ := token.Balance(l.state, addr)
	fmt.Fprintf(ctx.App.Writer, "%s: %d\n", addr, bal)
	return nil
}
