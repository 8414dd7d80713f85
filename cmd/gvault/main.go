// gvault is the operator tool of the custodial token vault.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/tos-network/gvault/cmd/utils"
	"github.com/tos-network/gvault/internal/flags"
	"github.com/urfave/cli/v2"

	// Register the vault action handler.
	_ "github.com/tos-network/gvault/vault"
)

const clientIdentifier = "gvault"

// Git SHA1 commit hash of the release (set via linker flags)
var (
	gitCommit = ""
	gitDate   = ""
)

var app *cli.App

var (
	databaseFlags = []cli.Flag{
		utils.DataDirFlag,
		utils.InMemoryFlag,
		utils.CacheFlag,
		utils.HandlesFlag,
	}
	vaultFlags = []cli.Flag{
		utils.VaultProgramFlag,
		utils.VaultCallerFlag,
	}
	logFlags = []cli.Flag{
		utils.VerbosityFlag,
		utils.LogJSONFlag,
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
)

func init() {
	app = flags.NewApp(gitCommit, gitDate, "the custodial token vault command line interface")
	app.Flags = append(app.Flags, utils.ConfigFileFlag, utils.KeyFileFlag)
	app.Flags = append(app.Flags, databaseFlags...)
	app.Flags = append(app.Flags, vaultFlags...)
	app.Flags = append(app.Flags, logFlags...)
	app.Commands = []*cli.Command{
		deriveCommand,
		provisionCommand,
		transferCommand,
		balanceCommand,
		accountsCommand,
		actionCommand,
		devCommand,
		dumpConfigCommand,
		versionCommand,
	}
	sort.Sort(cli.CommandsByName(app.Commands))
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
