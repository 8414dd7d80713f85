// Copyright 2024 The gvault Authors
// This file is part of the gvault library.
//
// The gvault library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gvault library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gvault library. If not, see <http://www.gnu.org/licenses/>.


// Package utils contains internal helper functions for gvault commands.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/internal/flags"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/params"
	"github.com/tos-network/gvault/tosdb"
	"github.com/tos-network/gvault/tosdb/leveldb"
	"github.com/tos-network/gvault/tosdb/memorydb"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// General settings
	DataDirFlag = &cli.StringFlag{
		Name:      "datadir",
		Usage:     "Data directory for the ledger database",
		Value:     DefaultDataDir(),
		TakesFile: true,
		Category:  flags.DatabaseCategory,
	}
	ConfigFileFlag = &cli.StringFlag{
		Name:      "config",
		Usage:     "TOML configuration file",
		TakesFile: true,
		Category:  flags.MiscCategory,
	}
	InMemoryFlag = &cli.BoolFlag{
		Name:     "memdb",
		Usage:    "Use a throwaway in-memory ledger instead of the data directory",
		Category: flags.DatabaseCategory,
	}
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to the ledger database",
		Value:    64,
		Category: flags.DatabaseCategory,
	}
	HandlesFlag = &cli.IntFlag{
		Name:     "handles",
		Usage:    "Number of open file handles allowed to the ledger database",
		Value:    256,
		Category: flags.DatabaseCategory,
	}

	// Vault settings
	VaultProgramFlag = &cli.StringFlag{
		Name:     "vault.program",
		Usage:    "Program id vault authorities are derived under",
		Value:    params.MainnetVaultConfig.ProgramID.String(),
		Category: flags.VaultCategory,
	}
	VaultCallerFlag = &cli.StringFlag{
		Name:     "vault.caller",
		Usage:    "Identity authorized to request transfers",
		Value:    params.MainnetVaultConfig.AuthorizedCaller.String(),
		Category: flags.VaultCategory,
	}
	KeyFileFlag = &cli.StringFlag{
		Name:      "keyfile",
		Usage:     "Keypair file of the identity issuing the request",
		TakesFile: true,
		Category:  flags.AccountCategory,
	}

	// Logging
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value:    int(log.LvlInfo),
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}
)

// DefaultDataDir is the default data directory to use for the ledger.
func DefaultDataDir() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "GVault")
	case "windows":
		if appdata := os.Getenv("LOCALAPPDATA"); appdata != "" {
			return filepath.Join(appdata, "GVault")
		}
		return filepath.Join(home, "AppData", "Local", "GVault")
	default:
		return filepath.Join(home, ".gvault")
	}
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}

// ParsePublicKey decodes a base58 identity given on the command line.
func ParsePublicKey(name, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %v", name, value, err)
	}
	return key, nil
}

// SetVaultConfig applies vault related command line flags to the config.
func SetVaultConfig(ctx *cli.Context, cfg *params.VaultConfig) error {
	if ctx.IsSet(VaultProgramFlag.Name) {
		key, err := ParsePublicKey("program id", ctx.String(VaultProgramFlag.Name))
		if err != nil {
			return err
		}
		cfg.ProgramID = key
	}
	if ctx.IsSet(VaultCallerFlag.Name) {
		key, err := ParsePublicKey("authorized caller", ctx.String(VaultCallerFlag.Name))
		if err != nil {
			return err
		}
		cfg.AuthorizedCaller = key
	}
	return cfg.CheckConfig()
}

// LoadKeyFile reads the keypair identifying the caller.
func LoadKeyFile(ctx *cli.Context) (solana.PrivateKey, error) {
	path := ctx.String(KeyFileFlag.Name)
	if path == "" {
		return nil, fmt.Errorf("--%s is required", KeyFileFlag.Name)
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyfile %s: %v", path, err)
	}
	return key, nil
}

// OpenDatabase opens the ledger store selected by the flags: an in-memory
// database for --memdb, otherwise leveldb under the data directory.
func OpenDatabase(datadir string, cache, handles int, inMemory bool) (tosdb.KeyValueStore, error) {
	if inMemory {
		log.Info("Using in-memory ledger")
		return memorydb.New(), nil
	}
	if datadir == "" {
		return nil, fmt.Errorf("no data directory, use --%s", DataDirFlag.Name)
	}
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, err
	}
	db, err := leveldb.New(filepath.Join(datadir, "ledger"), cache, handles, false)
	if err != nil {
		return nil, err
	}
	return db, nil
}
