package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/naoina/toml"
	"github.com/tos-network/gvault/cmd/utils"
	"github.com/tos-network/gvault/internal/flags"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/params"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "[file]",
	Description: `The dumpconfig command shows configuration values.`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type vaultConfig struct {
	ProgramID        string
	AuthorizedCaller string
}

type databaseConfig struct {
	DataDir  string
	Cache    int
	Handles  int
	InMemory bool
}

type logConfig struct {
	Verbosity int
	JSON      bool
}

type gvaultConfig struct {
	Vault    vaultConfig
	Database databaseConfig
	Log      logConfig
}

func defaultConfig() gvaultConfig {
	return gvaultConfig{
		Vault: vaultConfig{
			ProgramID:        params.MainnetVaultConfig.ProgramID.String(),
			AuthorizedCaller: params.MainnetVaultConfig.AuthorizedCaller.String(),
		},
		Database: databaseConfig{
			DataDir: utils.DataDirFlag.Value,
			Cache:   utils.CacheFlag.Value,
			Handles: utils.HandlesFlag.Value,
		},
		Log: logConfig{
			Verbosity: utils.VerbosityFlag.Value,
		},
	}
}

func loadConfig(file string, cfg *gvaultConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// vaultParams converts the textual vault section into a checked VaultConfig.
func (c *gvaultConfig) vaultParams() (*params.VaultConfig, error) {
	program, err := utils.ParsePublicKey("program id", c.Vault.ProgramID)
	if err != nil {
		return nil, err
	}
	caller, err := utils.ParsePublicKey("authorized caller", c.Vault.AuthorizedCaller)
	if err != nil {
		return nil, err
	}
	return &params.VaultConfig{ProgramID: program, AuthorizedCaller: caller}, nil
}

// applyFlags overrides file values with explicitly set command line flags.
// Vault flags are handled by utils.SetVaultConfig.
func (c *gvaultConfig) applyFlags(ctx *cli.Context) {
	if ctx.IsSet(utils.DataDirFlag.Name) {
		c.Database.DataDir = ctx.String(utils.DataDirFlag.Name)
	}
	if ctx.IsSet(utils.CacheFlag.Name) {
		c.Database.Cache = ctx.Int(utils.CacheFlag.Name)
	}
	if ctx.IsSet(utils.HandlesFlag.Name) {
		c.Database.Handles = ctx.Int(utils.HandlesFlag.Name)
	}
	if ctx.IsSet(utils.InMemoryFlag.Name) {
		c.Database.InMemory = ctx.Bool(utils.InMemoryFlag.Name)
	}
	if ctx.IsSet(utils.VerbosityFlag.Name) {
		c.Log.Verbosity = ctx.Int(utils.VerbosityFlag.Name)
	}
	if ctx.IsSet(utils.LogJSONFlag.Name) {
		c.Log.JSON = ctx.Bool(utils.LogJSONFlag.Name)
	}
}

// makeConfig loads the configuration file, applies flags, installs the
// logger and validates the vault settings.
func makeConfig(ctx *cli.Context) (gvaultConfig, *params.VaultConfig) {
	if err := flags.CheckExclusive(ctx, utils.DataDirFlag, utils.InMemoryFlag); err != nil {
		utils.Fatalf("%v", err)
	}
	cfg := defaultConfig()
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}
	cfg.applyFlags(ctx)
	log.Setup(cfg.Log.Verbosity, cfg.Log.JSON)

	vcfg, err := cfg.vaultParams()
	if err != nil {
		utils.Fatalf("Invalid vault configuration: %v", err)
	}
	if err := utils.SetVaultConfig(ctx, vcfg); err != nil {
		utils.Fatalf("Invalid vault configuration: %v", err)
	}
	cfg.Vault = vaultConfig{
		ProgramID:        vcfg.ProgramID.String(),
		AuthorizedCaller: vcfg.AuthorizedCaller.String(),
	}
	return cfg, vcfg
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, _ := makeConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}
