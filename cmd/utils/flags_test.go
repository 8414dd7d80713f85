package utils

import (
	"flag"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/params"
	"github.com/urfave/cli/v2"
)

func newFlagContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range []cli.Flag{VaultProgramFlag, VaultCallerFlag} {
		if err := f.Apply(set); err != nil {
			t.Fatal(err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetVaultConfig(t *testing.T) {
	program := solana.NewWallet().PublicKey()
	caller := solana.NewWallet().PublicKey()

	tests := []struct {
		name    string
		args    []string
		want    params.VaultConfig
		wantErr bool
	}{
		{
			name: "defaults kept",
			want: *params.MainnetVaultConfig,
		},
		{
			name: "override both",
			args: []string{"--vault.program", program.String(), "--vault.caller", caller.String()},
			want: params.VaultConfig{ProgramID: program, AuthorizedCaller: caller},
		},
		{
			name:    "malformed caller",
			args:    []string{"--vault.caller", "not-base58!"},
			wantErr: true,
		},
		{
			name:    "caller equals program",
			args:    []string{"--vault.program", program.String(), "--vault.caller", program.String()},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := params.MainnetVaultConfig.Copy()
			err := SetVaultConfig(newFlagContext(t, tt.args...), cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && *cfg != tt.want {
				t.Fatalf("config mismatch: have %v, want %v", cfg, &tt.want)
			}
		})
	}
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(t.TempDir(), 16, 16, false)
	if err != nil {
		t.Fatalf("OpenDatabase: %v", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := OpenDatabase("", 16, 16, false); err == nil {
		t.Fatal("expected error for empty datadir")
	}
	mem, err := OpenDatabase("", 0, 0, true)
	if err != nil || mem == nil {
		t.Fatalf("in-memory database: %v", err)
	}
}
