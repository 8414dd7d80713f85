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

package params

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

var (
	// MainnetVaultConfig is the deployed vault program and the operator key
	// allowed to move funds out of its holding accounts.
	MainnetVaultConfig = &VaultConfig{
		ProgramID:        solana.MustPublicKeyFromBase58("5PkzwskiUGBr6HoqeALh3Y9k1kPK4a7xCZWi5q39LVLy"),
		AuthorizedCaller: solana.MustPublicKeyFromBase58("E4tL4xNAmtrEMxd9yi2YupxzvB3XPV5eKo4z15oyphsk"),
	}
)

var (
	ErrMissingProgramID        = errors.New("vault config: program id is not set")
	ErrMissingAuthorizedCaller = errors.New("vault config: authorized caller is not set")
	ErrCallerIsProgram         = errors.New("vault config: authorized caller must not be the program id")
)

// VaultConfig is the policy a vault instance is started with. It is fixed for
// the lifetime of the process; there is no update path.
type VaultConfig struct {
	// ProgramID is the program every vault authority is derived under.
	ProgramID solana.PublicKey

	// AuthorizedCaller is the only identity allowed to request a transfer.
	AuthorizedCaller solana.PublicKey
}

// CheckConfig returns an error if the configuration cannot be used to run a
// vault.
func (c *VaultConfig) CheckConfig() error {
	if c == nil || c.ProgramID.IsZero() {
		return ErrMissingProgramID
	}
	if c.AuthorizedCaller.IsZero() {
		return ErrMissingAuthorizedCaller
	}
	if c.AuthorizedCaller.Equals(c.ProgramID) {
		return ErrCallerIsProgram
	}
	return nil
}

// String implements the fmt.Stringer interface.
func (c *VaultConfig) String() string {
	if c == nil {
		return "VaultConfig{<nil>}"
	}
	return fmt.Sprintf("VaultConfig{ProgramID: %s AuthorizedCaller: %s}", c.ProgramID, c.AuthorizedCaller)
}

// Copy returns an independent copy of the configuration.
func (c *VaultConfig) Copy() *VaultConfig {
	cpy := *c
	return &cpy
}
