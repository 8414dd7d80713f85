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

const (
	// VaultSeed is the namespace tag mixed into every vault authority derivation.
	VaultSeed = "vault"

	// MaxSeedLength caps a single derivation seed, matching the address
	// derivation rules of the runtime.
	MaxSeedLength = 32

	MintAccountSize  uint64 = 82  // Serialized size of a mint account.
	TokenAccountSize uint64 = 165 // Serialized size of a token account.

	// Rent-exempt minimums charged to the payer when an account is created.
	MintAccountRentExempt  uint64 = 1_461_600
	TokenAccountRentExempt uint64 = 2_039_280

	// SysActionGas is the fixed cost charged for any vault system action.
	SysActionGas uint64 = 100_000

	// AuthorityCacheSize bounds the number of derived vault authorities kept
	// in memory. Derivation is pure, so entries never go stale.
	AuthorityCacheSize = 1024
)
