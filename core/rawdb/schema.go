// Package rawdb contains a collection of low level database accessors.
package rawdb

import "github.com/gagliardetto/solana-go"

var (
	// accountPrefix + pubkey -> encoded types.StateAccount
	accountPrefix = []byte("a")
)

// accountKey = accountPrefix + pubkey
func accountKey(addr solana.PublicKey) []byte {
	return append(append([]byte{}, accountPrefix...), addr[:]...)
}
