package rawdb

import (
	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/core/types"
	"github.com/tos-network/gvault/log"
	"github.com/tos-network/gvault/tosdb"
)

// ReadAccount retrieves the account stored under addr, or nil if there is none
// or the record cannot be decoded.
func ReadAccount(db tosdb.KeyValueReader, addr solana.PublicKey) *types.StateAccount {
	data, err := db.Get(accountKey(addr))
	if err != nil || len(data) == 0 {
		return nil
	}
	acct, err := types.DecodeStateAccount(data)
	if err != nil {
		log.Error("Invalid account record", "address", addr, "err", err)
		return nil
	}
	return acct
}

// HasAccount checks if an account is present under addr.
func HasAccount(db tosdb.KeyValueReader, addr solana.PublicKey) bool {
	ok, _ := db.Has(accountKey(addr))
	return ok
}

// WriteAccount stores an account under addr.
func WriteAccount(db tosdb.KeyValueWriter, addr solana.PublicKey, acct *types.StateAccount) {
	data, err := types.EncodeStateAccount(acct)
	if err != nil {
		log.Crit("Failed to encode account", "address", addr, "err", err)
	}
	if err := db.Put(accountKey(addr), data); err != nil {
		log.Crit("Failed to store account", "address", addr, "err", err)
	}
}

// DeleteAccount removes the account stored under addr.
func DeleteAccount(db tosdb.KeyValueWriter, addr solana.PublicKey) {
	if err := db.Delete(accountKey(addr)); err != nil {
		log.Crit("Failed to delete account", "address", addr, "err", err)
	}
}

// IterateAccounts walks every stored account in key order until fn returns
// false.
func IterateAccounts(db tosdb.Iteratee, fn func(addr solana.PublicKey, acct *types.StateAccount) bool) error {
	it := db.NewIterator(accountPrefix, nil)
	defer it.Release()

	for it.Next() {
		key := it.Key()
		if len(key) != len(accountPrefix)+solana.PublicKeyLength {
			continue
		}
		acct, err := types.DecodeStateAccount(it.Value())
		if err != nil {
			return err
		}
		if !fn(solana.PublicKeyFromBytes(key[len(accountPrefix):]), acct) {
			break
		}
	}
	return it.Error()
}
