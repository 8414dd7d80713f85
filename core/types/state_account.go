package types

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// MaxAccountDataLen caps the data carried by a single account.
const MaxAccountDataLen = 10 * 1024 * 1024

var ErrAccountDataTooLarge = errors.New("account data exceeds maximum length")

// StateAccount is the ledger representation of an account: a native balance,
// the program that owns it and opaque program data.
//
// Encoded layout: lamports u64 LE | owner [32]byte | len u32 LE | data.
type StateAccount struct {
	Lamports uint64
	Owner    solana.PublicKey
	Data     []byte
}

// Copy returns a deep copy of the account.
func (a *StateAccount) Copy() *StateAccount {
	cpy := &StateAccount{
		Lamports: a.Lamports,
		Owner:    a.Owner,
	}
	if a.Data != nil {
		cpy.Data = append([]byte(nil), a.Data...)
	}
	return cpy
}

func (a StateAccount) MarshalWithEncoder(enc *bin.Encoder) error {
	if len(a.Data) > MaxAccountDataLen {
		return ErrAccountDataTooLarge
	}
	if err := enc.WriteUint64(a.Lamports, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint32(uint32(len(a.Data)), bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(a.Data, false)
}

func (a *StateAccount) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if a.Lamports, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	owner, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	copy(a.Owner[:], owner)
	size, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return err
	}
	if size > MaxAccountDataLen {
		return ErrAccountDataTooLarge
	}
	data, err := dec.ReadNBytes(int(size))
	if err != nil {
		return err
	}
	a.Data = append([]byte(nil), data...)
	return nil
}

// EncodeStateAccount serializes an account for storage.
func EncodeStateAccount(a *StateAccount) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.MarshalWithEncoder(bin.NewBinEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeStateAccount parses a stored account.
func DecodeStateAccount(raw []byte) (*StateAccount, error) {
	a := new(StateAccount)
	dec := bin.NewBinDecoder(raw)
	if err := a.UnmarshalWithDecoder(dec); err != nil {
		return nil, fmt.Errorf("invalid account record: %w", err)
	}
	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("invalid account record: %d trailing bytes", dec.Remaining())
	}
	return a, nil
}
