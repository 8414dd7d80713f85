// Package token implements the subset of the fungible-token program the vault
// relies on: mints, token accounts, associated token accounts and
// program-signed transfers. Account data uses the token program's binary
// layouts so records are byte compatible with on-chain state.
package token

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/tos-network/gvault/params"
)

// AccountState is the lifecycle state of a token account.
type AccountState uint8

const (
	Uninitialized AccountState = iota
	Initialized
	Frozen
)

func (s AccountState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Frozen:
		return "frozen"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Mint describes an asset class. Optional authorities are absent when zero.
type Mint struct {
	MintAuthority   solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority solana.PublicKey
}

// Account is a balance of one mint held on behalf of Owner.
type Account struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        solana.PublicKey
	State           AccountState
	DelegatedAmount uint64
	CloseAuthority  solana.PublicKey
}

func writeOptionKey(enc *bin.Encoder, key solana.PublicKey) error {
	var tag uint32
	if !key.IsZero() {
		tag = 1
	}
	if err := enc.WriteUint32(tag, bin.LE); err != nil {
		return err
	}
	return enc.WriteBytes(key[:], false)
}

func readOptionKey(dec *bin.Decoder) (solana.PublicKey, error) {
	tag, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return solana.PublicKey{}, err
	}
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return solana.PublicKey{}, err
	}
	switch tag {
	case 0:
		return solana.PublicKey{}, nil
	case 1:
		return solana.PublicKeyFromBytes(raw), nil
	}
	return solana.PublicKey{}, fmt.Errorf("invalid option tag %d", tag)
}

func (m Mint) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := writeOptionKey(enc, m.MintAuthority); err != nil {
		return err
	}
	if err := enc.WriteUint64(m.Supply, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint8(m.Decimals); err != nil {
		return err
	}
	if err := enc.WriteBool(m.IsInitialized); err != nil {
		return err
	}
	return writeOptionKey(enc, m.FreezeAuthority)
}

func (m *Mint) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	if m.MintAuthority, err = readOptionKey(dec); err != nil {
		return err
	}
	if m.Supply, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if m.Decimals, err = dec.ReadUint8(); err != nil {
		return err
	}
	if m.IsInitialized, err = dec.ReadBool(); err != nil {
		return err
	}
	m.FreezeAuthority, err = readOptionKey(dec)
	return err
}

func (a Account) MarshalWithEncoder(enc *bin.Encoder) error {
	if err := enc.WriteBytes(a.Mint[:], false); err != nil {
		return err
	}
	if err := enc.WriteBytes(a.Owner[:], false); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.Amount, bin.LE); err != nil {
		return err
	}
	if err := writeOptionKey(enc, a.Delegate); err != nil {
		return err
	}
	if err := enc.WriteUint8(uint8(a.State)); err != nil {
		return err
	}
	// is_native: always None, wrapped native tokens are not supported.
	if err := enc.WriteUint32(0, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(0, bin.LE); err != nil {
		return err
	}
	if err := enc.WriteUint64(a.DelegatedAmount, bin.LE); err != nil {
		return err
	}
	return writeOptionKey(enc, a.CloseAuthority)
}

func (a *Account) UnmarshalWithDecoder(dec *bin.Decoder) (err error) {
	raw, err := dec.ReadNBytes(solana.PublicKeyLength)
	if err != nil {
		return err
	}
	a.Mint = solana.PublicKeyFromBytes(raw)
	if raw, err = dec.ReadNBytes(solana.PublicKeyLength); err != nil {
		return err
	}
	a.Owner = solana.PublicKeyFromBytes(raw)
	if a.Amount, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if a.Delegate, err = readOptionKey(dec); err != nil {
		return err
	}
	state, err := dec.ReadUint8()
	if err != nil {
		return err
	}
	if state > uint8(Frozen) {
		return fmt.Errorf("invalid account state %d", state)
	}
	a.State = AccountState(state)
	if _, err = dec.ReadUint32(bin.LE); err != nil {
		return err
	}
	if _, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	if a.DelegatedAmount, err = dec.ReadUint64(bin.LE); err != nil {
		return err
	}
	a.CloseAuthority, err = readOptionKey(dec)
	return err
}

// EncodeMint returns the 82-byte mint layout.
func EncodeMint(m *Mint) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := m.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMint parses a mint record.
func DecodeMint(data []byte) (*Mint, error) {
	if uint64(len(data)) != params.MintAccountSize {
		return nil, fmt.Errorf("%w: mint record is %d bytes", ErrInvalidAccountData, len(data))
	}
	m := new(Mint)
	if err := m.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	return m, nil
}

// EncodeAccount returns the 165-byte token account layout.
func EncodeAccount(a *Account) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := a.MarshalWithEncoder(bin.NewBinEncoder(buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeAccount parses a token account record.
func DecodeAccount(data []byte) (*Account, error) {
	if uint64(len(data)) != params.TokenAccountSize {
		return nil, fmt.Errorf("%w: token account record is %d bytes", ErrInvalidAccountData, len(data))
	}
	a := new(Account)
	if err := a.UnmarshalWithDecoder(bin.NewBinDecoder(data)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccountData, err)
	}
	return a, nil
}
