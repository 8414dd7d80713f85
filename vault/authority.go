package vault

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/gagliardetto/solana-go"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/gvault/params"
)

// Authority is the capability to act as the signer of one holding account.
// Its fields are unexported so the only way to obtain one is through a
// Deriver; the token program re-derives the key from Seeds before accepting
// it as a signer.
type Authority struct {
	key       solana.PublicKey
	bump      uint8
	mint      solana.PublicKey
	namespace string
	programID solana.PublicKey
	holding   solana.PublicKey
}

// Key returns the derived authority address.
func (a *Authority) Key() solana.PublicKey { return a.key }

// Bump returns the proof nonce that moves the key off the curve.
func (a *Authority) Bump() uint8 { return a.bump }

// Mint returns the asset class the authority is bound to.
func (a *Authority) Mint() solana.PublicKey { return a.mint }

// Namespace returns the seed tag used for the derivation.
func (a *Authority) Namespace() string { return a.namespace }

// ProgramID returns the program the authority was derived under.
func (a *Authority) ProgramID() solana.PublicKey { return a.programID }

// HoldingAccount returns the associated token account of the authority for
// its mint.
func (a *Authority) HoldingAccount() solana.PublicKey { return a.holding }

// Seeds returns the full signer seeds [namespace, mint, bump].
func (a *Authority) Seeds() [][]byte {
	return [][]byte{[]byte(a.namespace), append([]byte(nil), a.mint[:]...), {a.bump}}
}

// SignerSeeds implements token.Signer.
func (a *Authority) SignerSeeds() [][]byte { return a.Seeds() }

// Verify recomputes the address from the seeds and checks it has no private
// key, i.e. that it does not decode to a point on the ed25519 curve.
func (a *Authority) Verify() error {
	addr, err := solana.CreateProgramAddress(a.Seeds(), a.programID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidVaultAuthority, err)
	}
	if !addr.Equals(a.key) {
		return fmt.Errorf("%w: seeds derive %s, not %s", ErrInvalidVaultAuthority, addr, a.key)
	}
	if _, err := new(edwards25519.Point).SetBytes(a.key[:]); err == nil {
		return fmt.Errorf("%w: %s is on the curve", ErrInvalidVaultAuthority, a.key)
	}
	return nil
}

func (a *Authority) String() string {
	return fmt.Sprintf("Authority{key: %s bump: %d mint: %s namespace: %q}", a.key, a.bump, a.mint, a.namespace)
}

// Deriver computes vault authorities for a single program. Results are pure
// functions of (namespace, mint) and are memoised in a bounded cache.
type Deriver struct {
	programID solana.PublicKey
	cache     *lru.Cache
}

// NewDeriver creates a deriver for the given program.
func NewDeriver(programID solana.PublicKey) (*Deriver, error) {
	if programID.IsZero() {
		return nil, params.ErrMissingProgramID
	}
	cache, err := lru.New(params.AuthorityCacheSize)
	if err != nil {
		return nil, err
	}
	return &Deriver{programID: programID, cache: cache}, nil
}

// ProgramID returns the program authorities are derived under.
func (d *Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// Derive returns the authority for (namespace, mint) together with its
// proof nonce and holding account.
func (d *Deriver) Derive(namespace string, mint solana.PublicKey) (*Authority, error) {
	if namespace == "" || len(namespace) > params.MaxSeedLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNamespace, namespace)
	}
	if mint.IsZero() {
		return nil, fmt.Errorf("%w: zero mint", ErrInvalidAssetClass)
	}
	cacheKey := namespace + "/" + string(mint[:])
	if cached, ok := d.cache.Get(cacheKey); ok {
		return cached.(*Authority), nil
	}
	key, bump, err := solana.FindProgramAddress([][]byte{[]byte(namespace), mint[:]}, d.programID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetClass, err)
	}
	holding, _, err := solana.FindAssociatedTokenAddress(key, mint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssetClass, err)
	}
	auth := &Authority{
		key:       key,
		bump:      bump,
		mint:      mint,
		namespace: namespace,
		programID: d.programID,
		holding:   holding,
	}
	d.cache.Add(cacheKey, auth)
	return auth, nil
}

// Vault derives the authority under the standard vault namespace.
func (d *Deriver) Vault(mint solana.PublicKey) (*Authority, error) {
	return d.Derive(params.VaultSeed, mint)
}
