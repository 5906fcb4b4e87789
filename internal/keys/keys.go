package keys

import (
	"crypto/rand"
	"encoding/base64"

	"golang.org/x/crypto/curve25519"
)

// Pair is a curve25519 keypair encoded as base64, the format WireGuard
// configs expect.
type Pair struct {
	PrivateKey string
	PublicKey  string
}

// NewPair generates a fresh keypair. The secret is clamped per the
// curve25519 convention before the public key is derived.
func NewPair() (Pair, error) {
	var secret [32]byte
	if _, err := rand.Read(secret[:]); err != nil {
		return Pair{}, err
	}
	secret[0] &= 248
	secret[31] &= 127
	secret[31] |= 64

	public, err := curve25519.X25519(secret[:], curve25519.Basepoint)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		PrivateKey: base64.StdEncoding.EncodeToString(secret[:]),
		PublicKey:  base64.StdEncoding.EncodeToString(public),
	}, nil
}
