package weavetest

import (
	"crypto/rand"

	weave "github.com/iov-one/weave-editions"
	"golang.org/x/crypto/ed25519"
)

// NewKey returns a freshly generated ed25519 key pair.
func NewKey() (ed25519.PublicKey, ed25519.PrivateKey) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return pub, priv
}

// NewCondition returns a signature condition of a freshly generated key. The
// format is the same as the one produced by the sigs extension.
func NewCondition() weave.Condition {
	pub, _ := NewKey()
	return weave.NewCondition("sigs", "ed25519", pub)
}
