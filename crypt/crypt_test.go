package crypt_test

import (
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/receivables/crypt"
)

// Cheap argon2 parameters keep the suite fast.
var fastParams = crypt.Params{Time: 1, Memory: 64, Threads: 1, SaltLen: 16}

func newPassphrase(t *testing.T) *crypt.Passphrase {
	t.Helper()
	p, err := crypt.NewPassphrase(fastParams)
	require.NoError(t, err)
	return p
}

var (
	keyOnce sync.Once
	rsaKey  *rsa.PrivateKey
)

func newKeyring(t *testing.T, passphrase string) *crypt.Keyring {
	t.Helper()
	keyOnce.Do(func() {
		var err error
		rsaKey, err = rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
	})
	unseal := newPassphrase(t)
	pub, sealed, err := crypt.SealKey(rsaKey, []byte(passphrase), unseal)
	require.NoError(t, err)
	k, err := crypt.NewKeyring(pub, sealed, unseal)
	require.NoError(t, err)
	return k
}

func boundaries(t *testing.T) map[string]crypt.Boundary {
	return map[string]crypt.Boundary{
		"passphrase": newPassphrase(t),
		"keyring":    newKeyring(t, "correct horse"),
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte(`{"street":"1 Main St","city":"Springfield"}`),
		{},
		[]byte("ünïcödé"),
		make([]byte, 4096),
	}

	for name, b := range boundaries(t) {
		t.Run(name, func(t *testing.T) {
			for _, x := range payloads {
				ct, err := b.Encrypt(x, []byte("correct horse"))
				require.NoError(t, err)
				if len(x) > 0 {
					assert.NotContains(t, string(ct), string(x))
				}

				pt, err := b.Decrypt(ct, []byte("correct horse"))
				require.NoError(t, err)
				assert.Equal(t, len(x), len(pt))
				assert.Equal(t, string(x), string(pt))
			}
		})
	}
}

func TestWrongPassphrase(t *testing.T) {
	for name, b := range boundaries(t) {
		t.Run(name, func(t *testing.T) {
			ct, err := b.Encrypt([]byte("secret"), []byte("correct horse"))
			require.NoError(t, err)

			pt, err := b.Decrypt(ct, []byte("battery staple"))
			require.ErrorIs(t, err, crypt.ErrDecryption)
			assert.Nil(t, pt)
		})
	}
}

func TestCorruptCiphertext(t *testing.T) {
	for name, b := range boundaries(t) {
		t.Run(name, func(t *testing.T) {
			ct, err := b.Encrypt([]byte("secret"), []byte("correct horse"))
			require.NoError(t, err)

			tampered := append([]byte(nil), ct...)
			tampered[len(tampered)-1] ^= 0xff
			_, err = b.Decrypt(tampered, []byte("correct horse"))
			require.ErrorIs(t, err, crypt.ErrDecryption)

			_, err = b.Decrypt(ct[:5], []byte("correct horse"))
			require.ErrorIs(t, err, crypt.ErrDecryption)

			_, err = b.Decrypt(nil, []byte("correct horse"))
			require.ErrorIs(t, err, crypt.ErrDecryption)
		})
	}
}

func TestPassphraseRequired(t *testing.T) {
	p := newPassphrase(t)

	_, err := p.Encrypt([]byte("x"), nil)
	require.ErrorIs(t, err, crypt.ErrEncryption)

	ct, err := p.Encrypt([]byte("x"), []byte("pw"))
	require.NoError(t, err)
	_, err = p.Decrypt(ct, nil)
	require.ErrorIs(t, err, crypt.ErrDecryption)
}

func TestCiphertextIsSalted(t *testing.T) {
	p := newPassphrase(t)
	a, err := p.Encrypt([]byte("same"), []byte("pw"))
	require.NoError(t, err)
	b, err := p.Encrypt([]byte("same"), []byte("pw"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewPassphraseValidatesParams(t *testing.T) {
	tests := []struct {
		name   string
		params crypt.Params
	}{
		{"zero time", crypt.Params{Time: 0, Memory: 64, Threads: 1, SaltLen: 16}},
		{"zero threads", crypt.Params{Time: 1, Memory: 64, Threads: 0, SaltLen: 16}},
		{"too little memory", crypt.Params{Time: 1, Memory: 4, Threads: 1, SaltLen: 16}},
		{"short salt", crypt.Params{Time: 1, Memory: 64, Threads: 1, SaltLen: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := crypt.NewPassphrase(tt.params)
			require.Error(t, err)
		})
	}
}

func TestNewKeyringRejectsBadMaterial(t *testing.T) {
	unseal := newPassphrase(t)

	_, err := crypt.NewKeyring([]byte("not pem"), []byte{1, 2, 3}, unseal)
	require.Error(t, err)

	_ = newKeyring(t, "pw") // ensure rsaKey is generated
	pub, _, err := crypt.SealKey(rsaKey, []byte("pw"), unseal)
	require.NoError(t, err)

	_, err = crypt.NewKeyring(pub, []byte("plain private key"), unseal)
	require.Error(t, err)

	_, err = crypt.NewKeyring(pub, []byte{1}, nil)
	require.Error(t, err)
}

func TestBoundariesDoNotReadEachOther(t *testing.T) {
	p := newPassphrase(t)
	k := newKeyring(t, "pw")

	ct, err := p.Encrypt([]byte("x"), []byte("pw"))
	require.NoError(t, err)
	_, err = k.Decrypt(ct, []byte("pw"))
	require.ErrorIs(t, err, crypt.ErrDecryption)
}
