package crypt

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"io"
)

const (
	versionKeyring byte = 2
	minRSABits          = 2048
)

var oaepLabel = []byte("receivables/pii")

// Keyring is the asymmetric wrapper: blobs are encrypted with a fresh
// AES-256-GCM data key that is itself wrapped with RSA-OAEP under the
// public key. The private key is stored sealed by a Passphrase boundary,
// so decryption needs the passphrase while encryption does not.
//
// Key material is provisioned outside the ledger and handed over in PEM
// form (public key) and sealed PKCS#8 form (private key).
type Keyring struct {
	public *rsa.PublicKey
	sealed []byte
	unseal *Passphrase
}

// NewKeyring parses the public key and checks that the sealed private key
// is a blob unseal can open. It does not need the passphrase.
func NewKeyring(publicPEM, sealedPrivateKey []byte, unseal *Passphrase) (*Keyring, error) {
	if unseal == nil {
		return nil, fmt.Errorf("crypt: keyring needs a passphrase boundary for the private key")
	}
	block, _ := pem.Decode(publicPEM)
	if block == nil || block.Type != "PUBLIC KEY" {
		return nil, fmt.Errorf("crypt: public key must be a PEM \"PUBLIC KEY\" block")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("crypt: parse public key: %w", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("crypt: public key is %T, want RSA", parsed)
	}
	if pub.N.BitLen() < minRSABits {
		return nil, fmt.Errorf("crypt: RSA key has %d bits, want at least %d", pub.N.BitLen(), minRSABits)
	}
	if len(sealedPrivateKey) == 0 || sealedPrivateKey[0] != versionPassphrase {
		return nil, fmt.Errorf("crypt: private key is not sealed with a passphrase")
	}

	return &Keyring{
		public: pub,
		sealed: bytes.Clone(sealedPrivateKey),
		unseal: unseal,
	}, nil
}

// SealKey prepares key material for NewKeyring: the PEM-encoded public key
// and the private key in PKCS#8 form sealed under passphrase.
func SealKey(key *rsa.PrivateKey, passphrase []byte, unseal *Passphrase) (publicPEM, sealed []byte, err error) {
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("crypt: marshal public key: %w", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("crypt: marshal private key: %w", err)
	}
	defer zero(privDER)

	sealed, err = unseal.Encrypt(privDER, passphrase)
	if err != nil {
		return nil, nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER}), sealed, nil
}

// Encrypt implements Boundary. The passphrase is not needed to encrypt
// and is ignored.
func (k *Keyring) Encrypt(plaintext, _ []byte) ([]byte, error) {
	dek := make([]byte, keyLen)
	if _, err := io.ReadFull(rand.Reader, dek); err != nil {
		return nil, fmt.Errorf("%w: generate data key: %v", ErrEncryption, err)
	}
	defer zero(dek)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, k.public, dek, oaepLabel)
	if err != nil {
		return nil, fmt.Errorf("%w: wrap data key: %v", ErrEncryption, err)
	}

	header := make([]byte, 3, 3+len(wrapped))
	header[0] = versionKeyring
	binary.BigEndian.PutUint16(header[1:3], uint16(len(wrapped)))
	header = append(header, wrapped...)

	nonce, ct, err := seal(dek, plaintext, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	out := make([]byte, 0, len(header)+len(nonce)+len(ct))
	out = append(out, header...)
	out = append(out, nonce...)
	return append(out, ct...), nil
}

// Decrypt implements Boundary.
func (k *Keyring) Decrypt(ciphertext, passphrase []byte) ([]byte, error) {
	if len(ciphertext) < 3 || ciphertext[0] != versionKeyring {
		return nil, fmt.Errorf("%w: not a keyring-sealed blob", ErrDecryption)
	}
	wrappedLen := int(binary.BigEndian.Uint16(ciphertext[1:3]))
	headerLen := 3 + wrappedLen
	if len(ciphertext) < headerLen+nonceSize {
		return nil, fmt.Errorf("%w: truncated blob", ErrDecryption)
	}

	priv, err := k.privateKey(passphrase)
	if err != nil {
		return nil, err
	}

	dek, err := rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext[3:headerLen], oaepLabel)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrap data key", ErrDecryption)
	}
	defer zero(dek)

	plaintext, err := open(dek, ciphertext[headerLen:headerLen+nonceSize], ciphertext[headerLen+nonceSize:], ciphertext[:headerLen])
	if err != nil {
		return nil, fmt.Errorf("%w: corrupt data", ErrDecryption)
	}
	return plaintext, nil
}

func (k *Keyring) privateKey(passphrase []byte) (*rsa.PrivateKey, error) {
	der, err := k.unseal.Decrypt(k.sealed, passphrase)
	if err != nil {
		return nil, err
	}
	defer zero(der)

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse private key: %v", ErrDecryption, err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok || !priv.PublicKey.Equal(k.public) {
		return nil, fmt.Errorf("%w: private key does not match the public key", ErrDecryption)
	}
	return priv, nil
}
