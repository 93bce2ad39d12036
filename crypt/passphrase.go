package crypt

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	versionPassphrase byte = 1
	keyLen                 = 32
	// maxMemory bounds the argon2 memory a sealed header may request (KiB).
	maxMemory = 1 << 20
	// version, time, memory, threads, salt length
	passphraseHeader = 1 + 4 + 4 + 1 + 1
)

// Params are the argon2id cost parameters.
type Params struct {
	Time    uint32 `json:"time" yaml:"time"`
	Memory  uint32 `json:"memory" yaml:"memory"` // KiB
	Threads uint8  `json:"threads" yaml:"threads"`
	SaltLen uint8  `json:"salt_len" yaml:"salt_len"`
}

// DefaultParams returns the argon2id parameters used for new ciphertext.
func DefaultParams() Params {
	return Params{Time: 3, Memory: 32 * 1024, Threads: 4, SaltLen: 16}
}

// Passphrase derives a per-blob AES-256-GCM key from the passphrase with
// argon2id. Sealed blobs carry their own salt and cost parameters, so
// changing Params later does not strand old data.
type Passphrase struct {
	params Params
}

// NewPassphrase validates params and performs a one-time derivation to
// prove the configuration works before any PII is handled.
func NewPassphrase(params Params) (*Passphrase, error) {
	if params.Time == 0 {
		return nil, fmt.Errorf("crypt: argon2 time must be at least 1")
	}
	if params.Threads == 0 {
		return nil, fmt.Errorf("crypt: argon2 threads must be at least 1")
	}
	if params.Memory < 8*uint32(params.Threads) || params.Memory > maxMemory {
		return nil, fmt.Errorf("crypt: argon2 memory %d KiB out of range", params.Memory)
	}
	if params.SaltLen < 8 {
		return nil, fmt.Errorf("crypt: salt length must be at least 8 bytes")
	}

	p := &Passphrase{params: params}
	sample, err := p.Encrypt([]byte("check"), []byte("check"))
	if err != nil {
		return nil, fmt.Errorf("crypt: self-test: %w", err)
	}
	if _, err := p.Decrypt(sample, []byte("check")); err != nil {
		return nil, fmt.Errorf("crypt: self-test: %w", err)
	}
	return p, nil
}

// Encrypt implements Boundary.
func (p *Passphrase) Encrypt(plaintext, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase is required", ErrEncryption)
	}

	header := make([]byte, passphraseHeader, passphraseHeader+int(p.params.SaltLen))
	header[0] = versionPassphrase
	binary.BigEndian.PutUint32(header[1:5], p.params.Time)
	binary.BigEndian.PutUint32(header[5:9], p.params.Memory)
	header[9] = p.params.Threads
	header[10] = p.params.SaltLen

	salt := make([]byte, p.params.SaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("%w: generate salt: %v", ErrEncryption, err)
	}
	header = append(header, salt...)

	key := argon2.IDKey(passphrase, salt, p.params.Time, p.params.Memory, p.params.Threads, keyLen)
	defer zero(key)

	nonce, ct, err := seal(key, plaintext, header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	out := make([]byte, 0, len(header)+len(nonce)+len(ct))
	out = append(out, header...)
	out = append(out, nonce...)
	return append(out, ct...), nil
}

// Decrypt implements Boundary.
func (p *Passphrase) Decrypt(ciphertext, passphrase []byte) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("%w: passphrase is required", ErrDecryption)
	}
	if len(ciphertext) < passphraseHeader || ciphertext[0] != versionPassphrase {
		return nil, fmt.Errorf("%w: not a passphrase-sealed blob", ErrDecryption)
	}

	t := binary.BigEndian.Uint32(ciphertext[1:5])
	mem := binary.BigEndian.Uint32(ciphertext[5:9])
	threads := ciphertext[9]
	saltLen := int(ciphertext[10])
	if t == 0 || threads == 0 || mem > maxMemory || mem < 8*uint32(threads) {
		return nil, fmt.Errorf("%w: corrupt header", ErrDecryption)
	}

	headerLen := passphraseHeader + saltLen
	if len(ciphertext) < headerLen+nonceSize {
		return nil, fmt.Errorf("%w: truncated blob", ErrDecryption)
	}
	header := ciphertext[:headerLen]
	salt := ciphertext[passphraseHeader:headerLen]
	nonce := ciphertext[headerLen : headerLen+nonceSize]

	key := argon2.IDKey(passphrase, salt, t, mem, threads, keyLen)
	defer zero(key)

	plaintext, err := open(key, nonce, ciphertext[headerLen+nonceSize:], header)
	if err != nil {
		return nil, fmt.Errorf("%w: wrong passphrase or corrupt data", ErrDecryption)
	}
	return plaintext, nil
}
