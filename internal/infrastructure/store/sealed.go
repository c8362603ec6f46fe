package store

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	saltLen  = 16
	nonceLen = 24
	keyLen   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// ErrSealBroken means the sealed document could not be opened with the
// configured passphrase.
var ErrSealBroken = errors.New("sealed store: wrong passphrase or corrupted data")

// Sealer encrypts documents with a key derived from a passphrase (argon2id)
// and NaCl secretbox. The salt travels with the document.
type Sealer struct {
	passphrase []byte

	mu   sync.Mutex
	salt []byte
	key  *[keyLen]byte
}

type envelope struct {
	Version int    `json:"v"`
	Salt    []byte `json:"salt"`
	Box     []byte `json:"box"`
}

func NewSealer(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("sealed store: empty passphrase")
	}
	return &Sealer{passphrase: []byte(passphrase)}, nil
}

// keyFor returns the key for salt, deriving it only when the salt changes.
func (s *Sealer) keyFor(salt []byte) *[keyLen]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil && string(s.salt) == string(salt) {
		return s.key
	}
	var key [keyLen]byte
	copy(key[:], argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonThreads, keyLen))
	s.salt, s.key = append([]byte(nil), salt...), &key
	return s.key
}

func (s *Sealer) currentSalt() ([]byte, error) {
	s.mu.Lock()
	salt := s.salt
	s.mu.Unlock()
	if salt != nil {
		return salt, nil
	}
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("sealed store: salt: %w", err)
	}
	return salt, nil
}

func (s *Sealer) Seal(plain []byte) ([]byte, error) {
	salt, err := s.currentSalt()
	if err != nil {
		return nil, err
	}
	var nonce [nonceLen]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("sealed store: nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, s.keyFor(salt))
	return json.Marshal(envelope{Version: 1, Salt: salt, Box: box})
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(sealed, &env); err != nil || env.Version != 1 {
		return nil, ErrSealBroken
	}
	if len(env.Salt) != saltLen || len(env.Box) < nonceLen+secretbox.Overhead {
		return nil, ErrSealBroken
	}
	var nonce [nonceLen]byte
	copy(nonce[:], env.Box[:nonceLen])
	plain, ok := secretbox.Open(nil, env.Box[nonceLen:], &nonce, s.keyFor(env.Salt))
	if !ok {
		return nil, ErrSealBroken
	}
	return plain, nil
}
