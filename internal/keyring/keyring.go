package keyring

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// KeyRing holds a set of API keys and rotates between them according to a
// strategy. All methods are safe for concurrent use.
type KeyRing struct {
	mu       sync.RWMutex
	keys     []*APIKey
	current  int
	strategy RotationStrategy
	logger   zerolog.Logger
}

// APIKey is one key+secret pair with its rotation bookkeeping.
type APIKey struct {
	ID         string
	Key        string
	Secret     string
	Disabled   bool
	LastUsed   time.Time
	ErrorCount int
}

// RotationStrategy selects when the ring advances to the next key.
type RotationStrategy int

const (
	RotationRoundRobin RotationStrategy = iota
	RotationOnError
)

// NewKeyRing copies the given keys into a new ring.
func NewKeyRing(keys []*APIKey, strategy RotationStrategy) *KeyRing {
	keysCopy := make([]*APIKey, len(keys))
	for i, k := range keys {
		keysCopy[i] = &APIKey{
			ID:         k.ID,
			Key:        k.Key,
			Secret:     k.Secret,
			Disabled:   k.Disabled,
			LastUsed:   k.LastUsed,
			ErrorCount: k.ErrorCount,
		}
	}

	return &KeyRing{
		keys:     keysCopy,
		strategy: strategy,
		logger:   zerolog.Nop(),
	}
}

// SetLogger replaces the ring's logger.
func (k *KeyRing) SetLogger(l zerolog.Logger) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.logger = l
}

// Current returns the active key, skipping disabled entries, or nil when
// no key is usable.
func (k *KeyRing) Current() *APIKey {
	k.mu.RLock()
	defer k.mu.RUnlock()

	if len(k.keys) == 0 {
		return nil
	}

	for i := 0; i < len(k.keys); i++ {
		idx := (k.current + i) % len(k.keys)
		if !k.keys[idx].Disabled {
			return k.keys[idx]
		}
	}

	return nil
}

// Rotate advances to the next enabled key.
func (k *KeyRing) Rotate() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.rotateLocked()
}

func (k *KeyRing) rotateLocked() {
	if len(k.keys) == 0 {
		return
	}

	start := k.current
	for {
		k.current = (k.current + 1) % len(k.keys)
		if !k.keys[k.current].Disabled {
			return
		}
		if k.current == start {
			return
		}
	}
}

// OnError records a failure against the active key and rotates when the
// strategy calls for it.
func (k *KeyRing) OnError(err error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.keys) == 0 || k.keys[k.current] == nil {
		return
	}

	k.keys[k.current].ErrorCount++
	k.logger.Debug().Str("key", k.keys[k.current].String()).Err(err).Msg("key error recorded")

	if k.strategy == RotationOnError {
		k.rotateLocked()
	}
}

// MarkUsed stamps the active key's last-used time.
func (k *KeyRing) MarkUsed() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.keys) == 0 || k.keys[k.current] == nil {
		return
	}

	k.keys[k.current].LastUsed = time.Now()
}

// Disable marks the key with the given id unusable.
func (k *KeyRing) Disable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, key := range k.keys {
		if key.ID == id {
			key.Disabled = true
			return
		}
	}
}

// Enable re-enables the key with the given id and resets its error count.
func (k *KeyRing) Enable(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, key := range k.keys {
		if key.ID == id {
			key.Disabled = false
			key.ErrorCount = 0
			return
		}
	}
}

// Add appends a key unless one with the same id already exists.
func (k *KeyRing) Add(key *APIKey) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, existing := range k.keys {
		if existing.ID == key.ID {
			return
		}
	}

	k.keys = append(k.keys, &APIKey{
		ID:     key.ID,
		Key:    key.Key,
		Secret: key.Secret,
	})
}

// Remove deletes the key with the given id.
func (k *KeyRing) Remove(id string) {
	k.mu.Lock()
	defer k.mu.Unlock()

	for i, key := range k.keys {
		if key.ID == id {
			k.keys = append(k.keys[:i], k.keys[i+1:]...)
			if k.current >= len(k.keys) && len(k.keys) > 0 {
				k.current = 0
			}
			return
		}
	}
}

// String renders the key with its secret-bearing part masked.
func (k *APIKey) String() string {
	return fmt.Sprintf("APIKey{ID:%s, Key:%s}", k.ID, maskKey(k.Key))
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
