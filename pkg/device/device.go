// Package device derives a stable, non-PII device identifier from a fixed set
// of low-entropy environment signals. The identifier binds refresh tokens to a
// device on the backend; it is a best-effort fingerprint, not a credential.
package device

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// StorageKey is the key under which the derived identifier is cached.
const StorageKey = "tip_device_id"

// Signals are the inputs to the fingerprint, in canonical order.
type Signals struct {
	UserAgent      string
	Language       string
	ColorDepth     int
	ScreenWidth    int
	ScreenHeight   int
	TimezoneOffset int
	SessionStorage bool
	LocalStorage   bool
}

// Canonical joins the signals with "|" in a fixed order.
func (s Signals) Canonical() string {
	return strings.Join([]string{
		s.UserAgent,
		s.Language,
		strconv.Itoa(s.ColorDepth),
		strconv.Itoa(s.ScreenWidth) + "x" + strconv.Itoa(s.ScreenHeight),
		strconv.Itoa(s.TimezoneOffset),
		strconv.FormatBool(s.SessionStorage),
		strconv.FormatBool(s.LocalStorage),
	}, "|")
}

// Hash returns the lowercase hex SHA-256 digest of the canonical signal string.
func Hash(s Signals) string {
	sum := sha256.Sum256([]byte(s.Canonical()))
	return hex.EncodeToString(sum[:])
}

// Store persists the derived identifier.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// ID returns the cached identifier, or derives, caches and returns a new one.
// A cached value is never recomputed, even if the signals have drifted.
func ID(store Store, s Signals) string {
	if id, ok := store.Get(StorageKey); ok && id != "" {
		return id
	}
	id := Hash(s)
	store.Set(StorageKey, id)
	return id
}

// Clear removes the cached identifier so the next ID call derives it again.
func Clear(store Store) {
	store.Delete(StorageKey)
}

// MemoryStore is a concurrency-safe in-process Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (m *MemoryStore) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MemoryStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Hint headers a client may send to contribute screen and storage signals
// that the server cannot observe directly.
const (
	HeaderColorDepth     = "X-Device-Color-Depth"
	HeaderScreen         = "X-Device-Screen"
	HeaderTimezoneOffset = "X-Device-Timezone-Offset"
	HeaderStorage        = "X-Device-Storage"
)

// SignalsFromHeaders builds signals from request headers. Language is the
// first Accept-Language tag. Screen is "WIDTHxHEIGHT"; storage is a comma
// separated list containing "session" and/or "local". Unparsable hints are
// treated as absent.
func SignalsFromHeaders(h http.Header) Signals {
	s := Signals{
		UserAgent:  h.Get("User-Agent"),
		Language:   primaryLanguage(h.Get("Accept-Language")),
		ColorDepth: atoi(h.Get(HeaderColorDepth)),
	}
	if w, ht, ok := strings.Cut(h.Get(HeaderScreen), "x"); ok {
		s.ScreenWidth, s.ScreenHeight = atoi(w), atoi(ht)
	}
	s.TimezoneOffset = atoi(h.Get(HeaderTimezoneOffset))
	for _, part := range strings.Split(h.Get(HeaderStorage), ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "session":
			s.SessionStorage = true
		case "local":
			s.LocalStorage = true
		}
	}
	return s
}

func primaryLanguage(v string) string {
	tag, _, _ := strings.Cut(v, ",")
	tag, _, _ = strings.Cut(tag, ";")
	return strings.TrimSpace(tag)
}

func atoi(v string) int {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0
	}
	return n
}
