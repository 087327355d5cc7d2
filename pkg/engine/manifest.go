package engine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/morezero/action-gateway/pkg/action"
)

const manifestLogPrefix = "engine:manifest"

// manifestIVLength is the initialization vector size in bytes.
const manifestIVLength = 16

// Manifest is the encrypted snapshot of client-visible action keys and
// the version contract. Encoding and algorithm identifiers travel with
// the ciphertext so a client holding the shared passkey can decrypt.
type Manifest struct {
	IVLength  int    `json:"iv_length"`
	Encoding  string `json:"encoding"`
	Algorithm string `json:"algorithm"`
	IV        string `json:"iv"`
	Data      string `json:"data"`
}

// ManifestPayload is the plaintext the manifest encrypts.
type ManifestPayload struct {
	ListKey     []string `json:"listkey"`
	VersionNow  string   `json:"version_now"`
	VersionMin  string   `json:"version_min"`
	ForceUpdate bool     `json:"force_update"`
}

// Manifest returns the encrypted action manifest. It is computed once and
// cached for the engine's lifetime; registry changes after the first call
// do not alter it.
func (e *Engine) Manifest() (*Manifest, error) {
	e.manifestOnce.Do(func() {
		e.manifest, e.manifestErr = e.buildManifest()
	})
	return e.manifest, e.manifestErr
}

func (e *Engine) buildManifest() (*Manifest, error) {
	snap := e.policy.Snapshot()

	// API-visible keys only: everything registered minus the API deny-list.
	// Sorted so the payload encoding is canonical.
	keys := make([]string, 0, e.registry.Len())
	for _, key := range e.registry.Keys() {
		if e.policy.Denied(key, action.ProtocolAPI) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	plaintext, err := json.Marshal(ManifestPayload{
		ListKey:     keys,
		VersionNow:  snap.VersionNow,
		VersionMin:  snap.VersionMin,
		ForceUpdate: snap.ForceUpdate,
	})
	if err != nil {
		return nil, fmt.Errorf("%s - encode payload: %w", manifestLogPrefix, err)
	}

	key := sha256.Sum256([]byte(snap.Passkey))
	iv := make([]byte, manifestIVLength)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("%s - generate iv: %w", manifestLogPrefix, err)
	}

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%s - init cipher: %w", manifestLogPrefix, err)
	}
	ciphertext := make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, plaintext)

	return &Manifest{
		IVLength:  manifestIVLength,
		Encoding:  "hex",
		Algorithm: "aes-256-ctr",
		IV:        hex.EncodeToString(iv),
		Data:      hex.EncodeToString(ciphertext),
	}, nil
}

// DecryptManifest decrypts a manifest with the shared passkey. This is
// the client half of the contract and is used by the e2e tests.
func DecryptManifest(m *Manifest, passkey string) (*ManifestPayload, error) {
	if m.Encoding != "hex" {
		return nil, fmt.Errorf("%s - unsupported encoding %q", manifestLogPrefix, m.Encoding)
	}
	iv, err := hex.DecodeString(m.IV)
	if err != nil {
		return nil, fmt.Errorf("%s - decode iv: %w", manifestLogPrefix, err)
	}
	ciphertext, err := hex.DecodeString(m.Data)
	if err != nil {
		return nil, fmt.Errorf("%s - decode data: %w", manifestLogPrefix, err)
	}

	key := sha256.Sum256([]byte(passkey))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%s - init cipher: %w", manifestLogPrefix, err)
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)

	var payload ManifestPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%s - decode payload: %w", manifestLogPrefix, err)
	}
	return &payload, nil
}
