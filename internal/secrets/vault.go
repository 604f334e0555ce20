// internal/secrets/vault.go
//
// Vault-backed SecretLookup for configuration snapshots.
//
// Context
// -------
//   - Wraps the HashiCorp Vault Go SDK behind config.SecretLookup, so any
//     raw environment value written as `vault:<mount>/<path>#<key>` is
//     swapped for the KV-v2 secret it names before resolution.
//   - Lookups are cached per canonical reference for a fixed TTL.  A
//     process normally snapshots once, but tests and the admin CLI call
//     Invalidate and snapshot again.
//
// Public workflow
// ---------------
//  1. cli, err := secrets.NewVault(ttl)                    // during boot.
//  2. config.SnapshotOptions{Secrets: cli}                 // wire it in.
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token (falls back to ~/.vault-token inside the SDK).
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

//
// SECTION 1.  Reference parsing
//

// Ref is a parsed `<mount>/<path>#<key>` reference.
type Ref struct {
	Mount string
	Path  string
	Key   string
}

// ErrBadRef is returned for references missing a mount, path, or key.
var ErrBadRef = errors.New("secret ref must look like <mount>/<path>#<key>")

// ParseRef splits ref.  The mount is the first path segment.
func ParseRef(ref string) (Ref, error) {
	loc, key, ok := strings.Cut(ref, "#")
	if !ok || key == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	mount, rel, ok := strings.Cut(strings.Trim(loc, "/"), "/")
	if !ok || mount == "" || rel == "" {
		return Ref{}, fmt.Errorf("%w: %q", ErrBadRef, ref)
	}
	return Ref{Mount: mount, Path: rel, Key: key}, nil
}

func (r Ref) String() string { return r.Mount + "/" + r.Path + "#" + r.Key }

//
// SECTION 2.  Client
//

// KVReader is the slice of the Vault SDK the client needs.  Tests swap it.
type KVReader interface {
	ReadKV(ctx context.Context, mount, path string) (map[string]any, error)
}

// Vault is safe for concurrent use.  Zero value is invalid.
type Vault struct {
	kv  KVReader
	ttl time.Duration

	mu    sync.RWMutex
	cache map[string]cached
	now   func() time.Time
}

type cached struct {
	val string
	exp time.Time
}

// NewVault reads VAULT_ADDR and friends from the environment and returns a
// client whose lookups are cached for ttl (0 disables caching).
func NewVault(ttl time.Duration) (*Vault, error) {
	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}
	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	return NewVaultWithReader(sdkReader{api}, ttl), nil
}

// NewVaultWithReader builds a client around any KVReader.
func NewVaultWithReader(kv KVReader, ttl time.Duration) *Vault {
	return &Vault{kv: kv, ttl: ttl, cache: make(map[string]cached), now: time.Now}
}

// Lookup implements config.SecretLookup.
func (v *Vault) Lookup(ctx context.Context, ref string) (string, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return "", err
	}
	canonical := r.String()

	if v.ttl > 0 {
		v.mu.RLock()
		cv, ok := v.cache[canonical]
		v.mu.RUnlock()
		if ok && v.now().Before(cv.exp) {
			return cv.val, nil
		}
	}

	data, err := v.kv.ReadKV(ctx, r.Mount, r.Path)
	if err != nil {
		return "", fmt.Errorf("vault get %s/%s: %w", r.Mount, r.Path, err)
	}
	raw, ok := data[r.Key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %s/%s", r.Key, r.Mount, r.Path)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	if v.ttl > 0 {
		v.mu.Lock()
		v.cache[canonical] = cached{val: val, exp: v.now().Add(v.ttl)}
		v.mu.Unlock()
	}
	return val, nil
}

// Invalidate drops every cached secret.
func (v *Vault) Invalidate() {
	v.mu.Lock()
	v.cache = make(map[string]cached)
	v.mu.Unlock()
}

//
// SECTION 3.  SDK adapter
//

type sdkReader struct{ api *vault.Client }

func (s sdkReader) ReadKV(ctx context.Context, mount, path string) (map[string]any, error) {
	sec, err := s.api.KVv2(mount).Get(ctx, path)
	if err != nil {
		return nil, err
	}
	return sec.Data, nil
}
