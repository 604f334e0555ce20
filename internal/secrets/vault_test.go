// internal/secrets/vault_test.go
//
// Unit-tests for reference parsing and the TTL cache.

package secrets

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingReader struct {
	data  map[string]map[string]any
	calls int
}

func (c *countingReader) ReadKV(_ context.Context, mount, path string) (map[string]any, error) {
	c.calls++
	d, ok := c.data[mount+"/"+path]
	if !ok {
		return nil, errors.New("secret not found")
	}
	return d, nil
}

func TestParseRef(t *testing.T) {
	r, err := ParseRef("secret/adept/redis#password")
	if err != nil {
		t.Fatalf("ParseRef: %v", err)
	}
	if r.Mount != "secret" || r.Path != "adept/redis" || r.Key != "password" {
		t.Fatalf("got %+v", r)
	}

	for _, bad := range []string{"", "secret/adept", "secret#key", "/x#k", "secret/adept#"} {
		if _, err := ParseRef(bad); !errors.Is(err, ErrBadRef) {
			t.Errorf("ParseRef(%q) err = %v", bad, err)
		}
	}
}

func TestLookupCachesWithinTTL(t *testing.T) {
	kv := &countingReader{data: map[string]map[string]any{
		"secret/adept/db": {"password": "pw", "port": 5432},
	}}
	v := NewVaultWithReader(kv, time.Minute)
	now := time.Unix(1_700_000_000, 0)
	v.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := v.Lookup(ctx, "secret/adept/db#password")
		if err != nil || got != "pw" {
			t.Fatalf("Lookup = %q, %v", got, err)
		}
	}
	if kv.calls != 1 {
		t.Fatalf("backend hit %d times, want 1", kv.calls)
	}

	now = now.Add(2 * time.Minute)
	if _, err := v.Lookup(ctx, "secret/adept/db#password"); err != nil {
		t.Fatal(err)
	}
	if kv.calls != 2 {
		t.Fatalf("expired entry not refreshed")
	}

	v.Invalidate()
	if _, err := v.Lookup(ctx, "secret/adept/db#password"); err != nil {
		t.Fatal(err)
	}
	if kv.calls != 3 {
		t.Fatalf("Invalidate did not clear the cache")
	}
}

func TestLookupErrors(t *testing.T) {
	kv := &countingReader{data: map[string]map[string]any{
		"secret/adept/db": {"port": 5432},
	}}
	v := NewVaultWithReader(kv, 0)
	ctx := context.Background()

	if _, err := v.Lookup(ctx, "secret/adept/db#password"); err == nil {
		t.Error("missing key should fail")
	}
	if _, err := v.Lookup(ctx, "secret/adept/db#port"); err == nil {
		t.Error("non-string value should fail")
	}
	if _, err := v.Lookup(ctx, "secret/adept/none#x"); err == nil {
		t.Error("missing secret should fail")
	}
}
