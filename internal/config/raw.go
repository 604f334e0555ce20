// internal/config/raw.go
//
// RawEnvironment is the immutable input to Resolve.

package config

import "strings"

// RawEnvironment maps variable names to values.  A missing key and an empty
// value are treated alike by every parser.  Resolve never mutates it.
type RawEnvironment map[string]string

// Get returns the value for key or "".
func (r RawEnvironment) Get(key string) string { return r[key] }

// Or returns the value for key, or def when it is empty.
func (r RawEnvironment) Or(key, def string) string {
	if v := r[key]; v != "" {
		return v
	}
	return def
}

// FromEnviron builds a RawEnvironment from "KEY=value" pairs, the format of
// os.Environ.
func FromEnviron(pairs []string) RawEnvironment {
	raw := make(RawEnvironment, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			raw[k] = v
		}
	}
	return raw
}

// Clone returns an independent copy.
func (r RawEnvironment) Clone() RawEnvironment {
	out := make(RawEnvironment, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
