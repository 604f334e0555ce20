// internal/config/loader.go
//
// RawEnvironment snapshot builder.
//
/*
Context
--------
`Snapshot()` is the only step of configuration loading that touches the
outside world.  It layers (highest precedence last):

  1. Optional flat YAML overlay - `--env-file`, else `<root>/conf/env.yaml`.
  2. The process environment.
  3. `vault:<mount>/<path>#<key>` values, swapped for the secret they name
     when a SecretLookup is supplied.

The result is a plain RawEnvironment handed to Resolve, which is pure.
`.env` files are loaded earlier by the cmd entry points via godotenv, so
by the time Snapshot runs they are already part of the process
environment.

Instrumentation
---------------
  • DEBUG spans - root discovery, YAML read, env overlay.
  • ERROR spans - YAML parse, env overlay, secret lookup failures.
  • Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `RootDir()` climbs the cwd tree until it finds `conf/`; this lets
    `go run ./cmd/server` work from any sub-directory.
  • Nested YAML keys flatten to dotted names and are ignored by Resolve.
*/
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// VaultPrefix marks a value that must be fetched from the secret store.
const VaultPrefix = "vault:"

// SecretLookup resolves one `vault:` reference (prefix already stripped).
type SecretLookup interface {
	Lookup(ctx context.Context, ref string) (string, error)
}

// SnapshotOptions tunes Snapshot.  The zero value reads the process
// environment plus `<RootDir()>/conf/env.yaml` when present.
type SnapshotOptions struct {
	Root    string
	EnvFile string
	Secrets SecretLookup
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves ADEPT_ROOT or climbs directories until conf/ is found.
// Falls back to the executable heuristic for the production layout.
func RootDir() string {
	if r := os.Getenv("ADEPT_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if fi, err := os.Stat(filepath.Join(dir, "conf")); err == nil && fi.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── snapshot ─────────────────────────────────*/

// Snapshot reads the YAML overlay and the environment and resolves vault
// references.  The returned map is owned by the caller.
func Snapshot(ctx context.Context, opts SnapshotOptions) (RawEnvironment, error) {
	k := koanf.New(".")

	yamlPath, explicit := opts.EnvFile, opts.EnvFile != ""
	if !explicit {
		root := opts.Root
		if root == "" {
			root = RootDir()
		}
		zap.S().Debugw("config root resolved", "root", root)
		yamlPath = filepath.Join(root, "conf", "env.yaml")
	}

	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
			return nil, fmt.Errorf("load %s: %w", yamlPath, err)
		}
	} else {
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	}

	// Identity mapping: REDIS_HOSTNAME stays REDIS_HOSTNAME.
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	raw := make(RawEnvironment, len(k.Keys()))
	for key, val := range k.All() {
		raw[key] = stringify(val)
	}

	if opts.Secrets != nil {
		if err := resolveSecrets(ctx, raw, opts.Secrets); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

// SnapshotSource adapts Snapshot to the Source signature.
func SnapshotSource(ctx context.Context, opts SnapshotOptions) Source {
	return func() (RawEnvironment, error) { return Snapshot(ctx, opts) }
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func resolveSecrets(ctx context.Context, raw RawEnvironment, secrets SecretLookup) error {
	for key, val := range raw {
		ref, ok := strings.CutPrefix(val, VaultPrefix)
		if !ok {
			continue
		}
		secret, err := secrets.Lookup(ctx, ref)
		if err != nil {
			zap.S().Errorw("config secret lookup failed", "key", key, "err", err)
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		raw[key] = secret
	}
	return nil
}

// stringify flattens YAML scalars and lists into env-style strings.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []any:
		parts := make([]string, 0, len(t))
		for _, p := range t {
			parts = append(parts, stringify(p))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}
