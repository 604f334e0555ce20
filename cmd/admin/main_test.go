// cmd/admin/main_test.go
//
// CLI tests against static environments.

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AdeptTravel/adept-runtime/internal/config"
)

func runCLI(t *testing.T, raw config.RawEnvironment, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out, config.Static(raw))
	return out.String(), err
}

func TestWorkersCommand(t *testing.T) {
	out, err := runCLI(t, config.RawEnvironment{
		"ADEPT_WORKERS_INCLUDE": "api,background-worker",
		"ADEPT_WORKERS_EXCLUDE": "background-worker",
	}, "workers")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out) != "api" {
		t.Fatalf("out = %q", out)
	}
}

func TestCheckCommandFails(t *testing.T) {
	_, err := runCLI(t, config.RawEnvironment{"ADEPT_WORKERS_INCLUDE": "bogus"}, "check")
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Fatalf("err = %v", err)
	}
}

func TestCheckWarnsOnDefaultProductionPassword(t *testing.T) {
	cases := []struct {
		raw  config.RawEnvironment
		warn bool
	}{
		{config.RawEnvironment{"ADEPT_ENV": "production"}, true},
		{config.RawEnvironment{"ADEPT_ENV": "production", "DB_PASSWORD": "s3cret"}, false},
		{config.RawEnvironment{"ADEPT_ENV": "production", "DB_URL": "mysql://u:p@db/app"}, false},
		{config.RawEnvironment{"ADEPT_ENV": "staging"}, false},
	}
	for _, c := range cases {
		out, err := runCLI(t, c.raw, "check")
		if err != nil {
			t.Fatalf("%v: %v", c.raw, err)
		}
		if got := strings.Contains(out, "default database password"); got != c.warn {
			t.Errorf("%v: warning=%v, want %v\n%s", c.raw, got, c.warn, out)
		}
	}
}

func TestConfigCommandRedactsSecrets(t *testing.T) {
	out, err := runCLI(t, config.RawEnvironment{
		"REDIS_PASSWORD": "hunter2",
		"DB_PASSWORD":    "dbsecret",
	}, "config", "--show-redis")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.Contains(out, "hunter2") || strings.Contains(out, "dbsecret") {
		t.Fatalf("secret leaked: %s", out)
	}
	if !strings.Contains(out, `"source": "discrete"`) {
		t.Fatalf("redis section missing: %s", out)
	}
}

func TestRedisURLCommandRoundTrips(t *testing.T) {
	out, err := runCLI(t, config.RawEnvironment{"REDIS_HOSTNAME": "cache9", "REDIS_PORT": "7001"}, "redis-url")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	opts, err := config.DecodeRedisURL(strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if opts.Host != "cache9" || opts.Port != 7001 {
		t.Fatalf("opts = %+v", opts)
	}
}

func TestUnknownCommand(t *testing.T) {
	if _, err := runCLI(t, config.RawEnvironment{}, "nope"); err == nil {
		t.Fatal("expected parse error")
	}
}
