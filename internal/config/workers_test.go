// internal/config/workers_test.go
//
// Unit-tests for worker topology resolution.

package config

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestResolveWorkersDefault(t *testing.T) {
	got, err := ResolveWorkers("", "")
	if err != nil {
		t.Fatalf("ResolveWorkers: %v", err)
	}
	want := []Worker{WorkerAPI, WorkerBackground}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestResolveWorkersDifference(t *testing.T) {
	got, err := ResolveWorkers("api,background-worker", "background-worker")
	if err != nil {
		t.Fatalf("ResolveWorkers: %v", err)
	}
	if !reflect.DeepEqual(got, []Worker{WorkerAPI}) {
		t.Fatalf("got %v, want [api]", got)
	}
}

func TestResolveWorkersExcludeOnly(t *testing.T) {
	got, err := ResolveWorkers("", "api")
	if err != nil {
		t.Fatalf("ResolveWorkers: %v", err)
	}
	if !reflect.DeepEqual(got, []Worker{WorkerBackground}) {
		t.Fatalf("got %v, want [background-worker]", got)
	}
}

func TestResolveWorkersEmptyIsLegal(t *testing.T) {
	got, err := ResolveWorkers("api", "api,background-worker")
	if err != nil {
		t.Fatalf("ResolveWorkers: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty topology, got %v", got)
	}
}

func TestResolveWorkersUnknownToken(t *testing.T) {
	_, err := ResolveWorkers("api,bogus,other", "")
	if err == nil {
		t.Fatal("expected error for unknown worker")
	}
	if !errors.Is(err, ErrInvalidWorkers) {
		t.Fatalf("error %v does not match ErrInvalidWorkers", err)
	}
	var iw *InvalidWorkersError
	if !errors.As(err, &iw) {
		t.Fatalf("error %T is not *InvalidWorkersError", err)
	}
	if !reflect.DeepEqual(iw.Tokens, []string{"bogus", "other"}) {
		t.Fatalf("offending tokens = %v", iw.Tokens)
	}
	if !strings.Contains(err.Error(), "bogus") || !strings.Contains(err.Error(), "other") {
		t.Fatalf("message should name every token: %q", err.Error())
	}
}

func TestResolveWorkersExcludedUnknownIsIgnored(t *testing.T) {
	// Unknown tokens only matter if they survive the difference.
	got, err := ResolveWorkers("api,bogus", "bogus")
	if err != nil {
		t.Fatalf("ResolveWorkers: %v", err)
	}
	if !reflect.DeepEqual(got, []Worker{WorkerAPI}) {
		t.Fatalf("got %v", got)
	}
}

func TestSetDifference(t *testing.T) {
	cases := []struct {
		in, ex, want []string
	}{
		{[]string{"a", "b", "c"}, []string{"b"}, []string{"a", "c"}},
		{[]string{"a", "a", "b"}, nil, []string{"a", "b"}},
		{[]string{"a"}, []string{"a"}, []string{}},
		{nil, []string{"a"}, []string{}},
	}
	for _, c := range cases {
		if got := SetDifference(c.in, c.ex); !reflect.DeepEqual(got, c.want) {
			t.Errorf("SetDifference(%v, %v) = %v, want %v", c.in, c.ex, got, c.want)
		}
	}
}

func TestValidateWorkers(t *testing.T) {
	if _, err := ValidateWorkers([]string{"api", "background-worker"}); err != nil {
		t.Fatalf("valid set rejected: %v", err)
	}
	if _, err := ValidateWorkers([]string{"API"}); err == nil {
		t.Fatal("membership must be case-sensitive")
	}
	got, err := ValidateWorkers(nil)
	if err != nil || len(got) != 0 {
		t.Fatalf("empty set: got %v, %v", got, err)
	}
}
