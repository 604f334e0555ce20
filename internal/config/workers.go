// internal/config/workers.go
//
// Worker topology: which roles this process instance activates.
//
// Context
// -------
// Resolution is two composable steps.  SetDifference works on raw tokens
// from ParseSet, then ValidateWorkers checks membership in the closed Worker
// enumeration.  Keeping them apart lets the validation rule be tested with
// arbitrary token sets.
//
// An empty topology is legal here.  cmd/server treats "no workers" as fatal.

package config

import (
	"errors"
	"fmt"
	"strings"
)

// Worker is a member of the closed role enumeration.
type Worker string

const (
	WorkerAPI        Worker = "api"
	WorkerBackground Worker = "background-worker"
)

// Workers lists every valid role in declaration order.
func Workers() []Worker { return []Worker{WorkerAPI, WorkerBackground} }

// DefaultWorkers is used when ADEPT_WORKERS_INCLUDE is unset or empty.
func DefaultWorkers() []string { return []string{string(WorkerAPI), string(WorkerBackground)} }

// IsValid reports enumeration membership.
func (w Worker) IsValid() bool {
	switch w {
	case WorkerAPI, WorkerBackground:
		return true
	}
	return false
}

// ErrInvalidWorkers is matched by every *InvalidWorkersError.
var ErrInvalidWorkers = errors.New("invalid worker")

// InvalidWorkersError names every token outside the enumeration.
type InvalidWorkersError struct {
	Tokens []string
}

func (e *InvalidWorkersError) Error() string {
	return fmt.Sprintf("invalid worker(s) found: %s", strings.Join(e.Tokens, ","))
}

func (e *InvalidWorkersError) Unwrap() error { return ErrInvalidWorkers }

// SetDifference returns included minus excluded.  Output order follows the
// first appearance in included and duplicates collapse.
func SetDifference(included, excluded []string) []string {
	drop := make(map[string]struct{}, len(excluded))
	for _, x := range excluded {
		drop[x] = struct{}{}
	}

	seen := make(map[string]struct{}, len(included))
	out := []string{}
	for _, tok := range included {
		if _, gone := drop[tok]; gone {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
	}
	return out
}

// ValidateWorkers converts tokens to Workers.  Any unknown token fails the
// whole call with an error listing all offenders.
func ValidateWorkers(tokens []string) ([]Worker, error) {
	workers := make([]Worker, 0, len(tokens))
	var bad []string
	for _, tok := range tokens {
		w := Worker(tok)
		if !w.IsValid() {
			bad = append(bad, tok)
			continue
		}
		workers = append(workers, w)
	}
	if len(bad) > 0 {
		return nil, &InvalidWorkersError{Tokens: bad}
	}
	return workers, nil
}

// ResolveWorkers applies ParseSet, SetDifference, and ValidateWorkers to the
// raw include and exclude values.
func ResolveWorkers(include, exclude string) ([]Worker, error) {
	included := ParseSet(include, DefaultWorkers())
	excluded := ParseSet(exclude, nil)
	return ValidateWorkers(SetDifference(included, excluded))
}

// HasWorker reports whether w is part of ws.
func HasWorker(ws []Worker, w Worker) bool {
	for _, x := range ws {
		if x == w {
			return true
		}
	}
	return false
}
