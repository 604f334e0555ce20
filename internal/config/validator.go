// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// Resolve calls `validateStruct` once the Config is assembled.  Any tag
// violation aborts resolution, so a process never starts with a
// malformed port, an unknown log level, or a bad trusted-proxy entry.
//
// Worker and REDIS_URL checks happen earlier with their own error types;
// this layer only sees shape rules expressible as tags.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New(validator.WithRequiredStructEnabled())

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
