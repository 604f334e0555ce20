// internal/config/redis.go
//
// Queue-broker connection parameters.
//
// Context
// -------
// Two mutually exclusive inputs describe the broker:
//
//  1. discrete REDIS_HOSTNAME, REDIS_PORT, REDIS_DBINDEX, REDIS_USERNAME,
//     REDIS_PASSWORD, and REDIS_SOCKET, each defaulted on its own;
//  2. REDIS_URL of the form "ioredis://<base64 JSON>".
//
// A decodable REDIS_URL replaces the discrete result wholesale.  The result
// carries a RedisSource tag so callers can tell which branch produced it and
// no code path can merge the two.  A REDIS_URL with the scheme but a bad
// payload is fatal.

package config

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	RedisURLScheme = "ioredis://"

	defaultRedisHost = "redis"
	defaultRedisPort = 6379
)

// RedisSource tags the branch that produced a RedisConnection.
type RedisSource int

const (
	RedisDiscrete RedisSource = iota
	RedisDecoded
)

func (s RedisSource) String() string {
	if s == RedisDecoded {
		return "decoded"
	}
	return "discrete"
}

// RedisOptions is the broker field set shared by both branches.  Empty
// Username, Password, and Path mean "unset".
type RedisOptions struct {
	Host     string `json:"host"               validate:"required_without=Path"`
	Port     int    `json:"port"               validate:"min=0,max=65535"`
	DB       int    `json:"db"                 validate:"min=0"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Path     string `json:"path,omitempty"`
}

// RedisConnection is the only value the resolver hands out.
type RedisConnection struct {
	Source  RedisSource
	Options RedisOptions
}

// ErrRedisDecode is matched by every *RedisDecodeError.
var ErrRedisDecode = errors.New("failed to decode redis options")

// RedisDecodeError wraps the base64 or JSON failure behind a bad REDIS_URL.
type RedisDecodeError struct {
	Err error
}

func (e *RedisDecodeError) Error() string {
	return fmt.Sprintf("%s: %v", ErrRedisDecode, e.Err)
}

func (e *RedisDecodeError) Unwrap() []error { return []error{ErrRedisDecode, e.Err} }

// ResolveRedis builds the discrete result, then lets a recognised REDIS_URL
// replace it.
func ResolveRedis(raw RawEnvironment) (RedisConnection, error) {
	conn := RedisConnection{
		Source: RedisDiscrete,
		Options: RedisOptions{
			Host:     raw.Or("REDIS_HOSTNAME", defaultRedisHost),
			Port:     ParsePort(raw.Get("REDIS_PORT"), defaultRedisPort),
			DB:       ParseInt(raw.Get("REDIS_DBINDEX"), 0),
			Username: raw.Get("REDIS_USERNAME"),
			Password: raw.Get("REDIS_PASSWORD"),
			Path:     raw.Get("REDIS_SOCKET"),
		},
	}

	url := raw.Get("REDIS_URL")
	if !strings.HasPrefix(url, RedisURLScheme) {
		return conn, nil
	}

	opts, err := DecodeRedisURL(url)
	if err != nil {
		return RedisConnection{}, err
	}
	return RedisConnection{Source: RedisDecoded, Options: opts}, nil
}

// DecodeRedisURL strips the scheme, base64-decodes the rest, and parses the
// JSON object inside.  Padding is optional.
func DecodeRedisURL(url string) (RedisOptions, error) {
	payload := strings.TrimPrefix(url, RedisURLScheme)
	data, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
	if err != nil {
		return RedisOptions{}, &RedisDecodeError{Err: err}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return RedisOptions{}, &RedisDecodeError{Err: errors.New("payload is not a JSON object")}
	}

	var opts RedisOptions
	if err := json.Unmarshal(data, &opts); err != nil {
		return RedisOptions{}, &RedisDecodeError{Err: err}
	}
	return opts, nil
}

// EncodeRedisURL is the inverse of DecodeRedisURL.  The admin CLI uses it to
// print a REDIS_URL for the discrete settings in effect.
func EncodeRedisURL(opts RedisOptions) (string, error) {
	data, err := json.Marshal(opts)
	if err != nil {
		return "", err
	}
	return RedisURLScheme + base64.StdEncoding.EncodeToString(data), nil
}
