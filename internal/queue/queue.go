// Package queue is the background-job broker client.  It turns the
// resolved config.Queue (prefix, default job options, queue names, and
// Redis connection) into a go-redis client plus small list-based
// enqueue/consume helpers used by the background worker.
//
// Keys:
//
//	<prefix>:<queue>:wait       pending jobs (LPUSH / BRPOP)
//	<prefix>:<queue>:completed  kept when RemoveOnComplete is false
//	<prefix>:<queue>:failed     kept when RemoveOnFail is false
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AdeptTravel/adept-runtime/internal/config"
)

const defaultPort = 6379

var (
	// ErrUnknownQueue is returned when a queue name is not configured.
	ErrUnknownQueue = errors.New("unknown queue")
	// ErrMalformedJob marks a payload that is not a Job envelope.  The
	// payload is dropped.
	ErrMalformedJob = errors.New("malformed job")
)

// Job is the envelope stored in Redis.
type Job struct {
	Name     string          `json:"name"`
	Data     json.RawMessage `json:"data,omitempty"`
	Attempts int             `json:"attempts"`
	Made     int             `json:"made"`
	Error    string          `json:"error,omitempty"`
}

// Handler processes one job.  A non-nil error counts as a failed attempt.
type Handler func(ctx context.Context, job Job) error

// Recorder receives job counters.  *metrics.Group satisfies it.
type Recorder interface {
	AddToCounter(name string, value float64)
}

type nopRecorder struct{}

func (nopRecorder) AddToCounter(string, float64) {}

// RedisOptions maps the resolved connection onto go-redis options.  A
// socket Path wins over Host and Port.
func RedisOptions(c config.RedisOptions) *redis.Options {
	opts := &redis.Options{
		Username: c.Username,
		Password: c.Password,
		DB:       c.DB,
	}
	if c.Path != "" {
		opts.Network = "unix"
		opts.Addr = c.Path
		return opts
	}
	port := c.Port
	if port == 0 {
		port = defaultPort
	}
	opts.Network = "tcp"
	opts.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	return opts
}

// Broker is safe for concurrent use.
type Broker struct {
	rdb      *redis.Client
	prefix   string
	defaults config.JobOptions
	names    map[string]struct{}
	order    []string
	rec      Recorder
}

// New dials lazily; call Ping to check reachability.
func New(q config.Queue, rec Recorder) *Broker {
	return NewWithClient(redis.NewClient(RedisOptions(q.Connection.Options)), q, rec)
}

// NewWithClient wraps an existing client.  Tests pass a miniredis-backed one.
func NewWithClient(rdb *redis.Client, q config.Queue, rec Recorder) *Broker {
	if rec == nil {
		rec = nopRecorder{}
	}
	names := make(map[string]struct{}, len(q.Names))
	for _, n := range q.Names {
		names[n] = struct{}{}
	}
	return &Broker{
		rdb:      rdb,
		prefix:   q.Prefix,
		defaults: q.DefaultJobOptions,
		names:    names,
		order:    append([]string(nil), q.Names...),
		rec:      rec,
	}
}

// Ping checks the broker connection.
func (b *Broker) Ping(ctx context.Context) error { return b.rdb.Ping(ctx).Err() }

// Close releases the client.
func (b *Broker) Close() error { return b.rdb.Close() }

func (b *Broker) key(queue, state string) string {
	return b.prefix + ":" + queue + ":" + state
}

func (b *Broker) check(queue string) error {
	if _, ok := b.names[queue]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownQueue, queue)
	}
	return nil
}

// Enqueue pushes a job with the default attempt budget.
func (b *Broker) Enqueue(ctx context.Context, queue, name string, data any) error {
	if err := b.check(queue); err != nil {
		return err
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode job data: %w", err)
	}
	return b.push(ctx, b.key(queue, "wait"), Job{Name: name, Data: raw, Attempts: b.defaults.Attempts})
}

func (b *Broker) push(ctx context.Context, key string, job Job) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return b.rdb.LPush(ctx, key, payload).Err()
}

// Len reports how many jobs sit in queue's given state list.
func (b *Broker) Len(ctx context.Context, queue, state string) (int64, error) {
	return b.rdb.LLen(ctx, b.key(queue, state)).Result()
}

// ProcessOne waits up to timeout for a job on queue and runs h.  It
// returns false when no job arrived.
func (b *Broker) ProcessOne(ctx context.Context, queue string, timeout time.Duration, h Handler) (bool, error) {
	if err := b.check(queue); err != nil {
		return false, err
	}
	return b.process(ctx, timeout, h, queue)
}

// process pops from the first non-empty wait list among queues, in order.
func (b *Broker) process(ctx context.Context, timeout time.Duration, h Handler, queues ...string) (bool, error) {
	keys := make([]string, len(queues))
	for i, q := range queues {
		keys[i] = b.key(q, "wait")
	}
	res, err := b.rdb.BRPop(ctx, timeout, keys...).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	queue := strings.TrimSuffix(strings.TrimPrefix(res[0], b.prefix+":"), ":wait")

	var job Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		b.rec.AddToCounter("malformed_total", 1)
		return true, fmt.Errorf("%w: %v", ErrMalformedJob, err)
	}

	job.Made++
	herr := h(ctx, job)
	switch {
	case herr == nil:
		b.rec.AddToCounter("completed_total", 1)
		if !b.defaults.RemoveOnComplete {
			return true, b.push(ctx, b.key(queue, "completed"), job)
		}
	case job.Made < job.Attempts:
		b.rec.AddToCounter("retried_total", 1)
		job.Error = herr.Error()
		return true, b.push(ctx, b.key(queue, "wait"), job)
	default:
		b.rec.AddToCounter("failed_total", 1)
		job.Error = herr.Error()
		if !b.defaults.RemoveOnFail {
			return true, b.push(ctx, b.key(queue, "failed"), job)
		}
	}
	return true, nil
}

// Consume blocks on every configured queue at once until ctx ends.
// Handler errors are absorbed by the retry policy; broker errors stop the
// loop.
func (b *Broker) Consume(ctx context.Context, h Handler) error {
	for ctx.Err() == nil {
		if _, err := b.process(ctx, time.Second, h, b.order...); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrMalformedJob) {
				continue
			}
			return err
		}
	}
	return nil
}
