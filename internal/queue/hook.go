package queue

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// SampleRecorder receives counters and timings.  *metrics.Group satisfies it.
type SampleRecorder interface {
	AddToCounter(name string, value float64)
	AddToHistogram(name string, value float64)
}

// ioHook times every command sent to Redis.  redis.Nil is a normal reply
// (an empty BRPOP), not an error.
type ioHook struct{ rec SampleRecorder }

func (h ioHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		h.rec.AddToCounter("redis_dials_total", 1)
		if err != nil {
			h.rec.AddToCounter("redis_dial_errors_total", 1)
		}
		return conn, err
	}
}

func (h ioHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(start, 1, err)
		return err
	}
}

func (h ioHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe(start, len(cmds), err)
		return err
	}
}

func (h ioHook) observe(start time.Time, n int, err error) {
	h.rec.AddToHistogram("redis_command_seconds", time.Since(start).Seconds())
	h.rec.AddToCounter("redis_commands_total", float64(n))
	if err != nil && !errors.Is(err, redis.Nil) {
		h.rec.AddToCounter("redis_errors_total", 1)
	}
}

// Instrument attaches rec to every command the broker issues.  Call it
// before the broker is shared.
func (b *Broker) Instrument(rec SampleRecorder) {
	if rec == nil {
		return
	}
	b.rdb.AddHook(ioHook{rec: rec})
}
