package replay

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// acceptScript stores ARGV[1] under KEYS[1] for ARGV[2] milliseconds unless the
// stored step is already at or above it.
var acceptScript = redis.NewScript(`
local last = redis.call('GET', KEYS[1])
if last and tonumber(last) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
return 1
`)

// Redis is a Guard shared by every instance pointing at the same server.
type Redis struct {
	client redis.Scripter
	prefix string
}

// NewRedis returns a guard storing its state under "totp:replay:" keys.
func NewRedis(client redis.Scripter) *Redis {
	return &Redis{
		client: client,
		prefix: "totp:replay:",
	}
}

// Accept implements Guard.
func (r *Redis) Accept(ctx context.Context, key string, step uint64, ttl time.Duration) (bool, error) {
	ms := ttl.Milliseconds()
	if ms <= 0 {
		ms = 1
	}

	accepted, err := acceptScript.Run(ctx, r.client, []string{r.prefix + key}, step, ms).Int()
	if err != nil {
		return false, err
	}

	return accepted == 1, nil
}
