// Package cache builds the Redis connections shared by the export store and the job queue.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Options selects the Redis deployment. Several comma-separated addresses select a cluster.
type Options struct {
	Addrs    string
	Password string
	DB       int
}

func (o Options) addrs() []string {
	var out []string
	for _, addr := range strings.Split(o.Addrs, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// New creates a Redis client and pings it.
func New(ctx context.Context, opts Options) (redis.UniversalClient, error) {
	addrs := opts.addrs()
	if len(addrs) == 0 {
		return nil, fmt.Errorf("platform/cache: no redis address")
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// AsynqOpt returns the matching connection option for the job queue.
func (o Options) AsynqOpt() asynq.RedisConnOpt {
	addrs := o.addrs()
	if len(addrs) > 1 {
		return asynq.RedisClusterClientOpt{Addrs: addrs, Password: o.Password}
	}
	var addr string
	if len(addrs) == 1 {
		addr = addrs[0]
	}
	return asynq.RedisClientOpt{Addr: addr, Password: o.Password, DB: o.DB}
}
