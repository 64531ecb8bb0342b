package config

// Redis backs the distributed rate limiter. When the server cannot be
// reached at startup the client is nil and rate limiting is skipped.

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds connection settings. REDIS_HOST and REDIS_PORT take
// precedence over REDIS_ADDR when both are set.
type RedisConfig struct {
	Host     string        `envconfig:"REDIS_HOST"`
	Port     string        `envconfig:"REDIS_PORT"`
	Addr     string        `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string        `envconfig:"REDIS_PASSWORD"`
	DB       int           `envconfig:"REDIS_DB" default:"0"`
	TLS      bool          `envconfig:"REDIS_TLS" default:"false"`
	Timeout  time.Duration `envconfig:"REDIS_PING_TIMEOUT" default:"2s"`
}

func (r *RedisConfig) resolveAddr() {
	if r.Host != "" && r.Port != "" {
		r.Addr = net.JoinHostPort(r.Host, r.Port)
	}
}

// NewRedisClient builds a client from cfg and pings it. It returns nil if
// the server does not answer within cfg.Timeout.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{InsecureSkipVerify: true}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil
	}
	return client
}
