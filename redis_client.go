package precisionbloom

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	redisLock   sync.RWMutex
	redisClient *redis.Client
)

// RedisConnOptions holds the connection settings used by MakeRedisClient
type RedisConnOptions struct {
	DB                int
	Network           string
	Address           string
	Username          string
	Password          string
	ConnectionTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	PoolSize          int
	TLSConfig         *tls.Config
}

func getRedisClient() (*redis.Client, error) {
	redisLock.RLock()
	defer redisLock.RUnlock()
	if redisClient == nil {
		return nil, fmt.Errorf("precisionbloom: %w, call MakeRedisClient first", ErrRedisClientNotConfigured)
	}
	return redisClient, nil
}

// MakeRedisClient builds the client used by every Redis backed bitset from
// _options_. A client made earlier is replaced, not closed.
func MakeRedisClient(options RedisConnOptions) {
	SetRedisClient(redis.NewClient(&redis.Options{
		DB:           options.DB,
		Network:      options.Network,
		Addr:         options.Address,
		Username:     options.Username,
		Password:     options.Password,
		DialTimeout:  options.ConnectionTimeout,
		ReadTimeout:  options.ReadTimeout,
		WriteTimeout: options.WriteTimeout,
		PoolSize:     options.PoolSize,
		TLSConfig:    options.TLSConfig,
	}))
}

// SetRedisClient installs an already configured _client_
func SetRedisClient(client *redis.Client) {
	redisLock.Lock()
	defer redisLock.Unlock()
	redisClient = client
}

// ParseRedisURI parses a redis:// or rediss:// _uri_ into RedisConnOptions
func ParseRedisURI(uri string) (*RedisConnOptions, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("precisionbloom: could not parse redis uri: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("precisionbloom: unsupported uri scheme %q", u.Scheme)
	}
	options, err := redis.ParseURL(uri)
	if err != nil {
		return nil, fmt.Errorf("precisionbloom: error while parsing redis uri: %w", err)
	}
	return makeConnOptions(options), nil
}

func makeConnOptions(options *redis.Options) *RedisConnOptions {
	return &RedisConnOptions{
		DB:                options.DB,
		Network:           options.Network,
		Address:           options.Addr,
		Username:          options.Username,
		Password:          options.Password,
		ConnectionTimeout: options.DialTimeout,
		ReadTimeout:       options.ReadTimeout,
		WriteTimeout:      options.WriteTimeout,
		PoolSize:          options.PoolSize,
		TLSConfig:         options.TLSConfig,
	}
}
