package cache

import (
	"context"
	"os"
	"testing"

	"github.com/ghuser/medtrace/pkg/config"
)

func redisConfig(url string) *config.Config {
	return &config.Config{RedisURL: url, RedisPoolSize: 20, ServiceName: "medtrace-test"}
}

func TestRedisOptions(t *testing.T) {
	tests := []struct {
		name         string
		cfg          *config.Config
		wantPool     int
		wantIdle     int
		wantClient   string
		wantParseErr bool
	}{
		{
			name:       "pool from config",
			cfg:        redisConfig("redis://localhost:6379/2"),
			wantPool:   20,
			wantIdle:   2,
			wantClient: "medtrace-test",
		},
		{
			name:       "small pool keeps one idle conn",
			cfg:        &config.Config{RedisURL: "redis://localhost:6379", RedisPoolSize: 4, ServiceName: "medtrace"},
			wantPool:   4,
			wantIdle:   1,
			wantClient: "medtrace",
		},
		{
			name:       "url client name wins",
			cfg:        redisConfig("redis://localhost:6379?client_name=ops"),
			wantPool:   20,
			wantIdle:   2,
			wantClient: "ops",
		},
		{
			name:         "invalid url",
			cfg:          redisConfig("not-a-valid-url"),
			wantParseErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := redisOptions(tt.cfg)
			if tt.wantParseErr {
				if err == nil {
					t.Fatal("expected a parse error")
				}
				return
			}
			if err != nil {
				t.Fatalf("redisOptions: %v", err)
			}
			if opts.PoolSize != tt.wantPool || opts.MinIdleConns != tt.wantIdle || opts.ClientName != tt.wantClient {
				t.Fatalf("got pool=%d idle=%d name=%q", opts.PoolSize, opts.MinIdleConns, opts.ClientName)
			}
		})
	}
}

func TestNewRedisClient_UnreachableHost(t *testing.T) {
	if _, err := NewRedisClient(redisConfig("redis://localhost:19999")); err == nil {
		t.Fatal("expected error when Redis is unreachable, got nil")
	}
}

func TestRedisClient_CloseZeroValue(t *testing.T) {
	if err := (&RedisClient{}).Close(); err != nil {
		t.Fatalf("Close on a zero client: %v", err)
	}
}

// Integration: skipped unless REDIS_URL is set.
func TestRedisIntegration(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set; skipping integration tests")
	}

	rc, err := NewRedisClient(redisConfig(redisURL))
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer rc.Close() //nolint:errcheck

	ctx := context.Background()
	if err := rc.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	name, err := rc.Client().ClientGetName(ctx).Result()
	if err != nil {
		t.Fatalf("CLIENT GETNAME: %v", err)
	}
	if name != "medtrace-test" {
		t.Fatalf("expected connection named medtrace-test, got %q", name)
	}
}
