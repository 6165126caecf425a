package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanLockPrefix = "scan-lock:"

// ScanLock: общий для всех инстансов антидребезг сканов через SET NX PX.
type ScanLock struct {
	client *redis.Client
	window time.Duration
}

func New(addr string) (*redis.Client, error) {
	const op = "storage.redis.New"

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("%s: ping %s: %w", op, addr, err)
	}

	return client, nil
}

func NewScanLock(client *redis.Client, window time.Duration) *ScanLock {
	return &ScanLock{client: client, window: window}
}

// Allow ставит ключ на window; если ключ уже стоит: скан повторный.
func (l *ScanLock) Allow(ctx context.Context, key string) (bool, error) {
	const op = "storage.redis.ScanLock.Allow"

	ok, err := l.client.SetNX(ctx, scanLockPrefix+key, time.Now().UnixMilli(), l.window).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return ok, nil
}
