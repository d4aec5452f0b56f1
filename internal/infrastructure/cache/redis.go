package cache

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/gigwork-backend/internal/domain/repository"
)

// versionKey хранит счётчик удалений, общий для всех экземпляров сервиса.
const versionKey = "matchcache:version"

// setIfVersionScript пишет значение, только если счётчик удалений не изменился.
var setIfVersionScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if (current or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// Redis: MatchCache поверх Redis. Если сервер недоступен, кэш работает в режиме обхода:
// чтения промахиваются, записи игнорируются.
type Redis struct {
	client *redis.Client
	logger *logrus.Logger

	warnedUnavailable atomic.Bool
}

var _ repository.MatchCache = (*Redis)(nil)

func NewRedis(addr, password string, logger *logrus.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if logger != nil {
			logger.WithError(err).WithField("addr", addr).Warn("cache: Redis недоступен, кэш отключён")
		}
		_ = client.Close()
		return &Redis{logger: logger}
	}

	return &Redis{client: client, logger: logger}
}

// Available сообщает, подключён ли кэш к серверу.
func (r *Redis) Available() bool {
	return r != nil && r.client != nil
}

func (r *Redis) warnOnce(err error) {
	if r.logger == nil {
		return
	}
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		r.logger.WithError(err).Warn("cache: ошибка Redis, запрос выполнен без кэша")
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	if !r.Available() {
		return nil, false
	}
	b, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.warnOnce(err)
		}
		return nil, false
	}
	return b, len(b) > 0
}

// Version возвращает счётчик удалений. При ошибке возвращается -1,
// и последующий SetIfVersion гарантированно ничего не запишет.
func (r *Redis) Version(ctx context.Context) int64 {
	if !r.Available() {
		return 0
	}
	raw, err := r.client.Get(ctx, versionKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0
	}
	if err != nil {
		r.warnOnce(err)
		return -1
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return -1
	}
	return version
}

func (r *Redis) SetIfVersion(ctx context.Context, key string, value []byte, ttl time.Duration, version int64) bool {
	if !r.Available() || ttl <= 0 || version < 0 {
		return false
	}
	written, err := setIfVersionScript.Run(ctx, r.client, []string{versionKey, key},
		strconv.FormatInt(version, 10), value, ttl.Milliseconds()).Int()
	if err != nil {
		r.warnOnce(err)
		return false
	}
	return written == 1
}

// Delete сначала увеличивает версию, затем удаляет ключи: запись, начатая до удаления,
// либо будет удалена, либо не пройдёт проверку версии.
func (r *Redis) Delete(ctx context.Context, keys ...string) {
	if !r.Available() || len(keys) == 0 {
		return
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Del(ctx, keys...)
		return nil
	})
	if err != nil {
		r.warnOnce(err)
	}
}

func (r *Redis) DeleteByPrefix(ctx context.Context, prefix string) {
	if !r.Available() || strings.TrimSpace(prefix) == "" {
		return
	}
	if err := r.client.Incr(ctx, versionKey).Err(); err != nil {
		r.warnOnce(err)
	}
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.warnOnce(err)
		}
	}
	if err := iter.Err(); err != nil {
		r.warnOnce(err)
	}
}

func (r *Redis) Close() error {
	if !r.Available() {
		return nil
	}
	return r.client.Close()
}
