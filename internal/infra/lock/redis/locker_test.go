package redis

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
)

func TestLockFailsWithoutServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	l := &Locker{Client: client, Wait: time.Second}

	release, err := l.Lock(context.Background(), "lock:property:p1")
	assert.Error(t, err)
	assert.Nil(t, release)
	assert.Error(t, l.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	l := &Locker{}
	assert.Equal(t, 10*time.Second, l.ttl())
	assert.Equal(t, 10*time.Second, l.wait())
	assert.Equal(t, 25*time.Millisecond, l.retry())

	l = New(nil, time.Second)
	assert.Equal(t, time.Second, l.wait())
}
