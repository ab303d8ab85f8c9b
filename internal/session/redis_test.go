// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vitrine Contributors

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitrine/vitrine/internal/session"
	"github.com/vitrine/vitrine/pkg/errutil"
)

// fakeRedis records commands and serves values from a map.
type fakeRedis struct {
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.values[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	s := session.NewRedisStore(fake, "")

	require.NoError(t, s.Set(ctx, "abc", []byte(`{"x":1}`), 30*time.Minute))
	assert.Equal(t, `{"x":1}`, fake.values["vitrine:session:abc"])
	assert.Equal(t, 30*time.Minute, fake.ttls["vitrine:session:abc"])

	got, err := s.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, `{"x":1}`, string(got))

	require.NoError(t, s.Delete(ctx, "abc"))
	_, err = s.Get(ctx, "abc")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestRedisStore_CustomPrefix(t *testing.T) {
	fake := newFakeRedis()
	s := session.NewRedisStore(fake, "test:")
	require.NoError(t, s.Set(context.Background(), "k", []byte("v"), time.Minute))
	assert.Contains(t, fake.values, "test:k")
}

func TestRedisStore_Failures(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.err = errors.New("connection reset")
	s := session.NewRedisStore(fake, "")

	_, err := s.Get(ctx, "k")
	assert.NotErrorIs(t, err, session.ErrNotFound)
	errutil.AssertErrorCode(t, err, "SESSION_GET_FAILED")

	errutil.AssertErrorCode(t, s.Set(ctx, "k", []byte("v"), time.Minute), "SESSION_SET_FAILED")
	errutil.AssertErrorCode(t, s.Delete(ctx, "k"), "SESSION_DELETE_FAILED")
	errutil.AssertErrorCode(t, s.Set(ctx, "k", []byte("v"), 0), "SESSION_INVALID_TTL")
}
