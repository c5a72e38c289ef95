package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"vocatus/backend/internal/app"
	"vocatus/backend/internal/config"
)

type fakePinger struct {
	callCount int
	failUntil int
}

func (p *fakePinger) PingContext(ctx context.Context) error {
	p.callCount++
	if p.callCount <= p.failUntil {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetry_Success(t *testing.T) {
	p := &fakePinger{}
	err := app.PingWithRetry(context.Background(), p, 1, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 1, p.callCount)
}

func TestPingWithRetry_Retries(t *testing.T) {
	p := &fakePinger{failUntil: 2}
	err := app.PingWithRetry(context.Background(), p, 5, time.Millisecond)
	assert.NoError(t, err)
	assert.Equal(t, 3, p.callCount)
}

func TestPingWithRetry_Fail(t *testing.T) {
	p := &fakePinger{failUntil: 100}
	err := app.PingWithRetry(context.Background(), p, 3, time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, 3, p.callCount)
}

func TestPingWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &fakePinger{failUntil: 100}
	err := app.PingWithRetry(ctx, p, 3, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBootstrap_ConfigurationError(t *testing.T) {
	cfg := &config.Config{
		DBHost: "invalid-host",
	}
	deps, err := app.Bootstrap(context.Background(), cfg)
	assert.Error(t, err)
	assert.Nil(t, deps)
}
