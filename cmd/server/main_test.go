package main

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/vamledger/internal/adapter/repository/postgres"
	"github.com/iho/vamledger/internal/infrastructure/config"
)

func TestNewTokenVerifier(t *testing.T) {
	if v := newTokenVerifier(&config.Config{}); v != nil {
		t.Fatalf("expected bearer tokens to be disabled without a secret, got %T", v)
	}

	v := newTokenVerifier(&config.Config{JWTSecret: "s3cret", JWTIssuer: "vamledger", JWTTTL: time.Hour})
	if v == nil {
		t.Fatal("expected a verifier when a secret is configured")
	}
	if _, err := v.Verify("garbage"); err == nil {
		t.Fatal("expected garbage token to fail verification")
	}
}

func TestNewOutboxRepositoryDisabled(t *testing.T) {
	repo := newOutboxRepository(&config.Config{OutboxEnabled: false}, nil, zerolog.Nop())
	if _, ok := repo.(*postgres.NullOutboxRepository); !ok {
		t.Fatalf("expected null outbox when disabled, got %T", repo)
	}
}

func TestRedisPinger(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	ping := redisPinger(client)
	if err := ping.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed: %v", err)
	}

	mr.Close()
	if err := ping.Ping(context.Background()); err == nil {
		t.Fatal("expected ping to fail once redis is gone")
	}
}
