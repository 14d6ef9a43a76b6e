package main

import (
	"context"
	"net"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// trackClose envuelve openStorage y cuenta las llamadas a close.
func trackClose(t *testing.T) *atomic.Int32 {
	t.Helper()
	var closed atomic.Int32
	prev := openStore
	openStore = func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
		st, err := openStorage(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		inner := st.close
		st.close = func() {
			inner()
			closed.Add(1)
		}
		return st, nil
	}
	t.Cleanup(func() { openStore = prev })
	return &closed
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func memoryConfig(port int) *config.Config {
	return &config.Config{
		App:       config.AppConfig{Env: "test", Name: "inventory-ledger-test", LogLevel: "error", Storage: config.StorageMemory},
		JWT:       config.JWTConfig{Secret: "main-test-secret"},
		HTTP:      config.HTTPConfig{Host: "127.0.0.1", Port: port},
		Inventory: config.InventoryConfig{LowStockThreshold: 10, CriticalThreshold: 3},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "test", Level: "error", Service: "api-test"})
}

func TestRun_RedisInalcanzableCierraAlmacenamiento(t *testing.T) {
	closed := trackClose(t)
	cfg := memoryConfig(freePort(t))
	cfg.Redis.Addr = "127.0.0.1:" + strconv.Itoa(freePort(t))

	err := run(context.Background(), cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conexión a Redis")
	assert.Equal(t, int32(1), closed.Load(), "el almacenamiento debe cerrarse aunque run falle")
}

func TestRun_PuertoOcupadoDevuelveError(t *testing.T) {
	closed := trackClose(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	err = run(context.Background(), memoryConfig(ln.Addr().(*net.TCPAddr).Port), testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "servidor HTTP")
	assert.Equal(t, int32(1), closed.Load())
}

func TestRun_ApagadoOrdenadoAlCancelar(t *testing.T) {
	closed := trackClose(t)
	port := freePort(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- run(ctx, memoryConfig(port), testLogger()) }()

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(port))
	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 100*time.Millisecond)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 5*time.Second, 50*time.Millisecond, "el servidor no empezó a escuchar")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run no terminó tras cancelar el contexto")
	}
	assert.Equal(t, int32(1), closed.Load())
}
