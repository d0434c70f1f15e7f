package postgres

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PoolConfig configures the process-wide connection pool.
type PoolConfig struct {
	URL            string
	MaxConnections int32
	ConnectTimeout time.Duration
}

// Handle opens the connection pool at most once. Every caller of Pool gets
// the same pool, or the same error if opening failed.
type Handle struct {
	cfg PoolConfig

	once sync.Once
	mu   sync.Mutex
	pool *pgxpool.Pool
	err  error
}

var ErrHandleClosed = errors.New("postgres handle closed")

func NewHandle(cfg PoolConfig) *Handle {
	return &Handle{cfg: cfg}
}

// Pool returns the shared pool, opening and pinging it on first use.
func (h *Handle) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	h.once.Do(func() {
		h.pool, h.err = openPool(ctx, h.cfg)
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pool, h.err
}

// Close releases the pool. Later calls to Pool return ErrHandleClosed.
func (h *Handle) Close() {
	h.once.Do(func() {
		h.err = ErrHandleClosed
	})
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pool != nil {
		h.pool.Close()
		h.pool = nil
		h.err = ErrHandleClosed
	}
}

func openPool(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("open pool: database url is empty")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = cfg.MaxConnections
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
