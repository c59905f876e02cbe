package configstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/playperu/eastertrail/internal/storybook"
)

// DocStore keeps the record as a single JSONB row in site_config. The
// table is created by the migrations package.
type DocStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db}
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func get(ctx context.Context, q querier) ([]byte, error) {
	var data string
	err := q.QueryRowContext(ctx, `SELECT json(data) FROM site_config WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading site config: %w", err)
	}
	return []byte(data), nil
}

func (s *DocStore) Load(ctx context.Context) (storybook.SiteConfig, error) {
	data, err := get(ctx, s.db)
	if err != nil {
		return storybook.SiteConfig{}, err
	}
	return decode(data)
}

func (s *DocStore) Merge(ctx context.Context, p Patch) (storybook.SiteConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storybook.SiteConfig{}, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	current, err := get(ctx, tx)
	if err != nil {
		return storybook.SiteConfig{}, err
	}
	cfg, out, err := merge(current, p)
	if err != nil {
		return cfg, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO site_config (id, data, updated_at) VALUES (1, jsonb(?), ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, string(out), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return cfg, fmt.Errorf("saving site config: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return cfg, fmt.Errorf("committing site config: %w", err)
	}
	return cfg, nil
}
