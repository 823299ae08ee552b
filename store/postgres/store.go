// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sage-x-project/sas-verify/store"
)

// Store implements store.Store backed by PostgreSQL, for deployments
// that need verification flows to survive a process restart.
type Store struct {
	pool   *pgxpool.Pool
	flow   *FlowStore
	dedupe *DedupeStore
	device *DeviceStore
}

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewStore creates a new PostgreSQL-backed store.
func NewStore(ctx context.Context, cfg *Config) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
	return newStoreFromConnString(ctx, connString)
}

// NewStoreFromDSN creates a new PostgreSQL-backed store from a single
// connection string, for callers that already hold a config.StoreConfig's
// assembled DSN instead of its individual fields.
func NewStoreFromDSN(ctx context.Context, dsn string) (*Store, error) {
	return newStoreFromConnString(ctx, dsn)
}

func newStoreFromConnString(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{
		pool: pool,
	}

	store.flow = &FlowStore{db: pool}
	store.dedupe = &DedupeStore{db: pool}
	store.device = &DeviceStore{db: pool}

	return store, nil
}

// FlowStore returns the flow checkpoint store.
func (s *Store) FlowStore() store.FlowStore {
	return s.flow
}

// DedupeStore returns the event-dedupe store.
func (s *Store) DedupeStore() store.DedupeStore {
	return s.dedupe
}

// DeviceStore returns the device identity store.
func (s *Store) DeviceStore() store.DeviceStore {
	return s.device
}

// Close closes the database connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
