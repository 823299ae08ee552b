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
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DedupeStore implements store.DedupeStore for PostgreSQL.
type DedupeStore struct {
	db *pgxpool.Pool
}

// CheckAndStore atomically checks if an event key has already been seen and
// records it if not.
func (d *DedupeStore) CheckAndStore(ctx context.Context, eventKey string, flowID string, expiresAt time.Time) error {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM seen_events WHERE event_key = $1)`
	if err := tx.QueryRow(ctx, checkQuery, eventKey).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check event key: %w", err)
	}

	if exists {
		return fmt.Errorf("event already seen: %s", eventKey)
	}

	insertQuery := `
		INSERT INTO seen_events (event_key, flow_id, seen_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, insertQuery, eventKey, flowID, time.Now(), expiresAt); err != nil {
		return fmt.Errorf("failed to store event key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (d *DedupeStore) IsSeen(ctx context.Context, eventKey string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM seen_events
			WHERE event_key = $1 AND expires_at > NOW()
		)
	`

	var seen bool
	err := d.db.QueryRow(ctx, query, eventKey).Scan(&seen)
	if err != nil {
		return false, fmt.Errorf("failed to check event key: %w", err)
	}

	return seen, nil
}

func (d *DedupeStore) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM seen_events WHERE expires_at <= NOW()`

	result, err := d.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired events: %w", err)
	}

	return result.RowsAffected(), nil
}

func (d *DedupeStore) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM seen_events WHERE expires_at > NOW()`

	var count int64
	err := d.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count events: %w", err)
	}

	return count, nil
}
