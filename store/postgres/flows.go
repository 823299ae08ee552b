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
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sage-x-project/sas-verify/store"
)

// FlowStore implements store.FlowStore for PostgreSQL.
type FlowStore struct {
	db *pgxpool.Pool
}

func (f *FlowStore) Create(ctx context.Context, record *store.FlowRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		INSERT INTO flows (id, our_user_id, peer_user_id, peer_device_id, phase, created_at, expires_at, last_event_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err = f.db.Exec(ctx, query,
		record.ID,
		record.OurUserID,
		record.PeerUserID,
		record.PeerDeviceID,
		record.Phase,
		record.CreatedAt,
		record.ExpiresAt,
		record.LastEventAt,
		metadata,
	)

	if err != nil {
		return fmt.Errorf("failed to create flow: %w", err)
	}

	return nil
}

func (f *FlowStore) Get(ctx context.Context, id string) (*store.FlowRecord, error) {
	query := `
		SELECT id, our_user_id, peer_user_id, peer_device_id, phase, created_at, expires_at, last_event_at, metadata
		FROM flows
		WHERE id = $1 AND expires_at > NOW()
	`

	var record store.FlowRecord
	var metadataJSON []byte

	err := f.db.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.OurUserID,
		&record.PeerUserID,
		&record.PeerDeviceID,
		&record.Phase,
		&record.CreatedAt,
		&record.ExpiresAt,
		&record.LastEventAt,
		&metadataJSON,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("flow not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flow: %w", err)
	}

	if metadataJSON != nil {
		if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}

	return &record, nil
}

func (f *FlowStore) Update(ctx context.Context, record *store.FlowRecord) error {
	metadata, err := json.Marshal(record.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	query := `
		UPDATE flows
		SET phase = $1, expires_at = $2, last_event_at = $3, metadata = $4
		WHERE id = $5
	`

	result, err := f.db.Exec(ctx, query,
		record.Phase,
		record.ExpiresAt,
		record.LastEventAt,
		metadata,
		record.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update flow: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("flow not found: %s", record.ID)
	}

	return nil
}

func (f *FlowStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM flows WHERE id = $1`

	result, err := f.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("flow not found: %s", id)
	}

	return nil
}

func (f *FlowStore) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM flows WHERE expires_at <= NOW()`

	result, err := f.db.Exec(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired flows: %w", err)
	}

	return result.RowsAffected(), nil
}

func (f *FlowStore) List(ctx context.Context, peerUserID string, limit, offset int) ([]*store.FlowRecord, error) {
	query := `
		SELECT id, our_user_id, peer_user_id, peer_device_id, phase, created_at, expires_at, last_event_at, metadata
		FROM flows
		WHERE peer_user_id = $1 AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := f.db.Query(ctx, query, peerUserID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	defer rows.Close()

	var records []*store.FlowRecord
	for rows.Next() {
		var record store.FlowRecord
		var metadataJSON []byte

		err := rows.Scan(
			&record.ID,
			&record.OurUserID,
			&record.PeerUserID,
			&record.PeerDeviceID,
			&record.Phase,
			&record.CreatedAt,
			&record.ExpiresAt,
			&record.LastEventAt,
			&metadataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flow: %w", err)
		}

		if metadataJSON != nil {
			if err := json.Unmarshal(metadataJSON, &record.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}

		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flows: %w", err)
	}

	return records, nil
}

func (f *FlowStore) UpdateActivity(ctx context.Context, id string) error {
	query := `UPDATE flows SET last_event_at = $1 WHERE id = $2`

	result, err := f.db.Exec(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("flow not found: %s", id)
	}

	return nil
}

func (f *FlowStore) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM flows WHERE expires_at > NOW()`

	var count int64
	err := f.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count flows: %w", err)
	}

	return count, nil
}
