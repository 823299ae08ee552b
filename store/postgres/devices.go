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

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sage-x-project/sas-verify/store"
)

// DeviceStore implements store.DeviceStore for PostgreSQL.
type DeviceStore struct {
	db *pgxpool.Pool
}

func (d *DeviceStore) Create(ctx context.Context, device *store.DeviceRecord) error {
	query := `
		INSERT INTO devices (user_id, device_id, ed25519_key, curve25519_key, cross_signing_key_id, cross_signing_key, revoked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := d.db.Exec(ctx, query,
		device.UserID,
		device.DeviceID,
		device.Ed25519Key,
		device.Curve25519Key,
		device.CrossSigningKeyID,
		device.CrossSigningKey,
		device.Revoked,
		device.CreatedAt,
		device.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func (d *DeviceStore) Get(ctx context.Context, userID, deviceID string) (*store.DeviceRecord, error) {
	query := `
		SELECT user_id, device_id, ed25519_key, curve25519_key, cross_signing_key_id, cross_signing_key, revoked, created_at, updated_at
		FROM devices
		WHERE user_id = $1 AND device_id = $2
	`

	var result store.DeviceRecord
	err := d.db.QueryRow(ctx, query, userID, deviceID).Scan(
		&result.UserID,
		&result.DeviceID,
		&result.Ed25519Key,
		&result.Curve25519Key,
		&result.CrossSigningKeyID,
		&result.CrossSigningKey,
		&result.Revoked,
		&result.CreatedAt,
		&result.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("device not found: %s/%s", userID, deviceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return &result, nil
}

func (d *DeviceStore) Update(ctx context.Context, device *store.DeviceRecord) error {
	query := `
		UPDATE devices
		SET ed25519_key = $1, curve25519_key = $2, cross_signing_key_id = $3, cross_signing_key = $4, revoked = $5, updated_at = $6
		WHERE user_id = $7 AND device_id = $8
	`

	result, err := d.db.Exec(ctx, query,
		device.Ed25519Key,
		device.Curve25519Key,
		device.CrossSigningKeyID,
		device.CrossSigningKey,
		device.Revoked,
		device.UpdatedAt,
		device.UserID,
		device.DeviceID,
	)

	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("device not found: %s/%s", device.UserID, device.DeviceID)
	}

	return nil
}

func (d *DeviceStore) Delete(ctx context.Context, userID, deviceID string) error {
	query := `DELETE FROM devices WHERE user_id = $1 AND device_id = $2`

	result, err := d.db.Exec(ctx, query, userID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("device not found: %s/%s", userID, deviceID)
	}

	return nil
}

func (d *DeviceStore) ListByUser(ctx context.Context, userID string) ([]*store.DeviceRecord, error) {
	query := `
		SELECT user_id, device_id, ed25519_key, curve25519_key, cross_signing_key_id, cross_signing_key, revoked, created_at, updated_at
		FROM devices
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := d.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []*store.DeviceRecord
	for rows.Next() {
		var device store.DeviceRecord
		err := rows.Scan(
			&device.UserID,
			&device.DeviceID,
			&device.Ed25519Key,
			&device.Curve25519Key,
			&device.CrossSigningKeyID,
			&device.CrossSigningKey,
			&device.Revoked,
			&device.CreatedAt,
			&device.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}

		devices = append(devices, &device)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating devices: %w", err)
	}

	return devices, nil
}

func (d *DeviceStore) Revoke(ctx context.Context, userID, deviceID string) error {
	query := `UPDATE devices SET revoked = true WHERE user_id = $1 AND device_id = $2`

	result, err := d.db.Exec(ctx, query, userID, deviceID)
	if err != nil {
		return fmt.Errorf("failed to revoke device: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("device not found: %s/%s", userID, deviceID)
	}

	return nil
}

func (d *DeviceStore) IsRevoked(ctx context.Context, userID, deviceID string) (bool, error) {
	query := `SELECT revoked FROM devices WHERE user_id = $1 AND device_id = $2`

	var revoked bool
	err := d.db.QueryRow(ctx, query, userID, deviceID).Scan(&revoked)
	if err == pgx.ErrNoRows {
		return false, fmt.Errorf("device not found: %s/%s", userID, deviceID)
	}
	if err != nil {
		return false, fmt.Errorf("failed to check device revocation: %w", err)
	}

	return revoked, nil
}
