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

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/sage-x-project/sas-verify/store"
)

// DedupeStore implements store.DedupeStore.
type DedupeStore struct {
	store *Store
}

func (d *DedupeStore) CheckAndStore(ctx context.Context, eventKey string, flowID string, expiresAt time.Time) error {
	d.store.dedupeMu.Lock()
	defer d.store.dedupeMu.Unlock()

	if _, exists := d.store.dedupe[eventKey]; exists {
		return fmt.Errorf("event already seen: %s", eventKey)
	}

	d.store.dedupe[eventKey] = &store.SeenEvent{
		EventKey:  eventKey,
		FlowID:    flowID,
		SeenAt:    time.Now(),
		ExpiresAt: expiresAt,
	}

	return nil
}

func (d *DedupeStore) IsSeen(ctx context.Context, eventKey string) (bool, error) {
	d.store.dedupeMu.RLock()
	defer d.store.dedupeMu.RUnlock()

	seen, exists := d.store.dedupe[eventKey]
	if !exists {
		return false, nil
	}

	if time.Now().After(seen.ExpiresAt) {
		return false, nil
	}

	return true, nil
}

func (d *DedupeStore) DeleteExpired(ctx context.Context) (int64, error) {
	d.store.dedupeMu.Lock()
	defer d.store.dedupeMu.Unlock()

	now := time.Now()
	var count int64

	for key, seen := range d.store.dedupe {
		if now.After(seen.ExpiresAt) {
			delete(d.store.dedupe, key)
			count++
		}
	}

	return count, nil
}

func (d *DedupeStore) Count(ctx context.Context) (int64, error) {
	d.store.dedupeMu.RLock()
	defer d.store.dedupeMu.RUnlock()

	now := time.Now()
	var count int64

	for _, seen := range d.store.dedupe {
		if now.Before(seen.ExpiresAt) {
			count++
		}
	}

	return count, nil
}
