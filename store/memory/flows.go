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

// FlowStore implements store.FlowStore.
type FlowStore struct {
	store *Store
}

func (f *FlowStore) Create(ctx context.Context, record *store.FlowRecord) error {
	f.store.flowsMu.Lock()
	defer f.store.flowsMu.Unlock()

	if _, exists := f.store.flows[record.ID]; exists {
		return fmt.Errorf("flow already exists: %s", record.ID)
	}

	recordCopy := *record
	if record.Metadata != nil {
		recordCopy.Metadata = make(map[string]interface{})
		for k, v := range record.Metadata {
			recordCopy.Metadata[k] = v
		}
	}

	f.store.flows[record.ID] = &recordCopy
	return nil
}

func (f *FlowStore) Get(ctx context.Context, id string) (*store.FlowRecord, error) {
	f.store.flowsMu.RLock()
	defer f.store.flowsMu.RUnlock()

	record, exists := f.store.flows[id]
	if !exists {
		return nil, fmt.Errorf("flow not found: %s", id)
	}

	if time.Now().After(record.ExpiresAt) {
		return nil, fmt.Errorf("flow expired: %s", id)
	}

	recordCopy := *record
	return &recordCopy, nil
}

func (f *FlowStore) Update(ctx context.Context, record *store.FlowRecord) error {
	f.store.flowsMu.Lock()
	defer f.store.flowsMu.Unlock()

	if _, exists := f.store.flows[record.ID]; !exists {
		return fmt.Errorf("flow not found: %s", record.ID)
	}

	recordCopy := *record
	f.store.flows[record.ID] = &recordCopy
	return nil
}

func (f *FlowStore) Delete(ctx context.Context, id string) error {
	f.store.flowsMu.Lock()
	defer f.store.flowsMu.Unlock()

	if _, exists := f.store.flows[id]; !exists {
		return fmt.Errorf("flow not found: %s", id)
	}

	delete(f.store.flows, id)
	return nil
}

func (f *FlowStore) DeleteExpired(ctx context.Context) (int64, error) {
	f.store.flowsMu.Lock()
	defer f.store.flowsMu.Unlock()

	now := time.Now()
	var count int64

	for id, record := range f.store.flows {
		if now.After(record.ExpiresAt) {
			delete(f.store.flows, id)
			count++
		}
	}

	return count, nil
}

func (f *FlowStore) List(ctx context.Context, peerUserID string, limit, offset int) ([]*store.FlowRecord, error) {
	f.store.flowsMu.RLock()
	defer f.store.flowsMu.RUnlock()

	var records []*store.FlowRecord
	now := time.Now()

	for _, record := range f.store.flows {
		if record.PeerUserID == peerUserID && now.Before(record.ExpiresAt) {
			recordCopy := *record
			records = append(records, &recordCopy)
		}
	}

	if offset >= len(records) {
		return []*store.FlowRecord{}, nil
	}

	end := offset + limit
	if end > len(records) {
		end = len(records)
	}

	return records[offset:end], nil
}

func (f *FlowStore) UpdateActivity(ctx context.Context, id string) error {
	f.store.flowsMu.Lock()
	defer f.store.flowsMu.Unlock()

	record, exists := f.store.flows[id]
	if !exists {
		return fmt.Errorf("flow not found: %s", id)
	}

	record.LastEventAt = time.Now()
	return nil
}

func (f *FlowStore) Count(ctx context.Context) (int64, error) {
	f.store.flowsMu.RLock()
	defer f.store.flowsMu.RUnlock()

	now := time.Now()
	var count int64

	for _, record := range f.store.flows {
		if now.Before(record.ExpiresAt) {
			count++
		}
	}

	return count, nil
}
