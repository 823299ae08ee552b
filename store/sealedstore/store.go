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

package sealedstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sage-x-project/sas-verify/store"
)

// Store implements store.Store over sealed in-memory blobs. Each record is
// JSON-marshalled then sealed with a kind-scoped Sealer before it ever
// touches the map; Get/List unseal and unmarshal on the way out.
type Store struct {
	flowSealer   *Sealer
	deviceSealer *Sealer

	mu      sync.RWMutex
	flows   map[string][]byte
	devices map[string][]byte

	dedupe *dedupeCache
}

// NewStore creates a sealed in-memory store keyed by masterKey.
func NewStore(masterKey []byte, dedupeTTL time.Duration) (*Store, error) {
	flowSealer, err := NewSealer(masterKey, "flow-record")
	if err != nil {
		return nil, err
	}
	deviceSealer, err := NewSealer(masterKey, "device-record")
	if err != nil {
		return nil, err
	}

	return &Store{
		flowSealer:   flowSealer,
		deviceSealer: deviceSealer,
		flows:        make(map[string][]byte),
		devices:      make(map[string][]byte),
		dedupe:       newDedupeCache(dedupeTTL),
	}, nil
}

func (s *Store) FlowStore() store.FlowStore     { return (*sealedFlowStore)(s) }
func (s *Store) DedupeStore() store.DedupeStore { return s.dedupe }
func (s *Store) DeviceStore() store.DeviceStore { return (*sealedDeviceStore)(s) }

// Close stops the dedupe cache's background sweep.
func (s *Store) Close() error {
	s.dedupe.close()
	return nil
}

// Ping always succeeds; there is no external dependency to probe.
func (s *Store) Ping(ctx context.Context) error { return nil }

type sealedFlowStore Store

func (f *sealedFlowStore) seal(record *store.FlowRecord) ([]byte, error) {
	plaintext, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("sealedstore: marshal flow: %w", err)
	}
	return f.flowSealer.Seal(plaintext)
}

func (f *sealedFlowStore) unseal(sealed []byte) (*store.FlowRecord, error) {
	plaintext, err := f.flowSealer.Open(sealed)
	if err != nil {
		return nil, err
	}
	var record store.FlowRecord
	if err := json.Unmarshal(plaintext, &record); err != nil {
		return nil, fmt.Errorf("sealedstore: unmarshal flow: %w", err)
	}
	return &record, nil
}

func (f *sealedFlowStore) Create(ctx context.Context, record *store.FlowRecord) error {
	sealed, err := f.seal(record)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.flows[record.ID]; exists {
		return fmt.Errorf("flow already exists: %s", record.ID)
	}
	f.flows[record.ID] = sealed
	return nil
}

func (f *sealedFlowStore) Get(ctx context.Context, id string) (*store.FlowRecord, error) {
	f.mu.RLock()
	sealed, exists := f.flows[id]
	f.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("flow not found: %s", id)
	}

	record, err := f.unseal(sealed)
	if err != nil {
		return nil, err
	}
	if time.Now().After(record.ExpiresAt) {
		return nil, fmt.Errorf("flow expired: %s", id)
	}
	return record, nil
}

func (f *sealedFlowStore) Update(ctx context.Context, record *store.FlowRecord) error {
	sealed, err := f.seal(record)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.flows[record.ID]; !exists {
		return fmt.Errorf("flow not found: %s", record.ID)
	}
	f.flows[record.ID] = sealed
	return nil
}

func (f *sealedFlowStore) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.flows[id]; !exists {
		return fmt.Errorf("flow not found: %s", id)
	}
	delete(f.flows, id)
	return nil
}

func (f *sealedFlowStore) DeleteExpired(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for id, sealed := range f.flows {
		record, err := f.unseal(sealed)
		if err != nil || time.Now().After(record.ExpiresAt) {
			delete(f.flows, id)
			count++
		}
	}
	return count, nil
}

func (f *sealedFlowStore) List(ctx context.Context, peerUserID string, limit, offset int) ([]*store.FlowRecord, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var records []*store.FlowRecord
	now := time.Now()
	for _, sealed := range f.flows {
		record, err := f.unseal(sealed)
		if err != nil {
			continue
		}
		if record.PeerUserID == peerUserID && now.Before(record.ExpiresAt) {
			records = append(records, record)
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

func (f *sealedFlowStore) UpdateActivity(ctx context.Context, id string) error {
	record, err := f.Get(ctx, id)
	if err != nil {
		return err
	}
	record.LastEventAt = time.Now()
	return f.Update(ctx, record)
}

func (f *sealedFlowStore) Count(ctx context.Context) (int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var count int64
	now := time.Now()
	for _, sealed := range f.flows {
		record, err := f.unseal(sealed)
		if err == nil && now.Before(record.ExpiresAt) {
			count++
		}
	}
	return count, nil
}

type sealedDeviceStore Store

func (d *sealedDeviceStore) seal(device *store.DeviceRecord) ([]byte, error) {
	plaintext, err := json.Marshal(device)
	if err != nil {
		return nil, fmt.Errorf("sealedstore: marshal device: %w", err)
	}
	return d.deviceSealer.Seal(plaintext)
}

func (d *sealedDeviceStore) unseal(sealed []byte) (*store.DeviceRecord, error) {
	plaintext, err := d.deviceSealer.Open(sealed)
	if err != nil {
		return nil, err
	}
	var device store.DeviceRecord
	if err := json.Unmarshal(plaintext, &device); err != nil {
		return nil, fmt.Errorf("sealedstore: unmarshal device: %w", err)
	}
	return &device, nil
}

func (d *sealedDeviceStore) Create(ctx context.Context, device *store.DeviceRecord) error {
	key := deviceKey(device.UserID, device.DeviceID)
	sealed, err := d.seal(device)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.devices[key]; exists {
		return fmt.Errorf("device already exists: %s", key)
	}
	d.devices[key] = sealed
	return nil
}

func (d *sealedDeviceStore) Get(ctx context.Context, userID, deviceID string) (*store.DeviceRecord, error) {
	key := deviceKey(userID, deviceID)
	d.mu.RLock()
	sealed, exists := d.devices[key]
	d.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("device not found: %s", key)
	}
	return d.unseal(sealed)
}

func (d *sealedDeviceStore) Update(ctx context.Context, device *store.DeviceRecord) error {
	key := deviceKey(device.UserID, device.DeviceID)
	sealed, err := d.seal(device)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.devices[key]; !exists {
		return fmt.Errorf("device not found: %s", key)
	}
	d.devices[key] = sealed
	return nil
}

func (d *sealedDeviceStore) Delete(ctx context.Context, userID, deviceID string) error {
	key := deviceKey(userID, deviceID)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.devices[key]; !exists {
		return fmt.Errorf("device not found: %s", key)
	}
	delete(d.devices, key)
	return nil
}

func (d *sealedDeviceStore) ListByUser(ctx context.Context, userID string) ([]*store.DeviceRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var devices []*store.DeviceRecord
	for _, sealed := range d.devices {
		device, err := d.unseal(sealed)
		if err != nil {
			continue
		}
		if device.UserID == userID {
			devices = append(devices, device)
		}
	}
	return devices, nil
}

func (d *sealedDeviceStore) Revoke(ctx context.Context, userID, deviceID string) error {
	device, err := d.Get(ctx, userID, deviceID)
	if err != nil {
		return err
	}
	device.Revoked = true
	return d.Update(ctx, device)
}

func (d *sealedDeviceStore) IsRevoked(ctx context.Context, userID, deviceID string) (bool, error) {
	device, err := d.Get(ctx, userID, deviceID)
	if err != nil {
		return false, err
	}
	return device.Revoked, nil
}

func deviceKey(userID, deviceID string) string {
	return userID + "|" + deviceID
}
