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
	"sync"

	"github.com/sage-x-project/sas-verify/store"
)

// Store implements store.Store with in-memory maps. It is meant for
// tests and single-process demos (see cmd/sasverify), not production
// durability.
type Store struct {
	flows   map[string]*store.FlowRecord
	dedupe  map[string]*store.SeenEvent
	devices map[string]*store.DeviceRecord

	flowsMu   sync.RWMutex
	dedupeMu  sync.RWMutex
	devicesMu sync.RWMutex

	flowStore   *FlowStore
	dedupeStore *DedupeStore
	deviceStore *DeviceStore
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	s := &Store{
		flows:   make(map[string]*store.FlowRecord),
		dedupe:  make(map[string]*store.SeenEvent),
		devices: make(map[string]*store.DeviceRecord),
	}

	s.flowStore = &FlowStore{store: s}
	s.dedupeStore = &DedupeStore{store: s}
	s.deviceStore = &DeviceStore{store: s}

	return s
}

// FlowStore returns the flow checkpoint store.
func (s *Store) FlowStore() store.FlowStore {
	return s.flowStore
}

// DedupeStore returns the event-dedupe store.
func (s *Store) DedupeStore() store.DedupeStore {
	return s.dedupeStore
}

// DeviceStore returns the device identity store.
func (s *Store) DeviceStore() store.DeviceStore {
	return s.deviceStore
}

// Close closes the store (no-op for memory store).
func (s *Store) Close() error {
	return nil
}

// Ping checks the store (always succeeds for memory store).
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Clear removes all data (useful for testing).
func (s *Store) Clear() {
	s.flowsMu.Lock()
	s.flows = make(map[string]*store.FlowRecord)
	s.flowsMu.Unlock()

	s.dedupeMu.Lock()
	s.dedupe = make(map[string]*store.SeenEvent)
	s.dedupeMu.Unlock()

	s.devicesMu.Lock()
	s.devices = make(map[string]*store.DeviceRecord)
	s.devicesMu.Unlock()
}

func deviceKey(userID, deviceID string) string {
	return userID + "|" + deviceID
}
