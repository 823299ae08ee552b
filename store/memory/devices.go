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

	"github.com/sage-x-project/sas-verify/store"
)

// DeviceStore implements store.DeviceStore.
type DeviceStore struct {
	store *Store
}

func (d *DeviceStore) Create(ctx context.Context, device *store.DeviceRecord) error {
	d.store.devicesMu.Lock()
	defer d.store.devicesMu.Unlock()

	key := deviceKey(device.UserID, device.DeviceID)
	if _, exists := d.store.devices[key]; exists {
		return fmt.Errorf("device already exists: %s", key)
	}

	deviceCopy := *device
	if device.Ed25519Key != nil {
		deviceCopy.Ed25519Key = append([]byte(nil), device.Ed25519Key...)
	}
	if device.Curve25519Key != nil {
		deviceCopy.Curve25519Key = append([]byte(nil), device.Curve25519Key...)
	}

	d.store.devices[key] = &deviceCopy
	return nil
}

func (d *DeviceStore) Get(ctx context.Context, userID, deviceID string) (*store.DeviceRecord, error) {
	d.store.devicesMu.RLock()
	defer d.store.devicesMu.RUnlock()

	device, exists := d.store.devices[deviceKey(userID, deviceID)]
	if !exists {
		return nil, fmt.Errorf("device not found: %s/%s", userID, deviceID)
	}

	deviceCopy := *device
	return &deviceCopy, nil
}

func (d *DeviceStore) Update(ctx context.Context, device *store.DeviceRecord) error {
	d.store.devicesMu.Lock()
	defer d.store.devicesMu.Unlock()

	key := deviceKey(device.UserID, device.DeviceID)
	if _, exists := d.store.devices[key]; !exists {
		return fmt.Errorf("device not found: %s", key)
	}

	deviceCopy := *device
	d.store.devices[key] = &deviceCopy
	return nil
}

func (d *DeviceStore) Delete(ctx context.Context, userID, deviceID string) error {
	d.store.devicesMu.Lock()
	defer d.store.devicesMu.Unlock()

	key := deviceKey(userID, deviceID)
	if _, exists := d.store.devices[key]; !exists {
		return fmt.Errorf("device not found: %s", key)
	}

	delete(d.store.devices, key)
	return nil
}

func (d *DeviceStore) ListByUser(ctx context.Context, userID string) ([]*store.DeviceRecord, error) {
	d.store.devicesMu.RLock()
	defer d.store.devicesMu.RUnlock()

	var devices []*store.DeviceRecord

	for _, device := range d.store.devices {
		if device.UserID == userID {
			deviceCopy := *device
			devices = append(devices, &deviceCopy)
		}
	}

	return devices, nil
}

func (d *DeviceStore) Revoke(ctx context.Context, userID, deviceID string) error {
	d.store.devicesMu.Lock()
	defer d.store.devicesMu.Unlock()

	device, exists := d.store.devices[deviceKey(userID, deviceID)]
	if !exists {
		return fmt.Errorf("device not found: %s/%s", userID, deviceID)
	}

	device.Revoked = true
	return nil
}

func (d *DeviceStore) IsRevoked(ctx context.Context, userID, deviceID string) (bool, error) {
	d.store.devicesMu.RLock()
	defer d.store.devicesMu.RUnlock()

	device, exists := d.store.devices[deviceKey(userID, deviceID)]
	if !exists {
		return false, fmt.Errorf("device not found: %s/%s", userID, deviceID)
	}

	return device.Revoked, nil
}
