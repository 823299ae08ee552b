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

package store

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"

	"github.com/sage-x-project/sas-verify/sasstate"
)

// IdentityLookup resolves a peer device's published identity keys so a
// caller can build a sasstate.IdentityContext without reaching into a
// DeviceStore's record shape directly. A production deployment backs this
// with the homeserver's /keys/query endpoint; this implementation backs it
// with a locally cached DeviceStore instead.
type IdentityLookup interface {
	// LookupDevice resolves userID/deviceID to its published identity keys.
	LookupDevice(ctx context.Context, userID, deviceID string) (sasstate.Device, error)

	// LookupCrossSigning resolves a user's published cross-signing master
	// key, if any device record carries one.
	LookupCrossSigning(ctx context.Context, userID string) (*sasstate.CrossSigningIdentity, error)

	// KnownKeys builds the key-id -> base64 key map sasstate.ValidateMAC
	// expects, covering both the device's Ed25519 key and its user's
	// cross-signing master key when present.
	KnownKeys(ctx context.Context, userID, deviceID string) (map[string]string, error)
}

// DeviceIdentityLookup implements IdentityLookup on top of a DeviceStore.
type DeviceIdentityLookup struct {
	devices DeviceStore
}

// NewDeviceIdentityLookup wraps devices as an IdentityLookup.
func NewDeviceIdentityLookup(devices DeviceStore) *DeviceIdentityLookup {
	return &DeviceIdentityLookup{devices: devices}
}

func (l *DeviceIdentityLookup) LookupDevice(ctx context.Context, userID, deviceID string) (sasstate.Device, error) {
	rec, err := l.devices.Get(ctx, userID, deviceID)
	if err != nil {
		return sasstate.Device{}, fmt.Errorf("lookup device %s/%s: %w", userID, deviceID, err)
	}
	if rec.Revoked {
		return sasstate.Device{}, fmt.Errorf("device %s/%s is revoked", userID, deviceID)
	}

	var curve25519 [32]byte
	copy(curve25519[:], rec.Curve25519Key)

	return sasstate.Device{
		UserID:        rec.UserID,
		DeviceID:      rec.DeviceID,
		Ed25519Key:    ed25519.PublicKey(rec.Ed25519Key),
		Curve25519Key: curve25519,
	}, nil
}

func (l *DeviceIdentityLookup) LookupCrossSigning(ctx context.Context, userID string) (*sasstate.CrossSigningIdentity, error) {
	records, err := l.devices.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup cross-signing identity for %s: %w", userID, err)
	}
	for _, rec := range records {
		if rec.CrossSigningKeyID == "" || len(rec.CrossSigningKey) == 0 {
			continue
		}
		return &sasstate.CrossSigningIdentity{
			UserID:      userID,
			MasterKeyID: rec.CrossSigningKeyID,
			MasterKey:   ed25519.PublicKey(rec.CrossSigningKey),
		}, nil
	}
	return nil, nil
}

func (l *DeviceIdentityLookup) KnownKeys(ctx context.Context, userID, deviceID string) (map[string]string, error) {
	keys := make(map[string]string)

	device, err := l.LookupDevice(ctx, userID, deviceID)
	if err != nil {
		return nil, err
	}
	keys["ed25519:"+deviceID] = base64.RawStdEncoding.EncodeToString(device.Ed25519Key)

	crossSigning, err := l.LookupCrossSigning(ctx, userID)
	if err != nil {
		return nil, err
	}
	if crossSigning != nil {
		keys["ed25519:"+crossSigning.MasterKeyID] = base64.RawStdEncoding.EncodeToString(crossSigning.MasterKey)
	}

	return keys, nil
}
