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

import "time"

// FlowRecord is a checkpointed snapshot of an in-flight sasstate.Flow,
// persisted so a verification can survive a process restart between
// inbound events. The core state machine itself never persists; this is
// the ambient layer's optional durability for the flow-wide fields of
// spec §3 plus the current phase name.
type FlowRecord struct {
	ID           string                 `json:"id"` // flow id string form (sasstate.FlowID.String())
	OurUserID    string                 `json:"our_user_id"`
	PeerUserID   string                 `json:"peer_user_id"`
	PeerDeviceID string                 `json:"peer_device_id"`
	Phase        string                 `json:"phase"`
	CreatedAt    time.Time              `json:"created_at"`
	ExpiresAt    time.Time              `json:"expires_at"`
	LastEventAt  time.Time              `json:"last_event_at"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// SeenEvent records that a specific inbound verification event has already
// been applied to a flow, so an at-least-once transport's redelivery of
// the same m.key.verification.* event doesn't re-run its transition.
type SeenEvent struct {
	EventKey  string    `json:"event_key"` // e.g. flow id + event kind + content hash
	FlowID    string    `json:"flow_id"`
	SeenAt    time.Time `json:"seen_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// DeviceRecord is a cached copy of a peer device's published identity keys
// and optional cross-signing master key, backing the §6 "Identity lookup
// contract" the core's IdentityContext is built from.
type DeviceRecord struct {
	UserID            string    `json:"user_id"`
	DeviceID          string    `json:"device_id"`
	Ed25519Key        []byte    `json:"ed25519_key"`
	Curve25519Key     []byte    `json:"curve25519_key"`
	CrossSigningKeyID string    `json:"cross_signing_key_id,omitempty"`
	CrossSigningKey   []byte    `json:"cross_signing_key,omitempty"`
	Revoked           bool      `json:"revoked"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
