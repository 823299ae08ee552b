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

// Package todevice carries m.key.verification.* events between two devices
// over a persistent WebSocket connection, standing in for the homeserver
// to-device transport a real Matrix client would use. It knows nothing
// about SAS semantics; it only moves typed envelopes and dispatches them
// to a handler keyed by event type.
package todevice

import "encoding/json"

// EventType names one of the six verification event kinds a flow can
// receive (see sasstate.Flow's transition methods).
type EventType string

const (
	EventStart  EventType = "m.key.verification.start"
	EventAccept EventType = "m.key.verification.accept"
	EventKey    EventType = "m.key.verification.key"
	EventMac    EventType = "m.key.verification.mac"
	EventDone   EventType = "m.key.verification.done"
	EventCancel EventType = "m.key.verification.cancel"
)

// Envelope is the wire format for a single to-device verification event.
type Envelope struct {
	Type         EventType       `json:"type"`
	SenderUserID string          `json:"sender_user_id"`
	Content      json.RawMessage `json:"content"`
}

// Decode unmarshals the envelope's content into v.
func (e *Envelope) Decode(v interface{}) error {
	return json.Unmarshal(e.Content, v)
}

// NewEnvelope builds an envelope carrying content, marshalling it to JSON.
func NewEnvelope(eventType EventType, senderUserID string, content interface{}) (*Envelope, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return &Envelope{Type: eventType, SenderUserID: senderUserID, Content: raw}, nil
}
