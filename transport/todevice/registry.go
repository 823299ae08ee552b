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

package todevice

import (
	"fmt"
	"sync"

	"github.com/sage-x-project/sas-verify/sasstate"
)

// Registry holds the in-flight flows a Router dispatches events against,
// keyed by their flow id string form.
type Registry struct {
	mu    sync.RWMutex
	flows map[string]*sasstate.Flow
}

// NewRegistry creates an empty flow registry.
func NewRegistry() *Registry {
	return &Registry{flows: make(map[string]*sasstate.Flow)}
}

// Put registers or replaces the flow under its own id.
func (r *Registry) Put(flow *sasstate.Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[flow.ID().String()] = flow
}

// Get returns the flow registered under key, if any.
func (r *Registry) Get(key string) (*sasstate.Flow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flows[key]
	return f, ok
}

// Delete removes the flow registered under key.
func (r *Registry) Delete(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flows, key)
}

// Count returns the number of registered flows.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.flows)
}

// flowKey derives the registry key for an inbound event. to-device
// verification events are always keyed by their transaction id; the
// m.relates_to form belongs to the in-room request flow this transport
// does not carry.
func flowKey(transactionID string) (string, error) {
	if transactionID == "" {
		return "", fmt.Errorf("todevice: event carries no transaction id")
	}
	return sasstate.NewToDeviceFlowID(transactionID).String(), nil
}
