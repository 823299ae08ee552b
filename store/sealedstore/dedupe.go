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
	"fmt"
	"sync"
	"time"
)

// dedupeCache is a TTL-based replay cache for inbound verification event
// keys, implementing store.DedupeStore without sealing: an event key is a
// flow id plus an event kind, not sensitive plaintext worth encrypting.
type dedupeCache struct {
	ttl  time.Duration
	data sync.Map // eventKey -> entry
	tick *time.Ticker
	stop chan struct{}
}

type dedupeEntry struct {
	flowID    string
	expiresAt time.Time
}

func newDedupeCache(ttl time.Duration) *dedupeCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	c := &dedupeCache{
		ttl:  ttl,
		stop: make(chan struct{}),
		tick: time.NewTicker(time.Minute),
	}
	go c.gcLoop()
	return c
}

func (c *dedupeCache) CheckAndStore(ctx context.Context, eventKey string, flowID string, expiresAt time.Time) error {
	if _, loaded := c.data.LoadOrStore(eventKey, dedupeEntry{flowID: flowID, expiresAt: expiresAt}); loaded {
		return fmt.Errorf("event already seen: %s", eventKey)
	}
	return nil
}

func (c *dedupeCache) IsSeen(ctx context.Context, eventKey string) (bool, error) {
	v, ok := c.data.Load(eventKey)
	if !ok {
		return false, nil
	}
	entry := v.(dedupeEntry)
	if time.Now().After(entry.expiresAt) {
		return false, nil
	}
	return true, nil
}

func (c *dedupeCache) DeleteExpired(ctx context.Context) (int64, error) {
	var count int64
	now := time.Now()
	c.data.Range(func(k, v any) bool {
		if now.After(v.(dedupeEntry).expiresAt) {
			c.data.Delete(k)
			count++
		}
		return true
	})
	return count, nil
}

func (c *dedupeCache) Count(ctx context.Context) (int64, error) {
	var count int64
	now := time.Now()
	c.data.Range(func(_, v any) bool {
		if now.Before(v.(dedupeEntry).expiresAt) {
			count++
		}
		return true
	})
	return count, nil
}

func (c *dedupeCache) close() {
	close(c.stop)
	if c.tick != nil {
		c.tick.Stop()
	}
}

func (c *dedupeCache) gcLoop() {
	for {
		select {
		case <-c.tick.C:
			_, _ = c.DeleteExpired(context.Background())
		case <-c.stop:
			return
		}
	}
}
