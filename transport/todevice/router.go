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
	"context"
	"fmt"
	"time"

	"github.com/sage-x-project/sas-verify/internal/metrics"
	"github.com/sage-x-project/sas-verify/internal/verifylog"
	"github.com/sage-x-project/sas-verify/sasstate"
	"github.com/sage-x-project/sas-verify/store"
)

// Router dispatches inbound Envelopes to the sasstate.Flow they belong to,
// creating one on m.key.verification.start, checkpointing flow state after
// every transition, and sending the transition's outbound event back to
// the peer over a Client. It is the component-map's bridge between the
// transport and the protocol core: it knows event types, not SAS crypto.
type Router struct {
	account  sasstate.Account
	identity store.IdentityLookup
	flows    store.FlowStore
	dedupe   store.DedupeStore
	registry *Registry
	clients  func(peerUserID, peerDeviceID string) (*Client, error)

	flowTTL time.Duration
	clock   sasstate.Clock
	logger  verifylog.Logger
}

// RouterConfig configures a new Router.
type RouterConfig struct {
	Account  sasstate.Account
	Identity store.IdentityLookup
	Flows    store.FlowStore
	Dedupe   store.DedupeStore

	// Clients resolves the to-device client used to deliver an outbound
	// event to a specific peer device.
	Clients func(peerUserID, peerDeviceID string) (*Client, error)

	FlowTTL time.Duration
	Clock   sasstate.Clock
	Logger  verifylog.Logger
}

// NewRouter builds a Router from cfg, filling in defaults.
func NewRouter(cfg RouterConfig) *Router {
	if cfg.FlowTTL <= 0 {
		cfg.FlowTTL = sasstate.MaxAge
	}
	if cfg.Clock == nil {
		cfg.Clock = sasstate.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = verifylog.GetDefaultLogger()
	}
	return &Router{
		account:  cfg.Account,
		identity: cfg.Identity,
		flows:    cfg.Flows,
		dedupe:   cfg.Dedupe,
		registry: NewRegistry(),
		clients:  cfg.Clients,
		flowTTL:  cfg.FlowTTL,
		clock:    cfg.Clock,
		logger:   cfg.Logger,
	}
}

// Handle is the Handler a Server dispatches inbound envelopes to.
func (r *Router) Handle(ctx context.Context, env *Envelope) error {
	collector := metrics.GetGlobalCollector()
	start := time.Now()
	err := r.dispatch(ctx, env)
	collector.RecordTransition(time.Since(start))
	return err
}

func (r *Router) dispatch(ctx context.Context, env *Envelope) error {
	switch env.Type {
	case EventStart:
		return r.handleStart(ctx, env)
	case EventAccept:
		return r.handleAccept(ctx, env)
	case EventKey:
		return r.handleKey(ctx, env)
	case EventMac:
		return r.handleMac(ctx, env)
	case EventDone:
		return r.handleDone(ctx, env)
	case EventCancel:
		return r.handleCancel(ctx, env)
	default:
		return fmt.Errorf("todevice: unknown event type %q", env.Type)
	}
}

func (r *Router) handleStart(ctx context.Context, env *Envelope) error {
	var content sasstate.StartContent
	if err := env.Decode(&content); err != nil {
		return fmt.Errorf("decode start content: %w", err)
	}

	key, err := flowKey(content.TransactionID)
	if err != nil {
		return err
	}
	if err := r.checkReplay(ctx, key, "start"); err != nil {
		return err
	}

	identityCtx, err := r.buildIdentity(ctx, env.SenderUserID, content.FromDevice)
	if err != nil {
		return fmt.Errorf("resolve peer identity: %w", err)
	}

	flow, err := sasstate.FromStartEvent(sasstate.NewToDeviceFlowID(content.TransactionID), identityCtx, sasstate.DefaultCatalog(), env.SenderUserID, content, false, sasstate.Options{Clock: r.clock, Logger: r.logger})
	if err != nil {
		return fmt.Errorf("apply start event: %w", err)
	}

	r.registry.Put(flow)
	return r.checkpoint(ctx, flow)
}

func (r *Router) handleAccept(ctx context.Context, env *Envelope) error {
	var content sasstate.AcceptContent
	if err := env.Decode(&content); err != nil {
		return fmt.Errorf("decode accept content: %w", err)
	}

	key, err := flowKey(content.TransactionID)
	if err != nil {
		return err
	}
	if err := r.checkReplay(ctx, key, "accept"); err != nil {
		return err
	}

	flow, ok := r.registry.Get(key)
	if !ok {
		return fmt.Errorf("todevice: accept for unknown flow %s", key)
	}

	next, keyMsg, err := flow.Accept(env.SenderUserID, content)
	if err != nil {
		r.registry.Put(next)
		_ = r.checkpoint(ctx, next)
		return fmt.Errorf("apply accept event: %w", err)
	}

	r.registry.Put(next)
	if err := r.checkpoint(ctx, next); err != nil {
		return err
	}
	return r.send(ctx, next, EventKey, keyMsg)
}

func (r *Router) handleKey(ctx context.Context, env *Envelope) error {
	var content sasstate.KeyContent
	if err := env.Decode(&content); err != nil {
		return fmt.Errorf("decode key content: %w", err)
	}

	key, err := flowKey(content.TransactionID)
	if err != nil {
		return err
	}
	if err := r.checkReplay(ctx, key, "key"); err != nil {
		return err
	}

	flow, ok := r.registry.Get(key)
	if !ok {
		return fmt.Errorf("todevice: key for unknown flow %s", key)
	}

	next, err := flow.ReceiveKey(env.SenderUserID, content)
	r.registry.Put(next)
	if err != nil {
		_ = r.checkpoint(ctx, next)
		return fmt.Errorf("apply key event: %w", err)
	}
	return r.checkpoint(ctx, next)
}

func (r *Router) handleMac(ctx context.Context, env *Envelope) error {
	var content sasstate.MacContent
	if err := env.Decode(&content); err != nil {
		return fmt.Errorf("decode mac content: %w", err)
	}

	key, err := flowKey(content.TransactionID)
	if err != nil {
		return err
	}
	if err := r.checkReplay(ctx, key, "mac"); err != nil {
		return err
	}

	flow, ok := r.registry.Get(key)
	if !ok {
		return fmt.Errorf("todevice: mac for unknown flow %s", key)
	}

	knownKeys, err := r.identity.KnownKeys(ctx, env.SenderUserID, flow.Peer().DeviceID)
	if err != nil {
		return fmt.Errorf("resolve known keys: %w", err)
	}

	collector := metrics.GetGlobalCollector()
	macStart := time.Now()
	next, err := flow.ReceiveMac(env.SenderUserID, content, knownKeys)
	collector.RecordMacValidation(err == nil, time.Since(macStart))

	r.registry.Put(next)
	if err != nil {
		_ = r.checkpoint(ctx, next)
		return fmt.Errorf("apply mac event: %w", err)
	}
	return r.checkpoint(ctx, next)
}

func (r *Router) handleDone(ctx context.Context, env *Envelope) error {
	var content sasstate.DoneContent
	if err := env.Decode(&content); err != nil {
		return fmt.Errorf("decode done content: %w", err)
	}
	if content.RelatesTo == nil {
		return fmt.Errorf("todevice: done event without m.relates_to is a no-op for to-device flows")
	}

	key, err := flowKey(content.RelatesTo.EventID)
	if err != nil {
		return err
	}
	if err := r.checkReplay(ctx, key, "done"); err != nil {
		return err
	}

	flow, ok := r.registry.Get(key)
	if !ok {
		return fmt.Errorf("todevice: done for unknown flow %s", key)
	}

	next, err := flow.ReceiveDone(env.SenderUserID, key)
	r.registry.Put(next)
	if err != nil {
		_ = r.checkpoint(ctx, next)
		return fmt.Errorf("apply done event: %w", err)
	}
	return r.checkpoint(ctx, next)
}

func (r *Router) handleCancel(ctx context.Context, env *Envelope) error {
	var content sasstate.CancelContent
	if err := env.Decode(&content); err != nil {
		return fmt.Errorf("decode cancel content: %w", err)
	}

	key, err := flowKey(content.TransactionID)
	if err != nil {
		return err
	}

	flow, ok := r.registry.Get(key)
	if !ok {
		// Peer cancelled a flow we never created a local record for; nothing to fold in.
		return nil
	}

	next, _ := flow.Cancel(content.Code, content.Reason)
	r.registry.Put(next)
	r.registry.Delete(key)
	return r.checkpoint(ctx, next)
}

func (r *Router) buildIdentity(ctx context.Context, peerUserID, peerDeviceID string) (sasstate.IdentityContext, error) {
	peer, err := r.identity.LookupDevice(ctx, peerUserID, peerDeviceID)
	if err != nil {
		return sasstate.IdentityContext{}, err
	}
	peerIdentity, err := r.identity.LookupCrossSigning(ctx, peerUserID)
	if err != nil {
		return sasstate.IdentityContext{}, err
	}
	return sasstate.IdentityContext{
		Account:      r.account,
		Peer:         peer,
		PeerIdentity: peerIdentity,
	}, nil
}

func (r *Router) checkReplay(ctx context.Context, flowID, kind string) error {
	eventKey := flowID + ":" + kind
	seen, err := r.dedupe.IsSeen(ctx, eventKey)
	if err != nil {
		return fmt.Errorf("check replay: %w", err)
	}
	if seen {
		return fmt.Errorf("todevice: duplicate %s event for flow %s", kind, flowID)
	}
	return r.dedupe.CheckAndStore(ctx, eventKey, flowID, r.clock.Now().Add(r.flowTTL))
}

func (r *Router) checkpoint(ctx context.Context, flow *sasstate.Flow) error {
	now := r.clock.Now()
	peer := flow.Peer()
	record := &store.FlowRecord{
		ID:           flow.ID().String(),
		OurUserID:    r.account.UserID,
		PeerUserID:   peer.UserID,
		PeerDeviceID: peer.DeviceID,
		Phase:        flow.Phase().String(),
		CreatedAt:    now,
		ExpiresAt:    now.Add(r.flowTTL),
		LastEventAt:  now,
	}

	existing, err := r.flows.Get(ctx, record.ID)
	if err != nil {
		return r.flows.Create(ctx, record)
	}
	existing.Phase = record.Phase
	existing.LastEventAt = now
	return r.flows.Update(ctx, existing)
}

// send marshals an outbound event for flow and delivers it to the peer
// device over the client resolved for that device.
func (r *Router) send(ctx context.Context, flow *sasstate.Flow, eventType EventType, content interface{}) error {
	env, err := NewEnvelope(eventType, r.account.UserID, content)
	if err != nil {
		return fmt.Errorf("build outbound envelope: %w", err)
	}

	peer := flow.Peer()
	client, err := r.clients(peer.UserID, peer.DeviceID)
	if err != nil {
		return fmt.Errorf("resolve peer client: %w", err)
	}

	collector := metrics.GetGlobalCollector()
	sendStart := time.Now()
	sendErr := client.Send(ctx, env)
	collector.RecordTransportSend(sendErr == nil, time.Since(sendStart))
	if sendErr != nil {
		return fmt.Errorf("send %s to %s/%s: %w", eventType, peer.UserID, peer.DeviceID, sendErr)
	}
	return nil
}
