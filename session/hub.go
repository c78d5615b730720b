// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session

import (
	"fmt"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/counter"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/registry"
)

// repeated anomalies for one fingerprint inside this window are only
// logged at debug level
const (
	anomalyWindow  = 10 * time.Second
	anomalyCleanup = 2 * anomalyWindow
	malformedKey   = "malformed"
)

// PacketHandler - receives an inbound event packet and its fingerprint
//
// for payload events the payload starts after the separator that
// follows the fingerprint text
type PacketHandler func(packet []byte, f fingerprint.Fingerprint)

// RawHandler - receives an inbound replicated value packet unparsed
type RawHandler func(packet []byte)

// Statistics - counters for a hub
type Statistics struct {
	Sent       uint64
	SendErrors uint64
	Received   uint64
	Dropped    uint64
	Anomalies  uint64
}

// Hub - session root
type Hub struct {
	log      *logger.L
	registry *registry.Registry
	sender   channel.Sender
	oracle   authority.Oracle

	noPayload   *channel.Stream[PacketHandler]
	withPayload *channel.Stream[PacketHandler]
	replicated  *channel.Stream[RawHandler]
	teardown    *channel.Stream[func()]
	tornDown    bool

	anomalies *cache.Cache

	sent       counter.Counter
	sendErrors counter.Counter
	received   counter.Counter
	dropped    counter.Counter
	anomaly    counter.Counter
}

// New - create a hub
//
// a nil sender gives an offline hub where every send is a no-op, a nil
// oracle is treated as no active session
func New(reg *registry.Registry, sender channel.Sender, oracle authority.Oracle) *Hub {
	if nil == reg {
		reg = registry.New()
	}
	h := &Hub{
		log:         logger.New("session"),
		registry:    reg,
		sender:      sender,
		oracle:      oracle,
		noPayload:   channel.NewStream[PacketHandler](),
		withPayload: channel.NewStream[PacketHandler](),
		replicated:  channel.NewStream[RawHandler](),
		teardown:    channel.NewStream[func()](),
		anomalies:   cache.New(anomalyWindow, anomalyCleanup),
	}
	h.log.Info("starting…")
	return h
}

// Registry - the fingerprint registry shared by every instance
func (h *Hub) Registry() *registry.Registry {
	return h.registry
}

// Oracle - the identity oracle
func (h *Hub) Oracle() authority.Oracle {
	return h.oracle
}

// Authorise - predicate for a role evaluated against this hub's oracle
func (h *Hub) Authorise(role authority.Role) func() bool {
	return authority.Resolve(role, h.oracle)
}

// IsTornDown - true after Teardown
func (h *Hub) IsTornDown() bool {
	return h.tornDown
}

// Send - hand a packet to the transport
//
// delivery is fire and forget: transport errors are logged and counted
// but never reach the caller
func (h *Hub) Send(packet []byte, id channel.ID, reliability channel.Reliability) {
	if h.tornDown || nil == h.sender {
		return
	}
	err := h.sender.Send(packet, id, reliability)
	if nil != err {
		h.sendErrors.Increment()
		h.log.Warnf("send %s/%s: %d bytes  error: %s", id, reliability, len(packet), err)
		return
	}
	h.sent.Increment()
	h.log.Debugf("sent %s/%s: %q", id, reliability, packet)
}

// SubscribeNoPayload - receive stream for events without payload
func (h *Hub) SubscribeNoPayload(handler PacketHandler) *channel.Subscription {
	return h.noPayload.Subscribe(handler)
}

// SubscribeWithPayload - receive stream for events with payload
func (h *Hub) SubscribeWithPayload(handler PacketHandler) *channel.Subscription {
	return h.withPayload.Subscribe(handler)
}

// SubscribeReplicated - receive stream for replicated values
func (h *Hub) SubscribeReplicated(handler RawHandler) *channel.Subscription {
	return h.replicated.Subscribe(handler)
}

// SubscribeTeardown - called once when the session ends
func (h *Hub) SubscribeTeardown(handler func()) *channel.Subscription {
	return h.teardown.Subscribe(handler)
}

// Deliver - route one inbound packet to the matching receive stream
func (h *Hub) Deliver(p channel.Packet) error {
	if h.tornDown {
		h.log.Debugf("torn down, ignore %s packet", p.Channel)
		return fault.ErrSessionTornDown
	}
	h.received.Increment()

	var (
		f   fingerprint.Fingerprint
		err error
	)
	switch p.Channel {
	case channel.EventNoPayload:
		f, err = channel.ParseBare(p.Data)
	case channel.EventWithPayload:
		f, _, err = channel.Split(p.Data, channel.PayloadSeparator)
	case channel.ReplicatedValue:
		f, _, err = channel.Split(p.Data, channel.ValueSeparator)
	default:
		err = fault.ErrUnknownChannel
	}
	if nil != err {
		h.anomalyf(malformedKey, "malformed %s packet: %q  error: %s", p.Channel, p.Data, err)
		return err
	}

	if !h.registry.IsRegistered(f) {
		h.Anomaly(f, "%s packet for unknown fingerprint: %s", p.Channel, f)
		return fault.ErrInvalidFingerprint
	}

	switch p.Channel {
	case channel.EventNoPayload:
		h.noPayload.Emit(func(handler PacketHandler) { handler(p.Data, f) })
	case channel.EventWithPayload:
		h.withPayload.Emit(func(handler PacketHandler) { handler(p.Data, f) })
	case channel.ReplicatedValue:
		h.replicated.Emit(func(handler RawHandler) { handler(p.Data) })
	}
	return nil
}

// Subscribers - handlers subscribed across every receive stream and
// the teardown stream
func (h *Hub) Subscribers() int {
	return h.noPayload.Len() + h.withPayload.Len() + h.replicated.Len() + h.teardown.Len()
}

// Anomaly - record a dropped inbound packet
//
// the first report for a fingerprint in a window is a warning, repeats
// are debug so a misbehaving peer cannot flood the log
func (h *Hub) Anomaly(f fingerprint.Fingerprint, format string, arguments ...interface{}) {
	h.anomalyf(f.String(), format, arguments...)
}

func (h *Hub) anomalyf(key string, format string, arguments ...interface{}) {
	h.dropped.Increment()
	h.anomaly.Increment()

	message := fmt.Sprintf(format, arguments...)
	if nil == h.anomalies.Add(key, struct{}{}, cache.DefaultExpiration) {
		h.log.Warn(message)
	} else {
		h.log.Debug(message)
	}
}

// Teardown - end the session
//
// every subscribed instance is told once, then sends and deliveries
// become no-ops; calling again does nothing
func (h *Hub) Teardown() {
	if h.tornDown {
		return
	}
	h.log.Info("teardown")
	n := h.teardown.Emit(func(handler func()) { handler() })
	h.tornDown = true
	h.log.Infof("teardown notified: %d", n)
	h.log.Flush()
}

// Statistics - snapshot of the counters
func (h *Hub) Statistics() Statistics {
	return Statistics{
		Sent:       h.sent.Uint64(),
		SendErrors: h.sendErrors.Uint64(),
		Received:   h.received.Uint64(),
		Dropped:    h.dropped.Uint64(),
		Anomalies:  h.anomaly.Uint64(),
	}
}
