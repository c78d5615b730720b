// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package loopback - in process transport joining two hubs
package loopback

import (
	"sync"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/counter"
	"github.com/bitmark-inc/netsync/messagebus"
)

// Endpoint - one side of a link, sends into the other side's queue
type Endpoint struct {
	sync.RWMutex
	name      string
	peer      *messagebus.Queue
	connected bool
	notify    func(bool)
	sent      counter.Counter
	dropped   counter.Counter
}

// Link - two connected endpoints
type Link struct {
	A *Endpoint
	B *Endpoint
}

// New - create a disconnected link, A delivers into queueB and B into
// queueA
func New(queueA *messagebus.Queue, queueB *messagebus.Queue) *Link {
	return &Link{
		A: &Endpoint{name: "loopback-a", peer: queueB},
		B: &Endpoint{name: "loopback-b", peer: queueA},
	}
}

// Connect - start the session on both sides
func (l *Link) Connect() {
	l.A.setConnected(true)
	l.B.setConnected(true)
}

// Disconnect - end the session on both sides
func (l *Link) Disconnect() {
	l.A.setConnected(false)
	l.B.setConnected(false)
}

// SetNotify - function called with the new state on every change
func (e *Endpoint) SetNotify(notify func(bool)) {
	e.Lock()
	e.notify = notify
	e.Unlock()
}

func (e *Endpoint) setConnected(connected bool) {
	e.Lock()
	changed := e.connected != connected
	e.connected = connected
	notify := e.notify
	e.Unlock()

	if changed && nil != notify {
		notify(connected)
	}
}

// Connected - current session state
func (e *Endpoint) Connected() bool {
	e.RLock()
	defer e.RUnlock()
	return e.connected
}

// Send - queue a copy of the packet on the peer
//
// nothing happens while disconnected; best effort packets are dropped
// when the peer queue is full
func (e *Endpoint) Send(packet []byte, id channel.ID, reliability channel.Reliability) error {
	e.RLock()
	defer e.RUnlock()

	if !e.connected {
		return nil
	}

	data := make([]byte, len(packet))
	copy(data, packet)
	p := channel.Packet{
		Channel: id,
		Data:    data,
	}

	ok := false
	if channel.BestEffort == reliability {
		ok = e.peer.TrySend(e.name, p)
	} else {
		ok = e.peer.Send(e.name, p)
	}
	if ok {
		e.sent.Increment()
	} else {
		e.dropped.Increment()
	}
	return nil
}

// Sent - packets queued on the peer
func (e *Endpoint) Sent() uint64 {
	return e.sent.Uint64()
}

// Dropped - packets that could not be queued
func (e *Endpoint) Dropped() uint64 {
	return e.dropped.Uint64()
}
