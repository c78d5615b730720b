// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package event - remote events that fire on both peers
//
// an invoke that is authorised sends one packet to the peer and then
// calls every local listener; an invoke that is not authorised does
// nothing on either peer
package event

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/session"
)

// Event - remote event without payload
type Event struct {
	log         *logger.L
	hub         *session.Hub
	name        string
	fingerprint fingerprint.Fingerprint
	listeners   listeners[func()]
	receive     *channel.Subscription
	teardown    *channel.Subscription
	disposed    bool
}

// New - register the name and subscribe to the hub
func New(hub *session.Hub, name string) *Event {
	e := &Event{
		log:         logger.New("event"),
		hub:         hub,
		name:        name,
		fingerprint: hub.Registry().Register(name),
	}
	e.receive = hub.SubscribeNoPayload(e.receivePacket)
	e.teardown = hub.SubscribeTeardown(e.release)
	return e
}

// Name - the registered name
func (e *Event) Name() string {
	return e.name
}

// Fingerprint - routing key derived from the name
func (e *Event) Fingerprint() fingerprint.Fingerprint {
	return e.fingerprint
}

// Listeners - number of bound listeners
func (e *Event) Listeners() int {
	return e.listeners.count()
}

// Bind - add a listener
//
// binding the same function twice makes it fire twice; the handle
// removes only the occurrence it was returned for
func (e *Event) Bind(listener func()) *channel.Subscription {
	return e.listeners.bind(listener)
}

// Invoke - fire the event on both peers if authorise returns true
//
// returns whether the event fired
func (e *Event) Invoke(authorise func() bool) bool {
	if !authorise() {
		return false
	}
	e.hub.Send(channel.Bare(e.fingerprint), channel.EventNoPayload, channel.Reliable)
	e.listeners.fire(func(listener func()) {
		listener()
	})
	return true
}

func (e *Event) receivePacket(_ []byte, f fingerprint.Fingerprint) {
	if f != e.fingerprint {
		return
	}
	if 0 == e.listeners.count() {
		e.hub.Anomaly(f, "event: %q has no listener, packet dropped", e.name)
		return
	}
	n := e.listeners.fire(func(listener func()) {
		listener()
	})
	e.log.Debugf("%q fired %d listeners", e.name, n)
}

// unsubscribe from the hub and clear listeners, fingerprint stays reserved
func (e *Event) release() {
	e.receive.Unsubscribe()
	e.teardown.Unsubscribe()
	e.listeners.clear()
}

// Dispose - release the event and its registry entry
//
// the fingerprint stays reserved while any other instance still
// holds an entry for it
func (e *Event) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.release()
	ok := e.hub.Registry().Unregister(e.fingerprint, e.name)
	e.log.Debugf("dispose: %q  unregistered: %t", e.name, ok)
}
