// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/codec"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/session"
)

// Typed - remote event carrying a value
type Typed[T any] struct {
	log         *logger.L
	hub         *session.Hub
	name        string
	fingerprint fingerprint.Fingerprint
	codec       codec.Codec[T]
	listeners   listeners[func(T)]
	receive     *channel.Subscription
	teardown    *channel.Subscription
	disposed    bool
}

// NewTyped - register the name and subscribe to the hub
//
// scalar types are rejected with fault.ErrScalarType, they belong in a
// replicated scalar instead; a nil codec selects JSON
func NewTyped[T any](hub *session.Hub, name string, c codec.Codec[T]) (*Typed[T], error) {
	log := logger.New("event")
	if codec.IsScalar[T]() {
		log.Errorf("%q: type %s is scalar", name, codec.TypeName[T]())
		return nil, fault.ErrScalarType
	}
	if nil == c {
		c = codec.JSON[T]{}
	}

	e := &Typed[T]{
		log:         log,
		hub:         hub,
		name:        name,
		fingerprint: hub.Registry().Register(name),
		codec:       c,
	}
	e.receive = hub.SubscribeWithPayload(e.receivePacket)
	e.teardown = hub.SubscribeTeardown(e.release)
	return e, nil
}

// Name - the registered name
func (e *Typed[T]) Name() string {
	return e.name
}

// Fingerprint - routing key derived from the name
func (e *Typed[T]) Fingerprint() fingerprint.Fingerprint {
	return e.fingerprint
}

// Listeners - number of bound listeners
func (e *Typed[T]) Listeners() int {
	return e.listeners.count()
}

// Bind - add a listener
func (e *Typed[T]) Bind(listener func(T)) *channel.Subscription {
	return e.listeners.bind(listener)
}

// Invoke - fire the event with a value on both peers if authorise
// returns true
//
// local listeners receive the value itself, not a decoded copy; if the
// value cannot be encoded nothing fires anywhere
func (e *Typed[T]) Invoke(authorise func() bool, value T) (bool, error) {
	if !authorise() {
		return false, nil
	}
	payload, err := e.codec.Encode(value)
	if nil != err {
		e.log.Errorf("%q: encode error: %s", e.name, err)
		return false, err
	}
	e.hub.Send(channel.Join(e.fingerprint, channel.PayloadSeparator, payload), channel.EventWithPayload, channel.Reliable)
	e.listeners.fire(func(listener func(T)) {
		listener(value)
	})
	return true, nil
}

func (e *Typed[T]) receivePacket(packet []byte, f fingerprint.Fingerprint) {
	if f != e.fingerprint {
		return
	}
	if 0 == e.listeners.count() {
		e.hub.Anomaly(f, "event: %q has no listener, packet dropped", e.name)
		return
	}
	value, err := e.codec.Decode(packet[fingerprint.TextLength+1:])
	if nil != err {
		e.hub.Anomaly(f, "event: %q decode error: %s", e.name, err)
		return
	}
	e.listeners.fire(func(listener func(T)) {
		listener(value)
	})
}

func (e *Typed[T]) release() {
	e.receive.Unsubscribe()
	e.teardown.Unsubscribe()
	e.listeners.clear()
}

// Dispose - release the event and its registry entry
func (e *Typed[T]) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.release()
	e.hub.Registry().Unregister(e.fingerprint, e.name)
}
