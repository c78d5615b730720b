// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package replica - values kept in step between the two peers
//
// a write is applied locally and broadcast; a received write overwrites
// the local copy; there is no version so the last packet to arrive wins
package replica

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/codec"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/session"
)

// MaximumPayloadSize - largest encoded value in bytes
//
// a replicated value must fit in a single transport packet, so the
// limit counts encoded bytes rather than characters
const MaximumPayloadSize = 400

// Value - replicated compound value
type Value[T any] struct {
	log         *logger.L
	hub         *session.Hub
	name        string
	fingerprint fingerprint.Fingerprint
	reliability channel.Reliability
	codec       codec.Codec[T]
	value       T
	receive     *channel.Subscription
	teardown    *channel.Subscription
	disposed    bool
}

// New - create a replicated value holding initial
//
// scalar and string types are rejected, use NewScalar for those; a nil
// codec selects JSON
func New[T any](hub *session.Hub, name string, reliability channel.Reliability, initial T, c codec.Codec[T]) (*Value[T], error) {
	if codec.IsScalar[T]() {
		return nil, fault.ErrScalarType
	}
	if codec.IsString[T]() {
		return nil, fault.ErrStringType
	}
	return newValue(hub, name, reliability, initial, c)
}

func newValue[T any](hub *session.Hub, name string, reliability channel.Reliability, initial T, c codec.Codec[T]) (*Value[T], error) {
	if !reliability.IsValid() {
		return nil, fault.ErrInvalidReliability
	}
	if nil == c {
		c = codec.JSON[T]{}
	}

	v := &Value[T]{
		log:         logger.New("replica"),
		hub:         hub,
		name:        name,
		reliability: reliability,
		codec:       c,
		value:       initial,
	}

	// register before subscribing so a packet can never arrive for a
	// fingerprint the hub does not know
	reg := hub.Registry()
	v.fingerprint = reg.Register(name)
	reg.Track(v)

	v.receive = hub.SubscribeReplicated(v.receivePacket)
	v.teardown = hub.SubscribeTeardown(v.release)

	v.log.Debugf("new: %q  fingerprint: %s  reliability: %s", name, v.fingerprint, reliability)
	return v, nil
}

// Name - the registered name
func (v *Value[T]) Name() string {
	return v.name
}

// Fingerprint - routing key derived from the name
func (v *Value[T]) Fingerprint() fingerprint.Fingerprint {
	return v.fingerprint
}

// Reliability - tier fixed at construction
func (v *Value[T]) Reliability() channel.Reliability {
	return v.reliability
}

// Value - the cached value, never touches the network
func (v *Value[T]) Value() T {
	return v.value
}

// SetValue - overwrite the value on both peers if authorise returns true
//
// the value is encoded first: an encode error or a payload larger than
// MaximumPayloadSize is returned and the cache is left unchanged;
// otherwise the cache is overwritten without comparing against the
// previous value and the packet is sent
func (v *Value[T]) SetValue(value T, authorise func() bool) error {
	if !authorise() {
		return nil
	}

	payload, err := v.codec.Encode(value)
	if nil != err {
		v.log.Errorf("%q: encode error: %s", v.name, err)
		return err
	}
	if len(payload) > MaximumPayloadSize {
		v.log.Errorf("%q: payload: %d bytes exceeds: %d", v.name, len(payload), MaximumPayloadSize)
		return fault.ErrPayloadTooLarge
	}

	v.value = value
	v.hub.Send(channel.Join(v.fingerprint, channel.ValueSeparator, payload), channel.ReplicatedValue, v.reliability)
	return nil
}

func (v *Value[T]) receivePacket(packet []byte) {
	f, payload, err := channel.Split(packet, channel.ValueSeparator)
	if nil != err || f != v.fingerprint {
		return
	}
	if len(payload) > MaximumPayloadSize {
		v.hub.Anomaly(f, "replica: %q payload: %d bytes exceeds: %d", v.name, len(payload), MaximumPayloadSize)
		return
	}
	value, err := v.codec.Decode(payload)
	if nil != err {
		v.hub.Anomaly(f, "replica: %q decode error: %s", v.name, err)
		return
	}
	v.value = value
}

// Snapshot - encoded form of the cached value
func (v *Value[T]) Snapshot() ([]byte, error) {
	return v.codec.Encode(v.value)
}

// Restore - replace the cached value from a snapshot without sending
func (v *Value[T]) Restore(payload []byte) error {
	value, err := v.codec.Decode(payload)
	if nil != err {
		return err
	}
	v.value = value
	return nil
}

func (v *Value[T]) release() {
	v.receive.Unsubscribe()
	v.teardown.Unsubscribe()
}

// Dispose - stop receiving updates
//
// the fingerprint stays reserved for the lifetime of the registry
func (v *Value[T]) Dispose() {
	if v.disposed {
		return
	}
	v.disposed = true
	v.release()
	v.hub.Registry().Untrack(v)
}
