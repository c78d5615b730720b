// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event_test

import (
	"testing"

	"github.com/gogo/protobuf/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/channel/mocks"
	"github.com/bitmark-inc/netsync/codec"
	"github.com/bitmark-inc/netsync/event"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/registry"
	"github.com/bitmark-inc/netsync/session"
)

type hit struct {
	Target string `json:"target"`
	Damage int    `json:"damage"`
}

// codec that counts decodes
type countingCodec struct {
	codec.JSON[hit]
	decodes int
}

func (c *countingCodec) Decode(payload []byte) (hit, error) {
	c.decodes += 1
	return c.JSON.Decode(payload)
}

func TestTypedRejectsScalars(t *testing.T) {
	h := session.New(registry.New(), nil, nil)

	_, err := event.NewTyped[int](h, "count", nil)
	assert.Equal(t, fault.ErrScalarType, err, "int accepted")

	_, err = event.NewTyped[bool](h, "flag", nil)
	assert.Equal(t, fault.ErrScalarType, err, "bool accepted")

	_, err = event.NewTyped[float64](h, "ratio", nil)
	assert.Equal(t, fault.ErrScalarType, err, "float accepted")

	_, err = event.NewTyped[rune](h, "letter", nil)
	assert.Equal(t, fault.ErrScalarType, err, "rune accepted")

	assert.Equal(t, 0, h.Registry().Count(), "rejected type registered a name")

	_, err = event.NewTyped[string](h, "chat", nil)
	assert.Nil(t, err, "string rejected")
}

func TestTypedInvokeDenied(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockSender(ctl)
	m.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	e, err := event.NewTyped[hit](session.New(registry.New(), m, nil), "hit", nil)
	assert.Nil(t, err, "wrong error")

	count := 0
	e.Bind(func(hit) { count += 1 })

	fired, err := e.Invoke(deny, hit{Target: "x", Damage: 1})
	assert.Nil(t, err, "wrong error")
	assert.False(t, fired, "denied invoke fired")
	assert.Equal(t, 0, count, "listener fired")
}

func TestTypedInvokeSendsPayloadPacket(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	f := fingerprint.FromName("hit")
	expected := []byte(f.String() + `|{"target":"door","damage":7}`)

	m := mocks.NewMockSender(ctl)
	m.EXPECT().Send(expected, channel.EventWithPayload, channel.Reliable).Return(nil).Times(1)

	c := &countingCodec{}
	e, err := event.NewTyped[hit](session.New(registry.New(), m, nil), "hit", c)
	assert.Nil(t, err, "wrong error")

	var received []hit
	e.Bind(func(v hit) { received = append(received, v) })

	v := hit{Target: "door", Damage: 7}
	fired, err := e.Invoke(allow, v)
	assert.Nil(t, err, "wrong error")
	assert.True(t, fired, "invoke did not fire")
	assert.Equal(t, []hit{v}, received, "wrong local value")
	assert.Equal(t, 0, c.decodes, "local listeners received a decoded copy")
}

func TestTypedLocalListenerGetsOriginalValue(t *testing.T) {
	e, err := event.NewTyped[*types.StringValue](session.New(registry.New(), nil, nil), "note", codec.Proto[*types.StringValue]{})
	assert.Nil(t, err, "wrong error")

	original := &types.StringValue{Value: "hello"}
	var received *types.StringValue
	e.Bind(func(v *types.StringValue) { received = v })

	e.Invoke(allow, original)
	assert.True(t, original == received, "listener did not receive the original pointer")
}

func TestTypedRemoteDelivery(t *testing.T) {
	p := newPeers()

	ea, err := event.NewTyped[hit](p.a, "hit", nil)
	assert.Nil(t, err, "wrong error")
	eb, err := event.NewTyped[hit](p.b, "hit", nil)
	assert.Nil(t, err, "wrong error")

	var received []hit
	eb.Bind(func(v hit) { received = append(received, v) })

	ea.Invoke(allow, hit{Target: "wall", Damage: 3})
	ea.Invoke(allow, hit{Target: "a|b;c", Damage: 4})
	p.b.Drain(p.qb)

	assert.Equal(t, []hit{{Target: "wall", Damage: 3}, {Target: "a|b;c", Damage: 4}}, received, "wrong remote values")
}

func TestTypedProtoRemoteDelivery(t *testing.T) {
	p := newPeers()

	c := codec.Proto[*types.StringValue]{}
	ea, _ := event.NewTyped[*types.StringValue](p.a, "note", c)
	eb, _ := event.NewTyped[*types.StringValue](p.b, "note", c)

	received := ""
	eb.Bind(func(v *types.StringValue) { received = v.Value })

	ea.Invoke(allow, &types.StringValue{Value: "binary|payload;ok"})
	p.b.Drain(p.qb)

	assert.Equal(t, "binary|payload;ok", received, "wrong remote value")
}

func TestTypedReceiveWithoutListenerIsAnomaly(t *testing.T) {
	p := newPeers()

	ea, _ := event.NewTyped[hit](p.a, "orphan", nil)
	c := &countingCodec{}
	event.NewTyped[hit](p.b, "orphan", c)

	ea.Invoke(allow, hit{Target: "wall"})
	p.b.Drain(p.qb)

	assert.Equal(t, uint64(1), p.b.Statistics().Anomalies, "wrong anomaly count")
	assert.Equal(t, 0, c.decodes, "payload decoded without a listener")
}

func TestTypedDecodeErrorIsAnomaly(t *testing.T) {
	reg := registry.New()
	h := session.New(reg, nil, nil)

	e, _ := event.NewTyped[hit](h, "hit", nil)
	count := 0
	e.Bind(func(hit) { count += 1 })

	packet := channel.Join(e.Fingerprint(), channel.PayloadSeparator, []byte("{broken"))
	h.Deliver(channel.Packet{Channel: channel.EventWithPayload, Data: packet})

	assert.Equal(t, 0, count, "listener fired for undecodable payload")
	assert.Equal(t, uint64(1), h.Statistics().Anomalies, "wrong anomaly count")
}

func TestTypedDispose(t *testing.T) {
	p := newPeers()

	ea, _ := event.NewTyped[hit](p.a, "hit", nil)
	eb, _ := event.NewTyped[hit](p.b, "hit", nil)
	count := 0
	eb.Bind(func(hit) { count += 1 })

	eb.Dispose()
	assert.Equal(t, 0, eb.Listeners(), "listeners not cleared")
	assert.False(t, p.b.Registry().IsRegistered(eb.Fingerprint()), "fingerprint still registered")

	ea.Invoke(allow, hit{})
	p.b.Drain(p.qb)
	assert.Equal(t, 0, count, "disposed event fired")
}

func TestTypedUnbindDuringDispatchPanics(t *testing.T) {
	e, _ := event.NewTyped[hit](session.New(registry.New(), nil, nil), "hit", nil)

	var sub *channel.Subscription
	sub = e.Bind(func(hit) {
		sub.Unsubscribe()
	})

	assert.PanicsWithValue(t, fault.ErrListenerMutationInDispatch, func() {
		e.Invoke(allow, hit{})
	}, "unbind during dispatch")
}
