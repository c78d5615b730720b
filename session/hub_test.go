// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session_test

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/background"
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/channel/mocks"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/fixtures"
	"github.com/bitmark-inc/netsync/messagebus"
	"github.com/bitmark-inc/netsync/registry"
	"github.com/bitmark-inc/netsync/session"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestSendForwardsToSender(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockSender(ctl)
	m.EXPECT().Send([]byte("abc"), channel.EventNoPayload, channel.Reliable).Return(nil).Times(1)

	h := session.New(registry.New(), m, nil)
	h.Send([]byte("abc"), channel.EventNoPayload, channel.Reliable)

	assert.Equal(t, uint64(1), h.Statistics().Sent, "wrong sent count")
}

func TestSendErrorIsCountedNotReturned(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockSender(ctl)
	m.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("link down")).Times(1)

	h := session.New(registry.New(), m, nil)
	h.Send([]byte("abc"), channel.ReplicatedValue, channel.BestEffort)

	s := h.Statistics()
	assert.Equal(t, uint64(0), s.Sent, "wrong sent count")
	assert.Equal(t, uint64(1), s.SendErrors, "wrong send error count")
}

func TestOfflineHubSendIsNoOp(t *testing.T) {
	h := session.New(nil, nil, nil)
	h.Send([]byte("abc"), channel.EventNoPayload, channel.Reliable)

	assert.NotNil(t, h.Registry(), "missing registry")
	assert.Equal(t, uint64(0), h.Statistics().Sent, "wrong sent count")
}

func TestDeliverRoutesByChannel(t *testing.T) {
	reg := registry.New()
	h := session.New(reg, nil, nil)
	f := reg.Register("lever")

	var bare, payload, replicated []byte
	h.SubscribeNoPayload(func(packet []byte, actual fingerprint.Fingerprint) {
		assert.Equal(t, f, actual, "wrong no payload fingerprint")
		bare = packet
	})
	h.SubscribeWithPayload(func(packet []byte, actual fingerprint.Fingerprint) {
		assert.Equal(t, f, actual, "wrong payload fingerprint")
		payload = packet
	})
	h.SubscribeReplicated(func(packet []byte) {
		replicated = packet
	})

	p1 := channel.Bare(f)
	p2 := channel.Join(f, channel.PayloadSeparator, []byte("1"))
	p3 := channel.Join(f, channel.ValueSeparator, []byte("2"))

	assert.Nil(t, h.Deliver(channel.Packet{Channel: channel.EventNoPayload, Data: p1}), "wrong error")
	assert.Nil(t, h.Deliver(channel.Packet{Channel: channel.EventWithPayload, Data: p2}), "wrong error")
	assert.Nil(t, h.Deliver(channel.Packet{Channel: channel.ReplicatedValue, Data: p3}), "wrong error")

	assert.Equal(t, p1, bare, "wrong no payload packet")
	assert.Equal(t, p2, payload, "wrong payload packet")
	assert.Equal(t, p3, replicated, "wrong replicated packet")
	assert.Equal(t, uint64(3), h.Statistics().Received, "wrong received count")
}

func TestDeliverDropsBadPackets(t *testing.T) {
	reg := registry.New()
	h := session.New(reg, nil, nil)
	f := reg.Register("known")

	called := 0
	h.SubscribeWithPayload(func([]byte, fingerprint.Fingerprint) { called += 1 })
	h.SubscribeReplicated(func([]byte) { called += 1 })

	err := h.Deliver(channel.Packet{Channel: channel.EventWithPayload, Data: channel.Bare(f)})
	assert.Equal(t, fault.ErrMissingSeparator, err, "wrong error for missing separator")

	err = h.Deliver(channel.Packet{Channel: channel.ReplicatedValue, Data: channel.Join(f, channel.PayloadSeparator, nil)})
	assert.Equal(t, fault.ErrMissingSeparator, err, "wrong error for wrong separator")

	unknown := fingerprint.FromName("unknown")
	err = h.Deliver(channel.Packet{Channel: channel.ReplicatedValue, Data: channel.Join(unknown, channel.ValueSeparator, nil)})
	assert.Equal(t, fault.ErrInvalidFingerprint, err, "wrong error for unknown fingerprint")

	err = h.Deliver(channel.Packet{Channel: channel.ID(9), Data: channel.Bare(f)})
	assert.Equal(t, fault.ErrUnknownChannel, err, "wrong error for unknown channel")

	assert.Equal(t, 0, called, "handler called for bad packet")
	assert.Equal(t, uint64(4), h.Statistics().Dropped, "wrong dropped count")
}

func TestTeardownOnce(t *testing.T) {
	reg := registry.New()
	h := session.New(reg, nil, nil)
	f := reg.Register("x")

	count := 0
	h.SubscribeTeardown(func() { count += 1 })

	var sub *channel.Subscription
	sub = h.SubscribeTeardown(func() {
		count += 1
		sub.Unsubscribe()
	})

	h.Teardown()
	h.Teardown()

	assert.Equal(t, 2, count, "wrong teardown calls")
	assert.True(t, h.IsTornDown(), "not torn down")

	err := h.Deliver(channel.Packet{Channel: channel.EventNoPayload, Data: channel.Bare(f)})
	assert.Equal(t, fault.ErrSessionTornDown, err, "wrong error after teardown")
}

func TestSendAfterTeardownIsNoOp(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	m := mocks.NewMockSender(ctl)
	m.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	h := session.New(registry.New(), m, nil)
	h.Teardown()
	h.Send([]byte("late"), channel.EventNoPayload, channel.Reliable)
}

func TestAnomalyCountsEveryReport(t *testing.T) {
	h := session.New(registry.New(), nil, nil)
	f := fingerprint.FromName("noisy")

	for i := 0; i < 5; i += 1 {
		h.Anomaly(f, "report %d", i)
	}
	assert.Equal(t, uint64(5), h.Statistics().Anomalies, "wrong anomaly count")
}

func TestAuthoriseUsesOracle(t *testing.T) {
	oracle := authority.NewStatic(authority.IdentityB)
	oracle.SetActive(true)

	h := session.New(registry.New(), nil, oracle)
	assert.Equal(t, oracle, h.Oracle(), "wrong oracle")
	assert.False(t, h.Authorise(authority.PeerA)(), "a authorised as b")
	assert.True(t, h.Authorise(authority.PeerB)(), "b not authorised")
}

func TestDrain(t *testing.T) {
	reg := registry.New()
	h := session.New(reg, nil, nil)
	f := reg.Register("tick")

	received := 0
	h.SubscribeNoPayload(func([]byte, fingerprint.Fingerprint) { received += 1 })

	q := messagebus.New(10)
	q.Send("peer", channel.Packet{Channel: channel.EventNoPayload, Data: channel.Bare(f)})
	session.Post(q, func() { received += 10 })
	q.Send("peer", "unexpected")

	assert.Equal(t, 3, h.Drain(q), "wrong drained count")
	assert.Equal(t, 11, received, "wrong received")
	assert.Equal(t, 0, h.Drain(q), "queue not empty")
}

func TestRunProcessesQueue(t *testing.T) {
	h := session.New(registry.New(), nil, nil)
	q := messagebus.New(10)

	p := background.Start(background.Processes{h}, q)

	done := make(chan struct{})
	session.Post(q, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("posted function not run")
	}
	p.Stop()
}
