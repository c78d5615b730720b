// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fixtures"
	"github.com/bitmark-inc/netsync/messagebus"
	"github.com/bitmark-inc/netsync/p2p"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestNewNodeWithoutKey(t *testing.T) {
	_, err := p2p.NewNode(logger.New("p2p-test"), p2p.Options{}, messagebus.New(1))
	assert.Equal(t, fault.ErrPrivateKeyIsNil, err, "no key")
}

func TestNodeExchange(t *testing.T) {
	serverKey, err := p2p.GenerateKey()
	assert.Nil(t, err, "server key")
	clientKey, err := p2p.GenerateKey()
	assert.Nil(t, err, "client key")
	clientID, err := p2p.PeerID(clientKey)
	assert.Nil(t, err, "client id")

	serverQueue := messagebus.New(10)
	server, err := p2p.NewNode(logger.New("p2p-server"), p2p.Options{
		PrivateKey: serverKey,
		Listen:     []string{"/ip4/127.0.0.1/tcp/0"},
		Peer:       clientID,
	}, serverQueue)
	assert.Nil(t, err, "server")
	defer server.Close()

	addrs := server.Addresses()
	assert.NotEqual(t, 0, len(addrs), "server addresses")

	clientQueue := messagebus.New(10)
	client, err := p2p.NewNode(logger.New("p2p-client"), p2p.Options{
		PrivateKey: clientKey,
		Connect:    addrs[0].String(),
	}, clientQueue)
	assert.Nil(t, err, "client")
	defer client.Close()

	serverUp := make(chan bool, 2)
	server.SetNotify(func(c bool) { serverUp <- c })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = client.Connect(ctx)
	assert.Nil(t, err, "connect")
	assert.True(t, client.Connected(), "client connected")

	err = client.Send([]byte("0123456789abcdef0123456789abcdef"), channel.EventNoPayload, channel.Reliable)
	assert.Nil(t, err, "send")

	select {
	case m := <-serverQueue.Chan():
		packet := m.Item.(channel.Packet)
		assert.Equal(t, channel.EventNoPayload, packet.Channel, "channel")
		assert.Equal(t, "0123456789abcdef0123456789abcdef", string(packet.Data), "data")
	case <-time.After(10 * time.Second):
		t.Fatal("timeout waiting for packet")
	}

	select {
	case c := <-serverUp:
		assert.True(t, c, "server notified")
	case <-time.After(time.Second):
		t.Fatal("server not notified")
	}
}

func TestSendWithoutStream(t *testing.T) {
	key, err := p2p.GenerateKey()
	assert.Nil(t, err, "key")

	n, err := p2p.NewNode(logger.New("p2p-idle"), p2p.Options{PrivateKey: key}, messagebus.New(1))
	assert.Nil(t, err, "node")
	defer n.Close()

	assert.False(t, n.Connected(), "connected")
	assert.Nil(t, n.Send([]byte("x"), channel.EventNoPayload, channel.Reliable), "send")

	err = n.Connect(context.Background())
	assert.Equal(t, fault.ErrConnectionRequired, err, "no connect address")
}
