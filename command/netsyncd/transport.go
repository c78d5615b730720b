// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/bitmark-inc/logger"
	peerlib "github.com/libp2p/go-libp2p-core/peer"

	"github.com/bitmark-inc/netsync/background"
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/configuration"
	"github.com/bitmark-inc/netsync/discovery"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/messagebus"
	"github.com/bitmark-inc/netsync/p2p"
	"github.com/bitmark-inc/netsync/zmqutil"
)

// transport - a network sender that runs in the background and
// reports session state changes
type transport interface {
	channel.Sender
	background.Process
	SetNotify(func(bool))
	Connected() bool
}

// build the configured network transport, loopback is handled by the
// caller since it needs a second hub
func newTransport(log *logger.L, c *configuration.Configuration, queue *messagebus.Queue, peer *discovery.Record) (transport, error) {
	switch c.Transport {
	case configuration.TransportZmq:
		return newZmq(log, c, queue, peer)
	case configuration.TransportP2P:
		return newP2P(log, c, queue, peer)
	default:
		return nil, fault.ErrInvalidTransport
	}
}

func newZmq(log *logger.L, c *configuration.Configuration, queue *messagebus.Queue, peer *discovery.Record) (transport, error) {
	privateKey, err := zmqutil.ReadPrivateKeyFile(c.Zmq.PrivateKey)
	if nil != err {
		return nil, err
	}
	publicKey, err := zmqutil.ReadPublicKeyFile(c.Zmq.PublicKey)
	if nil != err {
		return nil, err
	}

	options := zmqutil.Options{
		Listen:     c.Zmq.Listen,
		Connect:    c.Zmq.Connect,
		PrivateKey: privateKey,
		PublicKey:  publicKey,
	}

	if "" != c.Zmq.PeerPublicKey {
		options.PeerPublicKey, err = zmqutil.ReadPublicKeyFile(c.Zmq.PeerPublicKey)
		if nil != err {
			return nil, err
		}
	} else if nil != peer {
		options.PeerPublicKey = peer.PublicKey
	}

	if "" == options.Listen && "" == options.Connect && nil != peer {
		options.Connect = peer.Address
	}

	pair, err := zmqutil.NewPair(logger.New("zmq"), options, queue)
	if nil != err {
		return nil, err
	}
	return pair, nil
}

func newP2P(log *logger.L, c *configuration.Configuration, queue *messagebus.Queue, peer *discovery.Record) (transport, error) {
	data, err := os.ReadFile(c.P2P.PrivateKey)
	if nil != err {
		return nil, err
	}
	prvKey, err := p2p.DecodePrivateKey(string(data))
	if nil != err {
		return nil, err
	}

	options := p2p.Options{
		PrivateKey: prvKey,
		Listen:     c.P2P.Listen,
		Connect:    c.P2P.Connect,
	}
	if "" != c.P2P.Peer {
		options.Peer, err = peerlib.IDB58Decode(c.P2P.Peer)
		if nil != err {
			return nil, err
		}
	}
	if "" == options.Connect && nil != peer {
		options.Connect = peer.Address
	}

	node, err := p2p.NewNode(logger.New("p2p"), options, queue)
	if nil != err {
		return nil, err
	}
	log.Infof("p2p identity: %s", node.ID().Pretty())
	return node, nil
}
