// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bufio"
	"context"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"
	libp2p "github.com/libp2p/go-libp2p"
	crypto "github.com/libp2p/go-libp2p-core/crypto"
	"github.com/libp2p/go-libp2p-core/host"
	"github.com/libp2p/go-libp2p-core/network"
	peerlib "github.com/libp2p/go-libp2p-core/peer"
	"github.com/libp2p/go-libp2p-core/protocol"
	tls "github.com/libp2p/go-libp2p-tls"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/counter"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/messagebus"
)

// ProtocolID - stream protocol carrying session packets
const ProtocolID = protocol.ID("/netsync/1.0.0")

const (
	bestEffortTimeout = 100 * time.Millisecond
	dialTimeout       = 10 * time.Second
	redialInterval    = 5 * time.Second
)

// Options - identity and addresses for a Node
type Options struct {
	PrivateKey crypto.PrivKey
	Listen     []string   // multiaddrs to listen on
	Connect    string     // full multiaddr of the peer including /p2p/<id>
	Peer       peerlib.ID // only accept streams from this peer, empty accepts any
}

// Node - libp2p host holding at most one stream to the peer
type Node struct {
	sync.Mutex

	log     *logger.L
	host    host.Host
	queue   *messagebus.Queue
	options Options

	stream network.Stream
	notify func(bool)

	dropped counter.Counter
}

// NewNode - start a TLS secured host and register the stream handler
func NewNode(log *logger.L, options Options, queue *messagebus.Queue) (*Node, error) {
	if nil == options.PrivateKey {
		return nil, fault.ErrPrivateKeyIsNil
	}

	hostOptions := []libp2p.Option{
		libp2p.Identity(options.PrivateKey),
		libp2p.Security(tls.ID, tls.New),
	}

	if 0 == len(options.Listen) {
		hostOptions = append(hostOptions, libp2p.NoListenAddrs)
	} else {
		addrs := make([]ma.Multiaddr, 0, len(options.Listen))
		for _, s := range options.Listen {
			a, err := ma.NewMultiaddr(s)
			if nil != err {
				return nil, err
			}
			addrs = append(addrs, a)
		}
		hostOptions = append(hostOptions, libp2p.ListenAddrs(addrs...))
	}

	h, err := libp2p.New(context.Background(), hostOptions...)
	if nil != err {
		return nil, err
	}

	n := &Node{
		log:     log,
		host:    h,
		queue:   queue,
		options: options,
	}
	h.SetStreamHandler(ProtocolID, n.handleStream)

	for _, a := range n.Addresses() {
		log.Infof("host address: %s", a)
	}
	return n, nil
}

// ID - this node's peer ID
func (n *Node) ID() peerlib.ID {
	return n.host.ID()
}

// Addresses - full dialable addresses of this node
func (n *Node) Addresses() []ma.Multiaddr {
	self, err := ma.NewMultiaddr("/p2p/" + n.host.ID().Pretty())
	if nil != err {
		return nil
	}
	addrs := make([]ma.Multiaddr, 0, len(n.host.Addrs()))
	for _, a := range n.host.Addrs() {
		addrs = append(addrs, a.Encapsulate(self))
	}
	return addrs
}

// SetNotify - function called with the new state on every change
func (n *Node) SetNotify(notify func(bool)) {
	n.Lock()
	n.notify = notify
	n.Unlock()
}

// Connected - true while a stream to the peer is open
func (n *Node) Connected() bool {
	n.Lock()
	defer n.Unlock()
	return nil != n.stream
}

// Connect - dial the configured peer and open the session stream
func (n *Node) Connect(ctx context.Context) error {
	if "" == n.options.Connect {
		return fault.ErrConnectionRequired
	}
	addr, err := ma.NewMultiaddr(n.options.Connect)
	if nil != err {
		return err
	}
	info, err := peerlib.AddrInfoFromP2pAddr(addr)
	if nil != err {
		return err
	}

	err = n.host.Connect(ctx, *info)
	if nil != err {
		return err
	}
	s, err := n.host.NewStream(ctx, info.ID, ProtocolID)
	if nil != err {
		return err
	}
	n.log.Infof("connected to: %s", info.ID.ShortString())
	n.attach(s)
	return nil
}

func (n *Node) handleStream(s network.Stream) {
	remote := s.Conn().RemotePeer()
	if "" != n.options.Peer && remote != n.options.Peer {
		n.log.Warnf("reject stream from: %s  error: %s", remote.ShortString(), fault.ErrUnexpectedPeer)
		s.Reset()
		return
	}
	n.log.Infof("accepted stream from: %s", remote.ShortString())
	n.attach(s)
}

// a newer stream replaces the current one
func (n *Node) attach(s network.Stream) {
	n.Lock()
	previous := n.stream
	n.stream = s
	notify := n.notify
	n.Unlock()

	if nil != previous {
		previous.Reset()
	} else if nil != notify {
		notify(true)
	}
	go n.read(s)
}

func (n *Node) detach(s network.Stream) {
	n.Lock()
	current := n.stream == s
	if current {
		n.stream = nil
	}
	notify := n.notify
	n.Unlock()

	s.Reset()
	if current {
		n.log.Info("stream closed")
		if nil != notify {
			notify(false)
		}
	}
}

func (n *Node) read(s network.Stream) {
	r := bufio.NewReader(s)
	for {
		packet, err := unpack(r)
		if nil != err {
			n.log.Debugf("read error: %s", err)
			n.detach(s)
			return
		}
		if !n.queue.Send("p2p", packet) {
			n.detach(s)
			return
		}
	}
}

// Send - write a framed packet, nothing happens without a stream
//
// a write that fails part way through a frame resets the stream so the
// peer never decodes the remainder as a new frame
func (n *Node) Send(packet []byte, id channel.ID, reliability channel.Reliability) error {
	n.Lock()

	s := n.stream
	if nil == s {
		n.Unlock()
		return nil
	}

	deadline := time.Time{}
	if channel.BestEffort == reliability {
		deadline = time.Now().Add(bestEffortTimeout)
	}
	s.SetWriteDeadline(deadline)

	broken, err := writeFrame(s, id, packet)
	var notify func(bool)
	if broken {
		n.stream = nil
		notify = n.notify
	}
	n.Unlock()

	if broken {
		n.log.Warnf("partial %s frame: %s  reset stream", id, err)
		s.Reset()
		if nil != notify {
			notify(false)
		}
	}

	if nil != err && channel.BestEffort == reliability {
		n.dropped.Increment()
		return nil
	}
	return err
}

// Dropped - best effort packets that missed their deadline
func (n *Node) Dropped() uint64 {
	return n.dropped.Uint64()
}

// Run - background processing interface, redials while disconnected
func (n *Node) Run(args interface{}, shutdown <-chan struct{}) {
	log := n.log
	log.Info("starting…")

	delay := time.After(0)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-delay:
			delay = time.After(redialInterval)
			if "" == n.options.Connect || n.Connected() {
				continue loop
			}
			ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
			err := n.Connect(ctx)
			cancel()
			if nil != err {
				log.Warnf("connect error: %s", err)
			}
		}
	}

	log.Info("shutting down…")
	n.Close()
	log.Info("stopped")
}

// Close - drop the stream and stop the host
func (n *Node) Close() error {
	n.Lock()
	s := n.stream
	n.stream = nil
	n.Unlock()
	if nil != s {
		s.Reset()
	}
	return n.host.Close()
}
