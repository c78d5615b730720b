// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"fmt"
	"sync"

	"github.com/bitmark-inc/logger"
	zmq "github.com/pebbe/zmq4"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/counter"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/messagebus"
)

const (
	zapDomain = "netsync"
	stopFrame = "stop"
)

// distinct inproc names for every Pair in the process
var instance counter.Counter

// Options - addresses and keys for a Pair
//
// exactly one of Listen and Connect is set: the listening peer is the
// curve server and only accepts PeerPublicKey
type Options struct {
	Listen        string
	Connect       string
	PrivateKey    []byte
	PublicKey     []byte
	PeerPublicKey []byte
}

// Pair - curve secured ZMQ PAIR transport to a single peer
//
// the PAIR socket is only touched by the goroutine in Run, outbound
// packets reach it through an inproc push/pull pair
type Pair struct {
	sync.Mutex

	log     *logger.L
	queue   *messagebus.Queue
	socket  *zmq.Socket
	monitor *zmq.Socket
	push    *zmq.Socket
	pull    *zmq.Socket

	state     sync.RWMutex
	connected bool
	notify    func(bool)
	closed    bool

	dropped counter.Counter
}

// NewPair - create the sockets and bind or connect
func NewPair(log *logger.L, options Options, queue *messagebus.Queue) (*Pair, error) {
	if ("" == options.Listen) == ("" == options.Connect) {
		return nil, fault.ErrConnectionRequired
	}
	if publicLength != len(options.PeerPublicKey) || privateLength != len(options.PrivateKey) {
		return nil, fault.ErrWrongKeyLength
	}

	err := StartAuthentication()
	if nil != err {
		return nil, err
	}

	n := instance.Increment()
	p := &Pair{
		log:   log,
		queue: queue,
	}

	p.push, p.pull, err = NewSignalPair(fmt.Sprintf("inproc://netsync-outbound-%d", n))
	if nil != err {
		return nil, err
	}

	if "" != options.Listen {
		p.socket, err = newServerPair(zapDomain, options.PrivateKey, options.PeerPublicKey)
	} else {
		if publicLength != len(options.PublicKey) {
			err = fault.ErrWrongKeyLength
		} else {
			p.socket, err = newClientPair(options.PrivateKey, options.PublicKey, options.PeerPublicKey)
		}
	}
	if nil != err {
		goto fail
	}

	p.monitor, err = NewMonitor(p.socket, fmt.Sprintf("inproc://netsync-monitor-%d", n), monitorEvents)
	if nil != err {
		goto fail
	}

	if "" != options.Listen {
		err = p.socket.Bind(options.Listen)
		log.Infof("bind: %q", options.Listen)
	} else {
		err = p.socket.Connect(options.Connect)
		log.Infof("connect: %q", options.Connect)
	}
	if nil != err {
		goto fail
	}

	return p, nil

fail:
	log.Errorf("setup error: %s", err)
	p.closeSockets()
	return nil, err
}

// SetNotify - function called with the new state on every change
func (p *Pair) SetNotify(notify func(bool)) {
	p.state.Lock()
	p.notify = notify
	p.state.Unlock()
}

// Connected - true while the peer is connected
func (p *Pair) Connected() bool {
	p.state.RLock()
	defer p.state.RUnlock()
	return p.connected && !p.closed
}

func (p *Pair) setConnected(connected bool) {
	p.state.Lock()
	changed := p.connected != connected
	p.connected = connected
	notify := p.notify
	p.state.Unlock()

	if changed {
		p.log.Infof("connected: %v", connected)
		if nil != notify {
			notify(connected)
		}
	}
}

// Send - queue a packet for the peer, nothing happens while disconnected
func (p *Pair) Send(packet []byte, id channel.ID, reliability channel.Reliability) error {
	if !p.Connected() {
		return nil
	}

	p.Lock()
	defer p.Unlock()

	_, err := p.push.SendMessage([]byte{byte(id)}, []byte{byte(reliability)}, packet)
	return err
}

// Dropped - best effort packets the socket would not accept
func (p *Pair) Dropped() uint64 {
	return p.dropped.Uint64()
}

// Run - background processing interface
func (p *Pair) Run(args interface{}, shutdown <-chan struct{}) {
	log := p.log
	log.Info("starting…")

	done := make(chan struct{})
	go func() {
		defer close(done)
		p.poll()
	}()

	<-shutdown

	log.Info("initiate shutdown")
	p.Lock()
	p.push.SendMessage(stopFrame)
	p.Unlock()
	<-done

	p.state.Lock()
	p.closed = true
	p.state.Unlock()

	p.Lock()
	p.closeSockets()
	p.Unlock()
	log.Info("finished")
}

func (p *Pair) poll() {
	log := p.log

	poller := zmq.NewPoller()
	poller.Add(p.socket, zmq.POLLIN)
	poller.Add(p.pull, zmq.POLLIN)
	poller.Add(p.monitor, zmq.POLLIN)

loop:
	for {
		polled, err := poller.Poll(-1)
		if nil != err {
			log.Errorf("poll error: %s", err)
			continue loop
		}

		for _, item := range polled {
			switch s := item.Socket; s {
			case p.pull:
				data, err := s.RecvMessageBytes(0)
				if nil != err {
					log.Errorf("pull receive error: %s", err)
					break loop
				}
				if 1 == len(data) && stopFrame == string(data[0]) {
					break loop
				}
				p.forward(data)

			case p.monitor:
				event, address, _, err := s.RecvEvent(0)
				if nil != err {
					log.Errorf("monitor receive error: %s", err)
					continue
				}
				if connected, ok := connectionState(event); ok {
					log.Debugf("monitor: %s  address: %q", event, address)
					p.setConnected(connected)
				}

			default:
				data, err := s.RecvMessageBytes(0)
				if nil != err {
					log.Errorf("receive error: %s", err)
					continue
				}
				p.receive(data)
			}
		}
	}
	log.Info("poller stopped")
}

// outbound frames: channel, reliability, packet
func (p *Pair) forward(data [][]byte) {
	if 3 != len(data) || 1 != len(data[1]) {
		p.log.Errorf("invalid outbound message: %q", data)
		return
	}

	if channel.BestEffort == channel.Reliability(data[1][0]) {
		_, err := p.socket.SendMessageDontwait(data[0], data[2])
		if nil != err {
			p.dropped.Increment()
			p.log.Debugf("best effort drop: %s", err)
		}
		return
	}

	_, err := p.socket.SendMessage(data[0], data[2])
	if nil != err {
		p.log.Warnf("send error: %s", err)
	}
}

// inbound frames: channel, packet
func (p *Pair) receive(data [][]byte) {
	if 2 != len(data) || 1 != len(data[0]) {
		p.log.Warnf("invalid inbound message: %q", data)
		return
	}
	id := channel.ID(data[0][0])
	if !id.IsValid() {
		p.log.Warnf("invalid inbound channel: %d", id)
		return
	}
	p.queue.Send("zmq", channel.Packet{
		Channel: id,
		Data:    data[1],
	})
}

func (p *Pair) closeSockets() {
	for _, s := range []*zmq.Socket{p.socket, p.monitor, p.push, p.pull} {
		if nil != s {
			s.Close()
		}
	}
}
