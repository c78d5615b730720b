// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	"sync"
	"time"

	zmq "github.com/pebbe/zmq4"
)

const (
	heartbeatInterval = 15 * time.Second
	heartbeatTimeout  = 60 * time.Second
	heartbeatTTL      = 120 * time.Second
)

// to ensure only one auth start
var oneTimeAuthStart sync.Once

// StartAuthentication - initialise the ZMQ security subsystem
func StartAuthentication() error {
	err := error(nil)
	oneTimeAuthStart.Do(func() {
		zmq.AuthSetVerbose(false)
		err = zmq.AuthStart()
	})
	return err
}

// NewSignalPair - return a pair of connected push/pull sockets
func NewSignalPair(signal string) (*zmq.Socket, *zmq.Socket, error) {

	// send half of signalling channel
	push, err := zmq.NewSocket(zmq.PUSH)
	if nil != err {
		return nil, nil, err
	}
	push.SetLinger(0)
	err = push.Bind(signal)
	if nil != err {
		push.Close()
		return nil, nil, err
	}

	// receive half of signalling channel
	pull, err := zmq.NewSocket(zmq.PULL)
	if nil != err {
		push.Close()
		return nil, nil, err
	}
	pull.SetLinger(0)
	err = pull.Connect(signal)
	if nil != err {
		push.Close()
		pull.Close()
		return nil, nil, err
	}

	return push, pull, nil
}

// newServerPair - PAIR socket that binds and only accepts the peer key
func newServerPair(zapDomain string, privateKey []byte, peerPublicKey []byte) (*zmq.Socket, error) {
	socket, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		return nil, err
	}

	zmq.AuthCurveAdd(zapDomain, zmq.Z85encode(string(peerPublicKey)))

	settings := []func() error{
		func() error { return socket.SetCurveServer(1) },
		func() error { return socket.SetCurveSecretkey(string(privateKey)) },
		func() error { return socket.SetZapDomain(zapDomain) },
	}
	return configure(socket, settings)
}

// newClientPair - PAIR socket that connects to the peer's server key
func newClientPair(privateKey []byte, publicKey []byte, peerPublicKey []byte) (*zmq.Socket, error) {
	socket, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		return nil, err
	}

	settings := []func() error{
		func() error { return socket.SetCurveServer(0) },
		func() error { return socket.SetCurvePublickey(string(publicKey)) },
		func() error { return socket.SetCurveSecretkey(string(privateKey)) },
		func() error { return socket.SetCurveServerkey(string(peerPublicKey)) },
	}
	return configure(socket, settings)
}

// options common to both ends
func configure(socket *zmq.Socket, settings []func() error) (*zmq.Socket, error) {
	settings = append(settings,
		func() error { return socket.SetLinger(0) },
		func() error { return socket.SetHeartbeatIvl(heartbeatInterval) },
		func() error { return socket.SetHeartbeatTimeout(heartbeatTimeout) },
		func() error { return socket.SetHeartbeatTtl(heartbeatTTL) },
	)
	for _, set := range settings {
		if err := set(); nil != err {
			socket.Close()
			return nil, err
		}
	}
	return socket, nil
}
