// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package zmqutil

import (
	zmq "github.com/pebbe/zmq4"
)

// events that change the session state
const monitorEvents = zmq.EVENT_CONNECTED | zmq.EVENT_ACCEPTED | zmq.EVENT_DISCONNECTED

// NewMonitor - return a socket connected to the monitoring channel of
// another socket, a unique inproc://name must be provided for each use
func NewMonitor(socket *zmq.Socket, connection string, event zmq.Event) (*zmq.Socket, error) {

	err := socket.Monitor(connection, event)
	if nil != err {
		return nil, err
	}

	mon, err := zmq.NewSocket(zmq.PAIR)
	if nil != err {
		return nil, err
	}

	err = mon.Connect(connection)
	if nil != err {
		mon.Close()
		return nil, err
	}

	return mon, nil
}

// state reported by a monitor event, ok is false for other events
func connectionState(event zmq.Event) (connected bool, ok bool) {
	switch event {
	case zmq.EVENT_CONNECTED, zmq.EVENT_ACCEPTED:
		return true, true
	case zmq.EVENT_DISCONNECTED:
		return false, true
	default:
		return false, false
	}
}
