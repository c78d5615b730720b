// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package session

import (
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/messagebus"
)

// Run - background processing interface
//
// args is the *messagebus.Queue that transports and local callers write
// to; every item is executed on this goroutine in arrival order
func (h *Hub) Run(args interface{}, shutdown <-chan struct{}) {
	queue := args.(*messagebus.Queue)

	h.log.Info("pump starting…")
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case item := <-queue.Chan():
			h.process(item)
		}
	}
	h.log.Info("pump stopped")
}

// Drain - execute every message currently queued without waiting,
// returns the number processed
func (h *Hub) Drain(queue *messagebus.Queue) int {
	n := 0
	for {
		select {
		case item := <-queue.Chan():
			h.process(item)
			n += 1
		default:
			return n
		}
	}
}

// Post - queue a function to run on the session goroutine
func Post(queue *messagebus.Queue, f func()) bool {
	return queue.Send("local", f)
}

func (h *Hub) process(item messagebus.Message) {
	switch data := item.Item.(type) {
	case channel.Packet:
		h.Deliver(data)
	case func():
		data()
	default:
		h.log.Warnf("from: %s  unexpected item: %T", item.From, item.Item)
	}
}
