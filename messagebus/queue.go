// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync"
)

// DefaultSize - queue size when none is configured
const DefaultSize = 1000

// Message - one queued item
//
// Item is a channel.Packet from a transport or a func() posted locally
type Message struct {
	From string
	Item interface{}
}

// Queue - bounded FIFO with any number of writers and one reader
type Queue struct {
	queue chan Message
	done  chan struct{}
	once  sync.Once
}

// New - create a queue holding up to size messages
func New(size int) *Queue {
	if size <= 0 {
		size = DefaultSize
	}
	return &Queue{
		queue: make(chan Message, size),
		done:  make(chan struct{}),
	}
}

// Send - queue an item, blocking while the queue is full
//
// returns false if the queue is closed before the item could be queued
func (q *Queue) Send(from string, item interface{}) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.queue <- Message{From: from, Item: item}:
		return true
	case <-q.done:
		return false
	}
}

// TrySend - queue an item only if there is room
func (q *Queue) TrySend(from string, item interface{}) bool {
	select {
	case <-q.done:
		return false
	default:
	}

	select {
	case q.queue <- Message{From: from, Item: item}:
		return true
	default:
		return false
	}
}

// Chan - channel to read from
func (q *Queue) Chan() <-chan Message {
	return q.queue
}

// Done - closed when the queue stops accepting messages
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Len - number of queued messages
func (q *Queue) Len() int {
	return len(q.queue)
}

// Close - stop accepting messages and release blocked writers,
// messages already queued remain readable
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
	})
}
