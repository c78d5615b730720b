// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

// Stream - list of subscribers to one kind of inbound notification
//
// emission walks a snapshot so a handler may unsubscribe itself or
// others while the stream is emitting
type Stream[H any] struct {
	entries []*entry[H]
}

type entry[H any] struct {
	handler H
	active  bool
}

// NewStream - create an empty stream
func NewStream[H any]() *Stream[H] {
	return &Stream[H]{}
}

// Subscribe - add a handler, the returned handle removes it again
func (s *Stream[H]) Subscribe(handler H) *Subscription {
	e := &entry[H]{
		handler: handler,
		active:  true,
	}
	s.entries = append(s.entries, e)
	return NewSubscription(func() bool {
		return s.remove(e)
	})
}

func (s *Stream[H]) remove(e *entry[H]) bool {
	if !e.active {
		return false
	}
	e.active = false
	for i, item := range s.entries {
		if item == e {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			break
		}
	}
	return true
}

// Emit - call f for each handler subscribed when emission started and
// still subscribed when its turn comes, returns the number called
func (s *Stream[H]) Emit(f func(H)) int {
	snapshot := make([]*entry[H], len(s.entries))
	copy(snapshot, s.entries)

	n := 0
	for _, e := range snapshot {
		if e.active {
			f(e.handler)
			n += 1
		}
	}
	return n
}

// Len - number of subscribed handlers
func (s *Stream[H]) Len() int {
	return len(s.entries)
}
