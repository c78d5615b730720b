// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package event

import (
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/fault"
)

// ordered list of bound listeners
//
// binding or unbinding while the list is firing is a programming error
// and panics with fault.ErrListenerMutationInDispatch; clearing while
// firing is deferred until the outermost fire returns
type listeners[F any] struct {
	entries      []*binding[F]
	dispatching  int
	pendingClear bool
}

type binding[F any] struct {
	listener F
}

func (l *listeners[F]) bind(listener F) *channel.Subscription {
	l.guard("bind")

	b := &binding[F]{
		listener: listener,
	}
	l.entries = append(l.entries, b)
	return channel.NewSubscription(func() bool {
		return l.unbind(b)
	})
}

// removes exactly one occurrence
func (l *listeners[F]) unbind(b *binding[F]) bool {
	for i, item := range l.entries {
		if item == b {
			l.guard("unbind")
			l.entries = append(l.entries[:i], l.entries[i+1:]...)
			return true
		}
	}
	return false
}

func (l *listeners[F]) guard(operation string) {
	if 0 != l.dispatching {
		fault.Panic("listener "+operation, fault.ErrListenerMutationInDispatch)
	}
}

func (l *listeners[F]) fire(call func(F)) int {
	l.dispatching += 1
	defer func() {
		l.dispatching -= 1
		if 0 == l.dispatching && l.pendingClear {
			l.entries = nil
			l.pendingClear = false
		}
	}()

	for _, b := range l.entries {
		call(b.listener)
	}
	return len(l.entries)
}

func (l *listeners[F]) clear() {
	if 0 != l.dispatching {
		l.pendingClear = true
		return
	}
	l.entries = nil
}

func (l *listeners[F]) count() int {
	return len(l.entries)
}
