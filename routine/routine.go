// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package routine - remote events owned by a role
//
// a routine carries its own authorisation so callers invoke it without
// building a predicate each time
package routine

import (
	"reflect"
	"runtime"
	"strings"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/codec"
	"github.com/bitmark-inc/netsync/event"
	"github.com/bitmark-inc/netsync/session"
)

const namePrefix = "net_routine_"

// Routine - event without payload plus the role allowed to fire it
type Routine struct {
	event     *event.Event
	role      authority.Role
	authorise func() bool
}

// New - routine with an explicit name
func New(hub *session.Hub, name string, role authority.Role) *Routine {
	return &Routine{
		event:     event.New(hub, name),
		role:      role,
		authorise: hub.Authorise(role),
	}
}

// FromFunc - routine named after a function and bound to it
func FromFunc(hub *session.Hub, f func(), role authority.Role) *Routine {
	r := New(hub, NameOf(f), role)
	r.Bind(f)
	return r
}

// NameOf - derived name of a function: the prefix followed by the lower
// case symbol name including its package path and receiver
func NameOf(f interface{}) string {
	symbol := runtime.FuncForPC(reflect.ValueOf(f).Pointer()).Name()
	return namePrefix + strings.ToLower(symbol)
}

// Role - the owning role
func (r *Routine) Role() authority.Role {
	return r.role
}

// Name - the registered name
func (r *Routine) Name() string {
	return r.event.Name()
}

// Bind - add a listener
func (r *Routine) Bind(listener func()) *channel.Subscription {
	return r.event.Bind(listener)
}

// Invoke - fire if the local peer holds the role, returns whether it fired
func (r *Routine) Invoke() bool {
	return r.event.Invoke(r.authorise)
}

// Dispose - release the underlying event
func (r *Routine) Dispose() {
	r.event.Dispose()
}

// Typed - routine carrying a value
type Typed[T any] struct {
	event     *event.Typed[T]
	role      authority.Role
	authorise func() bool
}

// NewTyped - typed routine with an explicit name
func NewTyped[T any](hub *session.Hub, name string, role authority.Role, c codec.Codec[T]) (*Typed[T], error) {
	e, err := event.NewTyped[T](hub, name, c)
	if nil != err {
		return nil, err
	}
	return &Typed[T]{
		event:     e,
		role:      role,
		authorise: hub.Authorise(role),
	}, nil
}

// TypedFromFunc - typed routine named after a function and bound to it
func TypedFromFunc[T any](hub *session.Hub, f func(T), role authority.Role) (*Typed[T], error) {
	r, err := NewTyped[T](hub, NameOf(f), role, nil)
	if nil != err {
		return nil, err
	}
	r.Bind(f)
	return r, nil
}

// Role - the owning role
func (r *Typed[T]) Role() authority.Role {
	return r.role
}

// Name - the registered name
func (r *Typed[T]) Name() string {
	return r.event.Name()
}

// Bind - add a listener
func (r *Typed[T]) Bind(listener func(T)) *channel.Subscription {
	return r.event.Bind(listener)
}

// Invoke - fire with a value if the local peer holds the role
func (r *Typed[T]) Invoke(value T) (bool, error) {
	return r.event.Invoke(r.authorise, value)
}

// Dispose - release the underlying event
func (r *Typed[T]) Dispose() {
	r.event.Dispose()
}
