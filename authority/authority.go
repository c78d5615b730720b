// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package authority - decide which peer may originate an update
package authority

import (
	"strings"

	"github.com/bitmark-inc/netsync/fault"
)

// Role - coarse ownership of an event or value
type Role int

// all possible roles
const (
	None Role = iota
	PeerA
	PeerB
	Both
)

// Identity - which designated peer the local process is
type Identity int

// all possible identities
const (
	Unknown Identity = iota
	IdentityA
	IdentityB
)

// Oracle - reports the local position in the session
type Oracle interface {
	IsSessionActive() bool
	LocalIdentity() Identity
}

// Resolve - map a role to a predicate
//
// the predicate consults the oracle each time it is called, never
// caching, so a role swap during a session takes effect immediately
func Resolve(role Role, oracle Oracle) func() bool {
	switch role {
	case Both:
		return func() bool { return true }
	case PeerA:
		return func() bool { return is(oracle, IdentityA) }
	case PeerB:
		return func() bool { return is(oracle, IdentityB) }
	default:
		return func() bool { return false }
	}
}

// when offline every request is trusted
func is(oracle Oracle, identity Identity) bool {
	if nil == oracle || !oracle.IsSessionActive() {
		return true
	}
	return identity == oracle.LocalIdentity()
}

// WhoAmI - the role matching the local peer
func WhoAmI(oracle Oracle) Role {
	if nil == oracle || !oracle.IsSessionActive() {
		return Both
	}
	switch oracle.LocalIdentity() {
	case IdentityA:
		return PeerA
	case IdentityB:
		return PeerB
	default:
		return None
	}
}

// String - role name
func (role Role) String() string {
	switch role {
	case None:
		return "none"
	case PeerA:
		return "a"
	case PeerB:
		return "b"
	case Both:
		return "both"
	default:
		return "*unknown*"
	}
}

// ParseRole - role from its name
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return None, nil
	case "a", "peer-a", "peera":
		return PeerA, nil
	case "b", "peer-b", "peerb":
		return PeerB, nil
	case "both":
		return Both, nil
	default:
		return None, fault.ErrInvalidRole
	}
}

// String - identity name
func (identity Identity) String() string {
	switch identity {
	case IdentityA:
		return "a"
	case IdentityB:
		return "b"
	default:
		return "unknown"
	}
}

// ParseIdentity - identity from its name
func ParseIdentity(s string) (Identity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unknown":
		return Unknown, nil
	case "a":
		return IdentityA, nil
	case "b":
		return IdentityB, nil
	default:
		return Unknown, fault.ErrInvalidIdentity
	}
}
