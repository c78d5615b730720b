// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package authority

import (
	"sync"
)

// Static - oracle whose state is set by the transport and configuration
//
// transports report connection changes from their own goroutines so the
// state is guarded
type Static struct {
	sync.RWMutex
	active   bool
	identity Identity
}

// NewStatic - create an offline oracle with a fixed identity
func NewStatic(identity Identity) *Static {
	return &Static{
		identity: identity,
	}
}

// IsSessionActive - true while a peer is connected
func (s *Static) IsSessionActive() bool {
	s.RLock()
	defer s.RUnlock()
	return s.active
}

// LocalIdentity - the configured identity
func (s *Static) LocalIdentity() Identity {
	s.RLock()
	defer s.RUnlock()
	return s.identity
}

// SetActive - record session start or end
func (s *Static) SetActive(active bool) {
	s.Lock()
	s.active = active
	s.Unlock()
}

// SetIdentity - change the local identity
func (s *Static) SetIdentity(identity Identity) {
	s.Lock()
	s.identity = identity
	s.Unlock()
}

// Swap - reverse the two players
func (s *Static) Swap() Identity {
	s.Lock()
	defer s.Unlock()

	switch s.identity {
	case IdentityA:
		s.identity = IdentityB
	case IdentityB:
		s.identity = IdentityA
	}
	return s.identity
}
