// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

// Subscription - handle for one subscribed handler or bound listener
type Subscription struct {
	release func() bool
}

// NewSubscription - wrap a release function
//
// release reports whether anything was actually removed
func NewSubscription(release func() bool) *Subscription {
	return &Subscription{
		release: release,
	}
}

// Unsubscribe - remove the handler, true only for the call that removed it
//
// the handle is only spent once release returns, so a release that
// panics leaves it usable for a later call
func (s *Subscription) Unsubscribe() bool {
	if nil == s || nil == s.release {
		return false
	}
	ok := s.release()
	s.release = nil
	return ok
}

// Active - true until Unsubscribe has been called
func (s *Subscription) Active() bool {
	return nil != s && nil != s.release
}
