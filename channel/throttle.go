// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/netsync/counter"
)

// Throttle - sender that limits the rate of best effort packets
//
// reliable packets are never dropped
type Throttle struct {
	log     *logger.L
	next    Sender
	limiter *rate.Limiter
	dropped counter.Counter
}

// NewThrottle - wrap a sender with a token bucket of limit packets per
// second and the given burst
func NewThrottle(next Sender, limit rate.Limit, burst int) *Throttle {
	return &Throttle{
		log:     logger.New("throttle"),
		next:    next,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// Send - forward a packet or drop it when over budget
func (t *Throttle) Send(packet []byte, id ID, reliability Reliability) error {
	if BestEffort == reliability && !t.limiter.Allow() {
		n := t.dropped.Increment()
		t.log.Debugf("drop %s packet: %d bytes  total dropped: %d", id, len(packet), n)
		return nil
	}
	return t.next.Send(packet, id, reliability)
}

// Dropped - number of packets dropped so far
func (t *Throttle) Dropped() uint64 {
	return t.dropped.Uint64()
}
