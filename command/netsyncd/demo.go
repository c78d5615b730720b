// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/event"
	"github.com/bitmark-inc/netsync/messagebus"
	"github.com/bitmark-inc/netsync/replica"
	"github.com/bitmark-inc/netsync/routine"
	"github.com/bitmark-inc/netsync/session"
)

const heartbeatInterval = 10 * time.Second

// status - replicated state owned by peer A
type status struct {
	Beats   uint64 `json:"beats"`
	Updated int64  `json:"updated"`
}

// note - payload of the notice routine
type note struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// the set of shared objects both peers construct with identical names
type shared struct {
	log    *logger.L
	hub    *session.Hub
	status *replica.Value[status]
	uptime *replica.Scalar[int64]
	ping   *event.Event
	notice *routine.Typed[note]
}

func newShared(hub *session.Hub, tag string) (*shared, error) {
	log := logger.New(tag)

	st, err := replica.New(hub, "netsyncd_status", channel.Reliable, status{}, nil)
	if nil != err {
		return nil, err
	}
	uptime, err := replica.NewScalar(hub, "netsyncd_uptime", channel.BestEffort, int64(0))
	if nil != err {
		return nil, err
	}
	notice, err := routine.NewTyped[note](hub, "netsyncd_notice", authority.Both, nil)
	if nil != err {
		return nil, err
	}

	s := &shared{
		log:    log,
		hub:    hub,
		status: st,
		uptime: uptime,
		ping:   event.New(hub, "netsyncd_ping"),
		notice: notice,
	}

	s.ping.Bind(func() {
		log.Infof("ping  status: %+v", s.status.Value())
	})
	notice.Bind(func(n note) {
		log.Infof("notice from: %s  text: %q", n.From, n.Text)
	})
	return s, nil
}

// one heartbeat, run on the session goroutine
func (s *shared) beat(start time.Time) {
	hub := s.hub

	current := s.status.Value()
	current.Beats += 1
	current.Updated = time.Now().Unix()
	if err := s.status.SetValue(current, hub.Authorise(authority.PeerA)); nil != err {
		s.log.Warnf("status error: %s", err)
	}

	if err := s.uptime.SetValue(int64(time.Since(start)/time.Second), hub.Authorise(authority.PeerA)); nil != err {
		s.log.Warnf("uptime error: %s", err)
	}

	s.ping.Invoke(hub.Authorise(authority.PeerB))
}

// say - send a notice from this peer
func (s *shared) say(text string) {
	identity := authority.WhoAmI(s.hub.Oracle())
	if _, err := s.notice.Invoke(note{From: identity.String(), Text: text}); nil != err {
		s.log.Warnf("notice error: %s", err)
	}
}

func (s *shared) dispose() {
	s.ping.Dispose()
	s.notice.Dispose()
}

// heartbeat - background process posting beats onto the session queue
func heartbeat(s *shared, queue *messagebus.Queue) func(interface{}, <-chan struct{}) {
	return func(args interface{}, shutdown <-chan struct{}) {
		start := time.Now()
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()

		session.Post(queue, func() { s.say("hello") })
	loop:
		for {
			select {
			case <-shutdown:
				break loop
			case <-ticker.C:
				session.Post(queue, func() { s.beat(start) })
			}
		}
	}
}
