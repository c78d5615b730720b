// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package channel - contract between the sync primitives and a transport
package channel

import (
	"strings"

	"github.com/bitmark-inc/netsync/fault"
)

// ID - logical channel a packet travels on
type ID byte

// all possible channels
const (
	EventNoPayload   ID = 1
	EventWithPayload ID = 2
	ReplicatedValue  ID = 3
)

// Reliability - delivery tier requested from the transport
type Reliability byte

// all possible tiers
const (
	Reliable   Reliability = 1
	BestEffort Reliability = 2
)

// Sender - outbound half of a transport
//
// when no session is active Send must do nothing and return nil
type Sender interface {
	Send(packet []byte, id ID, reliability Reliability) error
}

// Packet - one inbound packet queued by a transport
type Packet struct {
	Channel ID
	Data    []byte
}

// IsValid - check for a known channel
func (id ID) IsValid() bool {
	return id >= EventNoPayload && id <= ReplicatedValue
}

// String - channel name
func (id ID) String() string {
	switch id {
	case EventNoPayload:
		return "event"
	case EventWithPayload:
		return "event-payload"
	case ReplicatedValue:
		return "replicated"
	default:
		return "*unknown*"
	}
}

// IsValid - check for a known tier
func (reliability Reliability) IsValid() bool {
	return Reliable == reliability || BestEffort == reliability
}

// String - tier name
func (reliability Reliability) String() string {
	switch reliability {
	case Reliable:
		return "reliable"
	case BestEffort:
		return "best-effort"
	default:
		return "*unknown*"
	}
}

// ParseReliability - tier from its name
func ParseReliability(s string) (Reliability, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "reliable":
		return Reliable, nil
	case "best-effort", "besteffort", "unreliable":
		return BestEffort, nil
	default:
		return 0, fault.ErrInvalidReliability
	}
}
