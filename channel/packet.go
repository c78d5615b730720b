// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package channel

import (
	"bytes"

	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
)

// separators between the fingerprint and the payload
//
// events and replicated values use different separators on the wire
const (
	PayloadSeparator byte = '|'
	ValueSeparator   byte = ';'
)

// Bare - packet carrying only a fingerprint
func Bare(f fingerprint.Fingerprint) []byte {
	text, _ := f.MarshalText()
	return text
}

// ParseBare - fingerprint from a packet that carries nothing else
func ParseBare(packet []byte) (fingerprint.Fingerprint, error) {
	return fingerprint.Parse(packet)
}

// Join - fingerprint + separator + payload
func Join(f fingerprint.Fingerprint, separator byte, payload []byte) []byte {
	buffer := make([]byte, 0, fingerprint.TextLength+1+len(payload))
	buffer = append(buffer, Bare(f)...)
	buffer = append(buffer, separator)
	return append(buffer, payload...)
}

// Split - break a packet at the first separator
//
// the payload may itself contain the separator
func Split(packet []byte, separator byte) (fingerprint.Fingerprint, []byte, error) {
	n := bytes.IndexByte(packet, separator)
	if n < 0 {
		return fingerprint.Fingerprint{}, nil, fault.ErrMissingSeparator
	}
	f, err := fingerprint.Parse(packet[:n])
	if nil != err {
		return fingerprint.Fingerprint{}, nil, err
	}
	return f, packet[n+1:], nil
}
