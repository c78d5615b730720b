// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fingerprint - 128 bit routing keys derived from names
package fingerprint

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/netsync/fault"
)

// Length - number of bytes in a fingerprint
const Length = 16

// TextLength - number of characters in the text form
const TextLength = 2 * Length

// Fingerprint - SHAKE-128 digest of a name
type Fingerprint [Length]byte

// FromName - derive the fingerprint of a name
//
// the result is identical for the same name in every process so two
// peers agree on a routing key without negotiation
func FromName(name string) Fingerprint {
	var f Fingerprint
	sha3.ShakeSum128(f[:], []byte(name))
	return f
}

// Parse - convert the text form back to a fingerprint
func Parse(text []byte) (Fingerprint, error) {
	var f Fingerprint
	err := f.UnmarshalText(text)
	return f, err
}

// String - hex text used on the wire
func (fingerprint Fingerprint) String() string {
	return hex.EncodeToString(fingerprint[:])
}

// MarshalText - convert fingerprint to hex text
func (fingerprint Fingerprint) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(fingerprint))
	buffer := make([]byte, size)
	hex.Encode(buffer, fingerprint[:])
	return buffer, nil
}

// UnmarshalText - convert hex text to fingerprint
func (fingerprint *Fingerprint) UnmarshalText(s []byte) error {
	if TextLength != len(s) {
		return fault.ErrWrongFingerprintLength
	}
	_, err := hex.Decode(fingerprint[:], s)
	if nil != err {
		return fault.ErrInvalidFingerprint
	}
	return nil
}

// IsZero - true for the unset fingerprint
func (fingerprint Fingerprint) IsZero() bool {
	return Fingerprint{} == fingerprint
}
