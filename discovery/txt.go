// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"encoding/hex"
	"strings"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/fault"
)

const supportedTag = "netsync=v1"

// Record - decoded TXT record
type Record struct {
	Address   string
	Identity  authority.Identity
	PublicKey []byte
}

// Parse - decode one TXT string
//
// unknown letters are ignored, repeated or missing required items are
// errors
func Parse(s string) (*Record, error) {
	r := &Record{}

	countA := 0
	countI := 0
	countK := 0

words:
	for i, w := range strings.Split(strings.TrimSpace(s), " ") {
		if 0 == i {
			if supportedTag == w {
				continue words
			}
			return nil, fault.ErrInvalidDnsTxtRecord
		}

		if "" == w {
			continue words
		}

		// require form: <letter>=<word>
		if len(w) < 3 || '=' != w[1] {
			return nil, fault.ErrInvalidDnsTxtRecord
		}

		value := w[2:]
		switch w[0] {
		case 'a':
			r.Address = value
			countA += 1

		case 'i':
			identity, err := authority.ParseIdentity(value)
			if nil != err {
				return nil, err
			}
			r.Identity = identity
			countI += 1

		case 'k':
			key, err := hex.DecodeString(value)
			if nil != err {
				return nil, fault.ErrInvalidDnsTxtRecord
			}
			r.PublicKey = key
			countK += 1

		default:
			continue words
		}
	}

	if 1 != countA || 1 != countI || countK > 1 {
		return nil, fault.ErrInvalidDnsTxtRecord
	}
	return r, nil
}
