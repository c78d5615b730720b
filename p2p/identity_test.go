// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/p2p"
)

func TestPrivateKeyRoundTrip(t *testing.T) {
	prvKey, err := p2p.GenerateKey()
	assert.Nil(t, err, "generate")

	text, err := p2p.EncodePrivateKey(prvKey)
	assert.Nil(t, err, "encode")

	decoded, err := p2p.DecodePrivateKey(text + "\n")
	assert.Nil(t, err, "decode")
	assert.True(t, prvKey.Equals(decoded), "same key")

	id1, err := p2p.PeerID(prvKey)
	assert.Nil(t, err, "id")
	id2, err := p2p.PeerID(decoded)
	assert.Nil(t, err, "decoded id")
	assert.Equal(t, id1, id2, "same id")
}

func TestNilPrivateKey(t *testing.T) {
	_, err := p2p.EncodePrivateKey(nil)
	assert.Equal(t, fault.ErrPrivateKeyIsNil, err, "encode")

	_, err = p2p.PeerID(nil)
	assert.Equal(t, fault.ErrPrivateKeyIsNil, err, "peer id")
}

func TestDecodeBadHex(t *testing.T) {
	_, err := p2p.DecodePrivateKey("not-hex")
	assert.NotNil(t, err, "decode")
}
