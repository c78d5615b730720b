// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"crypto/rand"
	"encoding/hex"
	"strings"

	crypto "github.com/libp2p/go-libp2p-core/crypto"
	peerlib "github.com/libp2p/go-libp2p-core/peer"

	"github.com/bitmark-inc/netsync/fault"
)

// GenerateKey - a random Ed25519 node key
func GenerateKey() (crypto.PrivKey, error) {
	prvKey, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if nil != err {
		return nil, err
	}
	return prvKey, nil
}

// EncodePrivateKey - marshal a private key to hex text
func EncodePrivateKey(prvKey crypto.PrivKey) (string, error) {
	if nil == prvKey {
		return "", fault.ErrPrivateKeyIsNil
	}
	data, err := crypto.MarshalPrivateKey(prvKey)
	if nil != err {
		return "", err
	}
	return hex.EncodeToString(data), nil
}

// DecodePrivateKey - hex text back to a private key
func DecodePrivateKey(text string) (crypto.PrivKey, error) {
	data, err := hex.DecodeString(strings.TrimSpace(text))
	if nil != err {
		return nil, err
	}
	return crypto.UnmarshalPrivateKey(data)
}

// PeerID - the ID other nodes see for this key
func PeerID(prvKey crypto.PrivKey) (peerlib.ID, error) {
	if nil == prvKey {
		return "", fault.ErrPrivateKeyIsNil
	}
	return peerlib.IDFromPrivateKey(prvKey)
}
