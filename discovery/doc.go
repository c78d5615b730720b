// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package discovery - find the peer's address from a DNS TXT record
//
// record format:
//
//	netsync=v1 a=<address> i=<a|b> k=<hex public key>
//
// the address is whatever the configured transport dials: a ZMQ
// endpoint or a libp2p multiaddr; k is optional and only used by the
// ZMQ transport
package discovery
