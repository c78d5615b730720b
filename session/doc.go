// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package session - the root object of a two peer session
//
// a Hub owns the fingerprint registry, the outbound sender, the identity
// oracle and the receive streams that events and replicated values
// subscribe to.
//
// a Hub is not safe for concurrent use: bind, invoke, set and inbound
// delivery all run on one goroutine, normally the one executing Run,
// with other goroutines posting work through the message queue
package session
