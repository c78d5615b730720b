// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error classes, shared error instances and the
// critical logging used before a panic
//
// every error is a single instance of one of the class types, so
// callers compare with == or test the class with the IsErrX helpers
package fault
