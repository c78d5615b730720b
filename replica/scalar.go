// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package replica

import (
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/codec"
	"github.com/bitmark-inc/netsync/session"
)

// Primitive - types that replicate through Scalar
type Primitive interface {
	~bool |
		~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64 |
		~string
}

// Scalar - replicated boolean, number or string
type Scalar[T Primitive] struct {
	*Value[T]
}

// NewScalar - create a replicated scalar holding initial
func NewScalar[T Primitive](hub *session.Hub, name string, reliability channel.Reliability, initial T) (*Scalar[T], error) {
	v, err := newValue[T](hub, name, reliability, initial, codec.JSON[T]{})
	if nil != err {
		return nil, err
	}
	return &Scalar[T]{Value: v}, nil
}
