// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec - payload serialisation for events and replicated values
package codec

import (
	"encoding/json"
	"reflect"

	"github.com/gogo/protobuf/proto"
)

// Codec - convert a value to and from its payload
type Codec[T any] interface {
	Encode(T) ([]byte, error)
	Decode([]byte) (T, error)
}

// JSON - text payloads
type JSON[T any] struct{}

// Encode - value to JSON
func (JSON[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

// Decode - JSON to value
func (JSON[T]) Decode(payload []byte) (T, error) {
	var value T
	err := json.Unmarshal(payload, &value)
	return value, err
}

// Proto - protocol buffer payloads, T is a message pointer type
type Proto[T proto.Message] struct{}

// Encode - message to wire format
func (Proto[T]) Encode(message T) ([]byte, error) {
	return proto.Marshal(message)
}

// Decode - wire format to a newly allocated message
func (Proto[T]) Decode(payload []byte) (T, error) {
	var zero T
	message := reflect.New(reflect.TypeOf(zero).Elem()).Interface().(T)
	err := proto.Unmarshal(payload, message)
	if nil != err {
		return zero, err
	}
	return message, nil
}
