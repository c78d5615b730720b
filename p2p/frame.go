// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2p

import (
	"bufio"
	"encoding/binary"
	"io"

	proto "github.com/gogo/protobuf/proto"

	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/fault"
)

// largest packet accepted from a stream
const maximumFrameSize = 65536

// pack - channel byte, varint length, packet
func pack(id channel.ID, packet []byte) []byte {
	length := proto.EncodeVarint(uint64(len(packet)))
	frame := make([]byte, 0, 1+len(length)+len(packet))
	frame = append(frame, byte(id))
	frame = append(frame, length...)
	return append(frame, packet...)
}

// writeFrame - pack and write one frame
//
// broken is true when a write error left part of the frame on the
// stream; the reader is then out of step and the stream must be reset
func writeFrame(w io.Writer, id channel.ID, packet []byte) (broken bool, err error) {
	frame := pack(id, packet)
	n, err := w.Write(frame)
	if nil != err {
		return 0 < n && n < len(frame), err
	}
	return false, nil
}

// unpack - read the next frame from a stream
func unpack(r *bufio.Reader) (channel.Packet, error) {
	id, err := r.ReadByte()
	if nil != err {
		return channel.Packet{}, err
	}
	if !channel.ID(id).IsValid() {
		return channel.Packet{}, fault.ErrUnknownChannel
	}

	length, err := binary.ReadUvarint(r)
	if nil != err {
		return channel.Packet{}, err
	}
	if length > maximumFrameSize {
		return channel.Packet{}, fault.ErrInvalidPacket
	}

	data := make([]byte, length)
	_, err = io.ReadFull(r, data)
	if nil != err {
		return channel.Packet{}, err
	}

	return channel.Packet{
		Channel: channel.ID(id),
		Data:    data,
	}, nil
}
