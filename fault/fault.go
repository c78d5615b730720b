// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAlreadyInitialised         = ExistsError("already initialised")
	ErrConnectionRequired         = InvalidError("connect address is required")
	ErrInvalidConfiguration       = InvalidError("configuration must return a table")
	ErrInvalidDnsTxtRecord        = InvalidError("invalid DNS TXT record")
	ErrInvalidFingerprint         = InvalidError("invalid fingerprint")
	ErrInvalidIdentity            = InvalidError("invalid identity")
	ErrInvalidLoggerChannel       = InvalidError("invalid logger channel")
	ErrInvalidPacket              = InvalidError("invalid packet")
	ErrInvalidPeerDomain          = InvalidError("invalid peer domain")
	ErrInvalidPrivateKeyFile      = InvalidError("invalid private key file")
	ErrInvalidPublicKeyFile       = InvalidError("invalid public key file")
	ErrInvalidReliability         = InvalidError("invalid reliability")
	ErrInvalidRole                = InvalidError("invalid role")
	ErrInvalidTransport           = InvalidError("invalid transport")
	ErrKeyFileAlreadyExists       = ExistsError("key file already exists")
	ErrListenerMutationInDispatch = ProcessError("listener list changed while dispatching")
	ErrMissingSeparator           = InvalidError("missing separator")
	ErrNotInitialised             = NotFoundError("not initialised")
	ErrNoPeerRecord               = NotFoundError("no peer record found")
	ErrPayloadTooLarge            = LengthError("payload too large")
	ErrPrivateKeyIsNil            = InvalidError("private key is nil")
	ErrScalarType                 = InvalidError("scalar type requires the scalar form")
	ErrSessionTornDown            = ProcessError("session torn down")
	ErrSnapshotMissing            = NotFoundError("snapshot missing")
	ErrStringType                 = InvalidError("string type requires the scalar form")
	ErrTransportClosed            = ProcessError("transport closed")
	ErrUnexpectedPeer             = InvalidError("unexpected peer")
	ErrUnknownChannel             = InvalidError("unknown channel")
	ErrWrongFingerprintLength     = LengthError("wrong fingerprint length")
	ErrWrongKeyLength             = LengthError("wrong key length")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
