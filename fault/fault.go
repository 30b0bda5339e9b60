// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type NotFoundError GenericError
type ProcessError GenericError

// common errors - keep in alphabetic order
var (
	ErrAddressLength        = InvalidError("address length is invalid")
	ErrAlreadyInitialised   = ExistsError("already initialised")
	ErrDigestLength         = InvalidError("digest length is invalid")
	ErrInvalidCount         = InvalidError("invalid count")
	ErrInvalidCursor        = InvalidError("invalid cursor")
	ErrInvalidLoggerChannel = InvalidError("invalid logger channel")
	ErrNotRewardable        = NotFoundError("address has no rewardable value")
	ErrReferralLength       = InvalidError("referral record length is invalid")
	ErrReservoirFull        = ProcessError("lottery reservoir is full")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }

// IsErrExists - determine if an existence error
func IsErrExists(e error) bool { _, ok := e.(ExistsError); return ok }

// IsErrInvalid - determine if an invalid data error
func IsErrInvalid(e error) bool { _, ok := e.(InvalidError); return ok }

// IsErrNotFound - determine if a not found error
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }

// IsErrProcess - determine if a process error
func IsErrProcess(e error) bool { _, ok := e.(ProcessError); return ok }
