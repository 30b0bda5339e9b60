// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package anv - aggregate network value propagation
//
// each address carries one value record; applying a change to an
// address also applies it to every ancestor in the referral tree, so
// an address's value aggregates the contributions of its whole
// subtree
//
// a negative value after any step, or a parent chain longer than the
// cycle bound, indicates corrupted records or a caller bug and is
// fatal rather than recoverable
package anv

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/referral-network/referrald/fault"
)

// globals
type globalDataType struct {
	sync.Mutex // to ensure synchronised propagation
	log        *logger.L
}

// global storage
var globalData globalDataType

// Initialise - setup the propagation logging channel
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if nil != globalData.log {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("anv")
	if nil == globalData.log {
		return fault.ErrInvalidLoggerChannel
	}
	globalData.log.Info("starting…")

	return nil
}

// Finalise - shut down the propagation engine
func Finalise() {
	globalData.Lock()
	defer globalData.Unlock()

	if nil == globalData.log {
		return
	}
	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.log = nil
}
