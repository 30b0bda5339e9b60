// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tree - the referral tree store
//
// the tree has no native graph structure in the database; it is kept
// as flat records: the referral itself keyed by code hash, a parent
// pointer per address and a denormalised children list per address
//
// the derived parent/children indexes are rebuilt incrementally on
// every insert and remove; multi-record updates are serialised by a
// package lock but are not atomic in the database - a write failure
// part way through leaves earlier writes in place
package tree

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/referral-network/referrald/fault"
)

// MaxChainLevels - bound on any walk toward the root
//
// a walk exceeding this is treated as a cycle in the stored parent
// pointers and is a fatal database corruption
const MaxChainLevels = 1 << 20

// globals
type globalDataType struct {
	sync.Mutex // to ensure synchronised updates
	log        *logger.L
}

// global storage
var globalData globalDataType

// Initialise - setup the tree logging channel
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if nil != globalData.log {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("tree")
	if nil == globalData.log {
		return fault.ErrInvalidLoggerChannel
	}
	globalData.log.Info("starting…")

	return nil
}

// Finalise - shut down the tree store
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
