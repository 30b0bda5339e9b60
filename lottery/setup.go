// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package lottery - bounded weighted reservoir over the value records
//
// implements Efraimidis-Spirakis weighted random sampling: each
// candidate address draws a uniform random value u in (0,1] and is
// ranked by u^(1/w) where w is its aggregate network value; only the
// MaxReservoirSize best ranked candidates are kept
//
// the ranking is computed in log space, log(u)/w, which preserves the
// order while staying numerically stable across the many orders of
// magnitude that w can span
//
// the kept candidates form a min-heap persisted one entry per keyed
// slot, so the worst kept candidate is always at slot 0 and a full
// reservoir can evict in O(log n) point operations
package lottery

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/referral-network/referrald/fault"
)

// MaxReservoirSize - the bound on kept lottery entries
const MaxReservoirSize = 1000

// globals
type globalDataType struct {
	sync.Mutex // to ensure synchronised reservoir updates
	log        *logger.L
}

// global storage
var globalData globalDataType

// Initialise - setup the lottery logging channel
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if nil != globalData.log {
		return fault.ErrAlreadyInitialised
	}

	globalData.log = logger.New("lottery")
	if nil == globalData.log {
		return fault.ErrInvalidLoggerChannel
	}
	globalData.log.Info("starting…")

	return nil
}

// Finalise - shut down the lottery
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
