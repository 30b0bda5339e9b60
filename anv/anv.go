// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anv

import (
	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
	"github.com/referral-network/referrald/storage"
	"github.com/referral-network/referrald/tree"
)

// UpdateANV - apply a change to an address and all of its ancestors
//
// change may be negative for a debit; the starting address has its
// type and representative re-stamped, ancestors only accumulate
//
// a write failure aborts the walk and is returned; already written
// ancestors are not compensated, so the caller must treat an error
// as "state may be partially updated"
func UpdateANV(addressType byte, startAddress address.Address, change Amount) error {
	globalData.Lock()
	defer globalData.Unlock()

	globalData.log.Debugf("update: %d %s %+d", addressType, startAddress, change)

	current := startAddress
	for levels := 0; ; levels += 1 {

		// a chain this long can only be a cycle in the parent records
		if levels >= tree.MaxChainLevels {
			fault.Panicf("anv.UpdateANV: cycle detected walking up from: %s", startAddress)
		}

		// an address may not have a record yet so a value of 0 is assumed
		record := AddressANV{Address: current}
		if buffer := storage.Pool.ANV.Get(current[:]); nil != buffer {
			record = unpack(buffer)
		}

		if 0 == levels {
			record.AddressType = addressType
			record.Address = startAddress
		}

		record.Value += change

		globalData.log.Debugf("update: level: %d  address: %s  value: %d", levels, current, record.Value)

		if record.Value < 0 {
			fault.Panicf("anv.UpdateANV: negative value: %d for: %s  change: %+d", record.Value, current, change)
		}

		err := storage.Pool.ANV.Put(current[:], record.pack())
		if nil != err {
			// no rollback of already processed ancestors; if this
			// write failed a rollback write would fail as well
			return err
		}

		parent, ok := tree.GetReferrer(current)
		if !ok || parent.IsNil() {
			break
		}
		current = parent
	}

	return nil
}

// GetANV - point lookup of an aggregate value record
//
// returns nil if the address has never been updated
func GetANV(addr address.Address) *AddressANV {
	buffer := storage.Pool.ANV.Get(addr[:])
	if nil == buffer {
		return nil
	}
	record := unpack(buffer)
	return &record
}

// GetAllANVs - scan the whole value namespace
//
// order is store iteration order, not address order
func GetAllANVs() []AddressANV {
	return scan(func(AddressANV) bool { return true })
}

// GetAllRewardableANVs - scan restricted to sampling eligible types
func GetAllRewardableANVs() []AddressANV {
	return scan(AddressANV.IsRewardable)
}

func scan(keep func(AddressANV) bool) []AddressANV {
	records := make([]AddressANV, 0, 64)

	cursor := storage.Pool.ANV.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		record := unpack(value)
		if keep(record) {
			records = append(records, record)
		}
		return nil
	})
	if nil != err {
		fault.Panicf("anv.scan: iteration failed: %s", err)
	}
	return records
}
