// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lottery

import (
	"encoding/binary"

	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/anv"
	"github.com/referral-network/referrald/fault"
	"github.com/referral-network/referrald/referral"
	"github.com/referral-network/referrald/storage"
)

// the heap size record has no natural key, only the pool prefix
var sizeKey = []byte{}

// AddAddressToLottery - submit a candidate draw for an address
//
// the weight is the address's current aggregate network value; an
// address with no value record, or a value of zero, is not eligible
//
// while the reservoir has free slots the candidate is always kept;
// once full it replaces the current minimum only if its weighted key
// is larger, otherwise it is silently discarded
func AddAddressToLottery(entropy referral.Digest, addr address.Address) error {
	globalData.Lock()
	defer globalData.Unlock()

	record := anv.GetANV(addr)
	if nil == record || record.Value <= 0 {
		return fault.ErrNotRewardable
	}

	// first 64 bits of the draw, as stored in a little endian uint256
	rand64 := binary.LittleEndian.Uint64(entropy[:8])

	key := NewWeightedKey(rand64, record.Value)

	size := GetLotteryHeapSize()

	if size < MaxReservoirSize {
		globalData.log.Debugf("add: %s  key: %s", addr, key)
		return insertLotteryAddress(key, addr)
	}

	minKey, ok := GetLotteryMinKey()
	if !ok {
		fault.Panicf("lottery: full reservoir with no minimum entry, size: %d", size)
	}

	if key.Cmp(minKey) > 0 {
		globalData.log.Debugf("replace min: %s  key: %s", addr, key)
		return replaceMin(Entry{Key: key, Address: addr})
	}

	// candidate ranked below every kept entry
	globalData.log.Debugf("discard: %s  key: %s", addr, key)
	return nil
}

// GetLotteryHeapSize - current occupied slot count
func GetLotteryHeapSize() uint64 {
	size, _ := storage.Pool.LotterySize.GetN(sizeKey)
	return size
}

// GetLotteryMinKey - the smallest kept weighted key
//
// reads the heap root at slot 0; second value is false if the
// reservoir is empty
func GetLotteryMinKey() (*WeightedKey, bool) {
	buffer := storage.Pool.LotterySlots.Get(slotKey(0))
	if nil == buffer {
		return nil, false
	}
	return unpackEntry(buffer).Key, true
}

// InsertLotteryAddress - low level heap insert
//
// fails with ErrReservoirFull at capacity; use AddAddressToLottery
// for the full reservoir policy
func InsertLotteryAddress(key *WeightedKey, addr address.Address) error {
	globalData.Lock()
	defer globalData.Unlock()
	return insertLotteryAddress(key, addr)
}

// internal insert, lock must be held
//
// sift-up from the new tail slot: move each parent down until the
// parent's key is below the candidate's, then write the candidate
// into the freed slot
func insertLotteryAddress(key *WeightedKey, addr address.Address) error {

	pos := GetLotteryHeapSize()

	if pos >= MaxReservoirSize {
		return fault.ErrReservoirFull
	}

	err := storage.Pool.LotterySize.PutN(sizeKey, pos+1)
	if nil != err {
		return err
	}

	for 0 != pos {
		parentPos := (pos - 1) / 2

		parentEntry := readSlot(parentPos)

		// found our spot
		if key.Cmp(parentEntry.Key) > 0 {
			break
		}

		// push the parent down since we are moving up
		err = writeSlot(pos, parentEntry)
		if nil != err {
			return err
		}

		pos = parentPos
	}

	return writeSlot(pos, Entry{Key: key, Address: addr})
}

// evict the minimum and place a new entry, lock must be held
//
// sift-down from the root: swap with the smaller child until the
// min-heap order is restored or a leaf is reached
func replaceMin(e Entry) error {
	size := GetLotteryHeapSize()
	if 0 == size {
		fault.Panicf("lottery: replace minimum of empty reservoir")
	}

	pos := uint64(0)
	for {
		left := 2*pos + 1
		if left >= size {
			break
		}

		smallest := left
		smallestEntry := readSlot(left)

		if right := left + 1; right < size {
			rightEntry := readSlot(right)
			if rightEntry.Key.Cmp(smallestEntry.Key) < 0 {
				smallest = right
				smallestEntry = rightEntry
			}
		}

		if e.Key.Cmp(smallestEntry.Key) <= 0 {
			break
		}

		// pull the smaller child up since we are moving down
		err := writeSlot(pos, smallestEntry)
		if nil != err {
			return err
		}

		pos = smallest
	}

	return writeSlot(pos, e)
}

// Entries - all occupied slots in heap order
//
// slot 0 holds the minimum; the rest are not sorted
func Entries() []Entry {
	globalData.Lock()
	defer globalData.Unlock()

	size := GetLotteryHeapSize()
	entries := make([]Entry, 0, size)
	for pos := uint64(0); pos < size; pos += 1 {
		entries = append(entries, readSlot(pos))
	}
	return entries
}

// Reset - clear all slots and the size counter
//
// used to rebuild the reservoir for a new reward period
func Reset() error {
	globalData.Lock()
	defer globalData.Unlock()

	size := GetLotteryHeapSize()
	for pos := uint64(0); pos < size; pos += 1 {
		err := storage.Pool.LotterySlots.Delete(slotKey(pos))
		if nil != err {
			return err
		}
	}
	return storage.Pool.LotterySize.PutN(sizeKey, 0)
}
