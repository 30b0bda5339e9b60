// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lottery

import (
	"encoding/binary"

	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
	"github.com/referral-network/referrald/storage"
)

// Entry - one occupied reservoir slot
type Entry struct {
	Key     *WeightedKey
	Address address.Address
}

// slot record layout: key length uint16 BE ‖ packed key ‖ address (20)

func (e Entry) pack() []byte {
	packedKey := e.Key.pack()

	buffer := make([]byte, 2, 2+len(packedKey)+address.Length)
	binary.BigEndian.PutUint16(buffer, uint16(len(packedKey)))
	buffer = append(buffer, packedKey...)
	buffer = append(buffer, e.Address[:]...)
	return buffer
}

func unpackEntry(buffer []byte) Entry {
	if len(buffer) < 2+address.Length {
		fault.Panicf("lottery: corrupt slot record: %x", buffer)
	}
	keyLength := int(binary.BigEndian.Uint16(buffer))
	if 2+keyLength+address.Length != len(buffer) {
		fault.Panicf("lottery: corrupt slot record: %x", buffer)
	}

	e := Entry{
		Key: unpackWeightedKey(buffer[2 : 2+keyLength]),
	}
	copy(e.Address[:], buffer[2+keyLength:])
	return e
}

// slots are addressed by their position in the implicit binary heap
func slotKey(pos uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, pos)
	return key
}

// read an occupied slot; absence is heap corruption
func readSlot(pos uint64) Entry {
	buffer := storage.Pool.LotterySlots.Get(slotKey(pos))
	if nil == buffer {
		fault.Panicf("lottery: missing slot: %d", pos)
	}
	return unpackEntry(buffer)
}

func writeSlot(pos uint64, e Entry) error {
	return storage.Pool.LotterySlots.Put(slotKey(pos), e.pack())
}
