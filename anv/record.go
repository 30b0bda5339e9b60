// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package anv

import (
	"encoding/binary"

	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
)

// Amount - a signed fixed point monetary value
type Amount int64

// address types eligible for lottery sampling
const (
	TypeRewardable1 byte = 1
	TypeRewardable2 byte = 2
)

// AddressANV - one aggregate value record
//
// the representative address and type are stamped from the most
// recent direct update of the address; ancestors reached by
// propagation keep their own stamp and only accumulate value
type AddressANV struct {
	AddressType byte            `json:"addressType"`
	Address     address.Address `json:"address"`
	Value       Amount          `json:"value"`
}

// record layout: type (1) ‖ representative address (20) ‖ value int64 big endian (8)
const packedLength = 1 + address.Length + 8

func (record AddressANV) pack() []byte {
	buffer := make([]byte, packedLength)
	buffer[0] = record.AddressType
	copy(buffer[1:], record.Address[:])
	binary.BigEndian.PutUint64(buffer[1+address.Length:], uint64(record.Value))
	return buffer
}

func unpack(buffer []byte) AddressANV {
	if packedLength != len(buffer) {
		fault.Panicf("anv: corrupt value record: %x", buffer)
	}

	record := AddressANV{
		AddressType: buffer[0],
		Value:       Amount(binary.BigEndian.Uint64(buffer[1+address.Length:])),
	}
	copy(record.Address[:], buffer[1:1+address.Length])
	return record
}

// IsRewardable - check if the record is eligible for lottery sampling
func (record AddressANV) IsRewardable() bool {
	return TypeRewardable1 == record.AddressType || TypeRewardable2 == record.AddressType
}
