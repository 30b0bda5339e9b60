// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tree

import (
	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
)

// children list record: the concatenation of child addresses
// order is append order, one entry per InsertReferral

func packChildren(children []address.Address) []byte {
	buffer := make([]byte, 0, len(children)*address.Length)
	for _, child := range children {
		buffer = append(buffer, child[:]...)
	}
	return buffer
}

func unpackChildren(buffer []byte) []address.Address {
	if 0 != len(buffer)%address.Length {
		fault.Panicf("tree: corrupt children record: %x", buffer)
	}

	children := make([]address.Address, 0, len(buffer)/address.Length)
	for i := 0; i < len(buffer); i += address.Length {
		var child address.Address
		copy(child[:], buffer[i:i+address.Length])
		children = append(children, child)
	}
	return children
}
