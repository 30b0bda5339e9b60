// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address

import (
	"github.com/mr-tron/base58"

	"github.com/referral-network/referrald/fault"
)

// Length - number of bytes in an address
//
// the size of a public key hash
const Length = 20

// Address - the binary identity of an account
//
// doubles as a node identity in the referral tree and as the natural
// key into the ANV and lottery pools
// to convert to bytes just use a[:]
type Address [Length]byte

// Nil - the sentinel address
//
// used as the parent of a tree root to mean "no parent"
var Nil Address

// FromBytes - convert a byte slice to an address
func FromBytes(buffer []byte) (Address, error) {
	var a Address
	if Length != len(buffer) {
		return a, fault.ErrAddressLength
	}
	copy(a[:], buffer)
	return a, nil
}

// IsNil - check for the sentinel address
func (a Address) IsNil() bool {
	return a == Nil
}

// String - base58 representation for use by the fmt package (for %s)
func (a Address) String() string {
	return base58.Encode(a[:])
}

// GoString - representation for use by the fmt package (for %#v)
func (a Address) GoString() string {
	return "<address:" + base58.Encode(a[:]) + ">"
}

// MarshalText - convert an address to base58 text
func (a Address) MarshalText() ([]byte, error) {
	return []byte(base58.Encode(a[:])), nil
}

// UnmarshalText - convert base58 text to an address
func (a *Address) UnmarshalText(s []byte) error {
	buffer, err := base58.Decode(string(s))
	if nil != err {
		return err
	}
	if Length != len(buffer) {
		return fault.ErrAddressLength
	}
	copy(a[:], buffer)
	return nil
}
