// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tree

import (
	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
	"github.com/referral-network/referrald/referral"
	"github.com/referral-network/referrald/storage"
)

// GetReferral - point lookup of a referral record by its code hash
//
// returns nil if the referral was never inserted
func GetReferral(codeHash referral.Digest) *referral.Referral {
	packed := storage.Pool.Referrals.Get(codeHash[:])
	if nil == packed {
		return nil
	}
	r, err := referral.Packed(packed).Unpack()
	if nil != err {
		fault.Panicf("tree.GetReferral: corrupt record for: %s  error: %s", codeHash, err)
	}
	return r
}

// GetReferrer - the stored parent of an address
//
// second value is false if the address has no parent record at all;
// a root address is still "present" with the nil sentinel as parent
func GetReferrer(addr address.Address) (address.Address, bool) {
	buffer := storage.Pool.Parents.Get(addr[:])
	if nil == buffer {
		return address.Nil, false
	}
	parent, err := address.FromBytes(buffer)
	if nil != err {
		fault.Panicf("tree.GetReferrer: corrupt parent record for: %s  error: %s", addr, err)
	}
	return parent, true
}

// GetChildren - all direct children of an address, empty if none
func GetChildren(addr address.Address) []address.Address {
	return unpackChildren(storage.Pool.Children.Get(addr[:]))
}

// ReferralCodeExists - existence probe, no decoding cost
func ReferralCodeExists(codeHash referral.Digest) bool {
	return storage.Pool.Referrals.Has(codeHash[:])
}

// WalletIDExists - check if an address was ever linked into the tree
func WalletIDExists(addr address.Address) bool {
	return storage.Pool.Parents.Has(addr[:])
}

// InsertReferral - store a referral and update the derived indexes
//
// the parent address is resolved through the previous referral; if
// that referral has not been inserted yet the nil sentinel is used,
// tolerating out-of-order insertion
//
// a failed write returns an error with earlier writes left in place
func InsertReferral(r *referral.Referral) error {
	globalData.Lock()
	defer globalData.Unlock()

	// write referral by code hash
	err := storage.Pool.Referrals.Put(r.CodeHash[:], r.Pack())
	if nil != err {
		return err
	}

	// typically referrals are written in order so the parent referral
	// should resolve; the child to parent link is stored either way
	parent := address.Nil
	if parentReferral := GetReferral(r.PreviousReferral); nil != parentReferral {
		parent = parentReferral.PubKeyID
	}

	err = storage.Pool.Parents.Put(r.PubKeyID[:], parent[:])
	if nil != err {
		return err
	}

	// append to the children list of the parent address
	children := GetChildren(parent)
	children = append(children, r.PubKeyID)
	err = storage.Pool.Children.Put(parent[:], packChildren(children))
	if nil != err {
		return err
	}

	globalData.log.Debugf("insert referral: %s  address: %s  parent: %s", r.CodeHash, r.PubKeyID, parent)
	return nil
}

// RemoveReferral - reverse an insert
//
// erases the referral record and parent pointer and removes the
// address from the parent's children list
func RemoveReferral(r *referral.Referral) error {
	globalData.Lock()
	defer globalData.Unlock()

	err := storage.Pool.Referrals.Delete(r.CodeHash[:])
	if nil != err {
		return err
	}

	parent := address.Nil
	if parentReferral := GetReferral(r.PreviousReferral); nil != parentReferral {
		parent = parentReferral.PubKeyID
	}

	err = storage.Pool.Parents.Delete(r.PubKeyID[:])
	if nil != err {
		return err
	}

	children := GetChildren(parent)
	remaining := make([]address.Address, 0, len(children))
	for _, child := range children {
		if child != r.PubKeyID {
			remaining = append(remaining, child)
		}
	}
	err = storage.Pool.Children.Put(parent[:], packChildren(remaining))
	if nil != err {
		return err
	}

	globalData.log.Debugf("remove referral: %s  address: %s  parent: %s", r.CodeHash, r.PubKeyID, parent)
	return nil
}

// Walk - the ancestor chain of an address
//
// returns the chain starting at the address itself, ending at the
// last address before the nil sentinel; empty if the address was
// never linked into the tree
//
// a chain longer than MaxChainLevels means a cycle was injected into
// the parent pointers and is fatal
func Walk(addr address.Address) []address.Address {
	if !WalletIDExists(addr) {
		return nil
	}

	chain := make([]address.Address, 0, 8)
	current := addr
	for levels := 0; ; levels += 1 {
		if levels >= MaxChainLevels {
			fault.Panicf("tree.Walk: cycle detected walking up from: %s", addr)
		}

		chain = append(chain, current)

		parent, ok := GetReferrer(current)
		if !ok || parent.IsNil() {
			break
		}
		current = parent
	}
	return chain
}
