// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package referral - the referral record and its serialised form
//
// a referral is an immutable record stating that the account
// identified by PubKeyID was introduced through the referral code
// whose hash is CodeHash, which was itself created from the referral
// identified by PreviousReferral; a root referral carries the
// sentinel RootDigest as its previous referral
package referral

import (
	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
)

// Referral - the unpacked referral record
type Referral struct {
	CodeHash         Digest          `json:"codeHash"`
	PreviousReferral Digest          `json:"previousReferral"`
	PubKeyID         address.Address `json:"pubKeyId"`
}

// Packed - packed records are just a byte slice
type Packed []byte

// total bytes in a packed referral
const packedLength = DigestLength + DigestLength + address.Length

// Pack - concatenate fields in order as the struct above
func (r *Referral) Pack() Packed {
	message := make(Packed, 0, packedLength)
	message = append(message, r.CodeHash[:]...)
	message = append(message, r.PreviousReferral[:]...)
	message = append(message, r.PubKeyID[:]...)
	return message
}

// Unpack - decode a packed referral record
func (record Packed) Unpack() (*Referral, error) {
	if packedLength != len(record) {
		return nil, fault.ErrReferralLength
	}

	r := &Referral{}
	n := copy(r.CodeHash[:], record[:DigestLength])
	n += copy(r.PreviousReferral[:], record[n:n+DigestLength])
	copy(r.PubKeyID[:], record[n:])
	return r, nil
}
