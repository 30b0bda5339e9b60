// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package referral

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	"github.com/referral-network/referrald/fault"
)

// DigestLength - number of bytes in the digest
const DigestLength = 32

// Digest - type for a referral code hash
// stored as fixed size byte array
// to convert to bytes just use d[:]
type Digest [DigestLength]byte

// RootDigest - the sentinel previous-referral digest marking a tree root
var RootDigest Digest

// NewDigest - create a digest from a byte slice
func NewDigest(record []byte) Digest {
	return sha3.Sum256(record)
}

// DigestFromBytes - convert a byte slice to a digest
func DigestFromBytes(buffer []byte) (Digest, error) {
	var d Digest
	if DigestLength != len(buffer) {
		return d, fault.ErrDigestLength
	}
	copy(d[:], buffer)
	return d, nil
}

// IsRoot - check for the sentinel digest
func (digest Digest) IsRoot() bool {
	return digest == RootDigest
}

// String - convert a binary digest to hex string for use by the fmt package (for %s)
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString - convert a binary digest to hex string for use by the fmt package (for %#v)
func (digest Digest) GoString() string {
	return "<SHA3-256:" + hex.EncodeToString(digest[:]) + ">"
}

// MarshalText - convert a digest to hex text
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(DigestLength)
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText - convert hex text to a digest
func (digest *Digest) UnmarshalText(s []byte) error {
	if hex.EncodedLen(DigestLength) != len(s) {
		return fault.ErrDigestLength
	}
	buffer := make([]byte, hex.DecodedLen(len(s)))
	_, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	copy(digest[:], buffer)
	return nil
}
