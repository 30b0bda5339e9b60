// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lottery

import (
	"math"
	"math/big"

	"github.com/referral-network/referrald/anv"
	"github.com/referral-network/referrald/fault"
)

// precision of the key arithmetic in bits
//
// the log-space keys of heavy addresses crowd together just below
// zero, so the final division is done in extended precision
const keyPrecision = 128

// log of the largest possible draw
var logMaxUint64 = math.Log(float64(math.MaxUint64))

// WeightedKey - the log-space sampling priority of a candidate
//
// always non-positive; a larger (closer to zero) key means a higher
// priority to stay in the reservoir
type WeightedKey struct {
	f big.Float
}

// NewWeightedKey - derive the priority from a 64 bit draw and a weight
//
// the draw is treated as a uniform value u = rand64 / (2^64 - 1) in
// (0,1], so log(u) = log(rand64) - log(2^64 - 1); the key is then
// log(u) / w
//
// weight must be positive; a zero draw is clamped to one to keep u
// inside (0,1]
func NewWeightedKey(rand64 uint64, weight anv.Amount) *WeightedKey {
	if weight <= 0 {
		fault.Panicf("lottery: weighted key with non positive weight: %d", weight)
	}
	if 0 == rand64 {
		rand64 = 1
	}

	key := &WeightedKey{}
	key.f.SetPrec(keyPrecision)
	key.f.SetFloat64(math.Log(float64(rand64)) - logMaxUint64)

	w := new(big.Float).SetPrec(keyPrecision).SetInt64(int64(weight))
	key.f.Quo(&key.f, w)

	// log of a value in (0,1] over a positive weight
	if key.f.Sign() > 0 {
		fault.Panicf("lottery: positive weighted key: %s", key)
	}
	return key
}

// Cmp - total order on keys: -1 if k < other, 0 if equal, +1 if k > other
func (k *WeightedKey) Cmp(other *WeightedKey) int {
	return k.f.Cmp(&other.f)
}

// Float64 - nearest double precision value, for display only
func (k *WeightedKey) Float64() float64 {
	f, _ := k.f.Float64()
	return f
}

// String - representation for use by the fmt package (for %s)
func (k *WeightedKey) String() string {
	return k.f.Text('g', 12)
}

// pack - exact binary form of the key
func (k *WeightedKey) pack() []byte {
	buffer, err := k.f.GobEncode()
	if nil != err {
		fault.Panicf("lottery: cannot encode weighted key: %s", err)
	}
	return buffer
}

// unpackWeightedKey - restore a key from its exact binary form
func unpackWeightedKey(buffer []byte) *WeightedKey {
	key := &WeightedKey{}
	err := key.f.GobDecode(buffer)
	if nil != err {
		fault.Panicf("lottery: corrupt weighted key: %x", buffer)
	}
	return key
}
