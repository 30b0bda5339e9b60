// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lottery_test

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/anv"
	"github.com/referral-network/referrald/fault"
	"github.com/referral-network/referrald/fixtures"
	"github.com/referral-network/referrald/lottery"
	"github.com/referral-network/referrald/referral"
	"github.com/referral-network/referrald/tree"
)

func setup(t *testing.T) {
	fixtures.SetupTestLogger()
	err := fixtures.SetupStorage()
	require.NoError(t, err, "storage initialise error")
	err = tree.Initialise()
	require.NoError(t, err, "tree initialise error")
	err = anv.Initialise()
	require.NoError(t, err, "anv initialise error")
	err = lottery.Initialise()
	require.NoError(t, err, "lottery initialise error")
}

func teardown(t *testing.T) {
	lottery.Finalise()
	anv.Finalise()
	tree.Finalise()
	fixtures.TeardownStorage()
	fixtures.TeardownTestLogger()
}

func makeAddress(n uint32) address.Address {
	var a address.Address
	binary.BigEndian.PutUint32(a[:4], n)
	return a
}

// an entropy value whose first 64 bits decode to the given draw
func makeEntropy(rand64 uint64) referral.Digest {
	var d referral.Digest
	binary.LittleEndian.PutUint64(d[:8], rand64)
	return d
}

// deterministic filler draw, kept well below 2^32 + 1 so every filler
// key stays clearly negative
func fillerRand(i uint64) uint64 {
	return 3 + i*2654435761%0xffffffff
}

// verify the min-heap property over all occupied slots
func checkHeapOrder(t *testing.T, entries []lottery.Entry) {
	for i := 1; i < len(entries); i += 1 {
		parent := (i - 1) / 2
		assert.True(t, entries[parent].Key.Cmp(entries[i].Key) <= 0,
			"heap order violated: slot %d key %s > slot %d key %s",
			parent, entries[parent].Key, i, entries[i].Key)
	}
}

func TestWeightedKeyOrdering(t *testing.T) {
	lowWeight := lottery.NewWeightedKey(1<<32, 100)
	highWeight := lottery.NewWeightedKey(1<<32, 1000000)
	assert.True(t, highWeight.Cmp(lowWeight) > 0, "heavier weight did not rank higher")

	lowDraw := lottery.NewWeightedKey(1<<16, 100)
	highDraw := lottery.NewWeightedKey(1<<48, 100)
	assert.True(t, highDraw.Cmp(lowDraw) > 0, "larger draw did not rank higher")

	// keys are never positive, even for the extreme draw
	top := lottery.NewWeightedKey(^uint64(0), 1)
	assert.True(t, top.Float64() <= 0, "positive weighted key")

	// a zero draw is clamped, not rejected
	bottom := lottery.NewWeightedKey(0, 100)
	assert.True(t, bottom.Cmp(top) < 0, "clamped zero draw did not rank lowest")
}

func TestInsertAndMinKey(t *testing.T) {
	setup(t)
	defer teardown(t)

	assert.Equal(t, uint64(0), lottery.GetLotteryHeapSize(), "new reservoir not empty")
	_, ok := lottery.GetLotteryMinKey()
	assert.False(t, ok, "unexpected minimum in empty reservoir")

	// weights all 100, draws increasing: the smallest draw is the minimum
	draws := []uint64{1 << 40, 1 << 20, 1 << 50, 1 << 30, 1 << 10}
	for i, draw := range draws {
		err := lottery.InsertLotteryAddress(lottery.NewWeightedKey(draw, 100), makeAddress(uint32(i)))
		require.NoError(t, err, "insert error")
	}

	assert.Equal(t, uint64(len(draws)), lottery.GetLotteryHeapSize(), "wrong heap size")

	minKey, ok := lottery.GetLotteryMinKey()
	require.True(t, ok, "no minimum")
	expected := lottery.NewWeightedKey(1<<10, 100)
	assert.Equal(t, 0, minKey.Cmp(expected), "wrong minimum key")

	checkHeapOrder(t, lottery.Entries())
}

func TestHeapOrderAfterManyInserts(t *testing.T) {
	setup(t)
	defer teardown(t)

	for i := uint64(0); i < 100; i += 1 {
		err := lottery.InsertLotteryAddress(
			lottery.NewWeightedKey(fillerRand(i), anv.Amount(1+i%7)),
			makeAddress(uint32(i)))
		require.NoError(t, err, "insert error")
	}

	entries := lottery.Entries()
	require.Equal(t, 100, len(entries), "wrong entry count")
	checkHeapOrder(t, entries)
}

func TestCandidateEligibility(t *testing.T) {
	setup(t)
	defer teardown(t)

	// no value record at all
	err := lottery.AddAddressToLottery(makeEntropy(1<<32), makeAddress(1))
	assert.Equal(t, fault.ErrNotRewardable, err, "wrong error for missing record")

	// record with zero value
	addr := makeAddress(2)
	require.NoError(t, anv.UpdateANV(anv.TypeRewardable1, addr, 0), "update error")
	err = lottery.AddAddressToLottery(makeEntropy(1<<32), addr)
	assert.Equal(t, fault.ErrNotRewardable, err, "wrong error for zero value")

	assert.Equal(t, uint64(0), lottery.GetLotteryHeapSize(), "ineligible candidate was kept")
}

// fill past capacity and exercise the replace-on-full policy
func TestReservoirBoundAndReplacement(t *testing.T) {
	setup(t)
	defer teardown(t)

	// fill to capacity with clearly negative keys (weight 100)
	for i := uint64(0); i < lottery.MaxReservoirSize; i += 1 {
		err := lottery.InsertLotteryAddress(
			lottery.NewWeightedKey(fillerRand(i), 100),
			makeAddress(uint32(i)))
		require.NoError(t, err, "fill error")
	}
	require.Equal(t, uint64(lottery.MaxReservoirSize), lottery.GetLotteryHeapSize(), "wrong full size")

	// the low level insert refuses past the bound
	err := lottery.InsertLotteryAddress(lottery.NewWeightedKey(1<<32, 100), makeAddress(9999))
	assert.Equal(t, fault.ErrReservoirFull, err, "wrong error at capacity")

	minBefore, ok := lottery.GetLotteryMinKey()
	require.True(t, ok, "no minimum")

	// a feeble candidate (weight 1) ranks below every kept entry: discarded
	weak := makeAddress(10001)
	require.NoError(t, anv.UpdateANV(anv.TypeRewardable1, weak, 1), "update error")
	require.NoError(t, lottery.AddAddressToLottery(makeEntropy(1<<32), weak), "add error")

	assert.Equal(t, uint64(lottery.MaxReservoirSize), lottery.GetLotteryHeapSize(), "size changed on discard")
	minAfter, ok := lottery.GetLotteryMinKey()
	require.True(t, ok, "no minimum")
	assert.Equal(t, 0, minBefore.Cmp(minAfter), "minimum changed on discard")
	for _, e := range lottery.Entries() {
		assert.NotEqual(t, weak, e.Address, "discarded candidate was kept")
	}

	// a heavy candidate (weight 10^12) ranks above every kept entry:
	// it evicts the minimum
	strong := makeAddress(10002)
	require.NoError(t, anv.UpdateANV(anv.TypeRewardable1, strong, 1000000000000), "update error")
	require.NoError(t, lottery.AddAddressToLottery(makeEntropy(1<<32), strong), "add error")

	assert.Equal(t, uint64(lottery.MaxReservoirSize), lottery.GetLotteryHeapSize(), "size changed on replace")

	entries := lottery.Entries()
	checkHeapOrder(t, entries)

	found := false
	for _, e := range entries {
		if strong == e.Address {
			found = true
		}
	}
	assert.True(t, found, "strong candidate was not kept")

	minAfter, ok = lottery.GetLotteryMinKey()
	require.True(t, ok, "no minimum")
	assert.True(t, minAfter.Cmp(minBefore) > 0, "old minimum was not evicted")
}

func TestReset(t *testing.T) {
	setup(t)
	defer teardown(t)

	for i := uint64(0); i < 10; i += 1 {
		err := lottery.InsertLotteryAddress(
			lottery.NewWeightedKey(fillerRand(i), 100),
			makeAddress(uint32(i)))
		require.NoError(t, err, "insert error")
	}

	require.NoError(t, lottery.Reset(), "reset error")

	assert.Equal(t, uint64(0), lottery.GetLotteryHeapSize(), "reservoir not empty after reset")
	_, ok := lottery.GetLotteryMinKey()
	assert.False(t, ok, "minimum survived reset")
	assert.Empty(t, lottery.Entries(), "entries survived reset")
}

func TestDraw(t *testing.T) {
	setup(t)
	defer teardown(t)

	// a mix of rewardable and non rewardable records
	for i := uint32(0); i < 8; i += 1 {
		addressType := byte(i % 4) // types 0..3, half are rewardable
		err := anv.UpdateANV(addressType, makeAddress(i), anv.Amount(100*int64(i+1)))
		require.NoError(t, err, "update error")
	}

	seed := referral.NewDigest([]byte("reward period 1"))
	require.NoError(t, lottery.Draw(seed), "draw error")

	entries := lottery.Entries()
	require.Equal(t, 4, len(entries), "wrong winner count")
	checkHeapOrder(t, entries)

	collect := func(entries []lottery.Entry) map[address.Address]string {
		m := make(map[address.Address]string)
		for _, e := range entries {
			m[e.Address] = e.Key.String()
		}
		return m
	}
	first := collect(entries)

	// the same seed over the same records reproduces the sample
	require.NoError(t, lottery.Reset(), "reset error")
	require.NoError(t, lottery.Draw(seed), "second draw error")
	assert.Equal(t, first, collect(lottery.Entries()), "draw is not reproducible")

	// a different seed yields different keys
	require.NoError(t, lottery.Reset(), "reset error")
	require.NoError(t, lottery.Draw(referral.NewDigest([]byte("reward period 2"))), "third draw error")
	different := collect(lottery.Entries())
	require.Equal(t, 4, len(different), "wrong winner count")

	same := 0
	for addr, key := range first {
		if different[addr] == key {
			same += 1
		}
	}
	assert.NotEqual(t, 4, same, "keys did not change with the seed")
}

// exercise the documented walk of a real reward flow end to end
func TestEndToEnd(t *testing.T) {
	setup(t)
	defer teardown(t)

	// build a small referral chain
	previous := referral.RootDigest
	for i := 0; i < 4; i += 1 {
		r := &referral.Referral{
			CodeHash:         referral.NewDigest([]byte(fmt.Sprintf("e2e-code-%d", i))),
			PreviousReferral: previous,
			PubKeyID:         makeAddress(uint32(i + 1)),
		}
		require.NoError(t, tree.InsertReferral(r), "insert referral error")
		previous = r.CodeHash
	}

	// credit the leaf, everything up the chain becomes rewardable
	require.NoError(t, anv.UpdateANV(anv.TypeRewardable1, makeAddress(4), 1000), "update error")
	for i := uint32(1); i <= 4; i += 1 {
		require.NoError(t, anv.UpdateANV(anv.TypeRewardable1, makeAddress(i), 1), "stamp error")
	}

	require.NoError(t, lottery.Draw(referral.NewDigest([]byte("e2e seed"))), "draw error")

	entries := lottery.Entries()
	assert.Equal(t, 4, len(entries), "wrong winner count")
	checkHeapOrder(t, entries)
}
