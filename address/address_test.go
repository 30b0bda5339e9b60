// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package address_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
)

func TestFromBytes(t *testing.T) {
	buffer := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a,
		0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14,
	}

	a, err := address.FromBytes(buffer)
	assert.NoError(t, err, "wrong FromBytes")
	assert.Equal(t, buffer, a[:], "wrong address bytes")

	_, err = address.FromBytes(buffer[:10])
	assert.Equal(t, fault.ErrAddressLength, err, "wrong error for short buffer")
}

func TestNilSentinel(t *testing.T) {
	assert.True(t, address.Nil.IsNil(), "nil sentinel is not nil")

	var a address.Address
	a[0] = 1
	assert.False(t, a.IsNil(), "wrong IsNil for non nil address")
}

func TestTextRoundTrip(t *testing.T) {
	var a address.Address
	for i := 0; i < address.Length; i += 1 {
		a[i] = byte(i + 1)
	}

	text, err := a.MarshalText()
	assert.NoError(t, err, "wrong MarshalText")
	assert.Equal(t, a.String(), string(text), "wrong text form")

	var b address.Address
	err = b.UnmarshalText(text)
	assert.NoError(t, err, "wrong UnmarshalText")
	assert.Equal(t, a, b, "address changed in round trip")
}
