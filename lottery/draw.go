// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lottery

import (
	"github.com/referral-network/referrald/anv"
	"github.com/referral-network/referrald/fault"
	"github.com/referral-network/referrald/referral"
)

// Draw - feed every rewardable address through the reservoir
//
// each address gets an independent draw derived from the shared
// entropy seed hashed together with the address, so a run over the
// same seed and the same value records is reproducible
func Draw(seed referral.Digest) error {
	for _, record := range anv.GetAllRewardableANVs() {

		entropy := referral.NewDigest(append(seed[:], record.Address[:]...))

		err := AddAddressToLottery(entropy, record.Address)
		if nil == err {
			continue
		}
		if fault.IsErrNotFound(err) {
			// rewardable type but zero value, skip
			continue
		}
		return err
	}
	return nil
}
