// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tree

import (
	"fmt"

	"github.com/referral-network/referrald/address"
	"github.com/referral-network/referrald/fault"
	"github.com/referral-network/referrald/storage"
)

// Audit - full graph consistency check
//
// scans the parent and children pools into an in-memory arena and
// verifies that the two derived indexes agree and that every parent
// chain terminates; the arena is never persisted, the flat records
// stay authoritative
//
// returns a process error describing the first inconsistency found
func Audit() error {
	globalData.Lock()
	defer globalData.Unlock()

	// child -> parent
	parents := make(map[address.Address]address.Address)
	cursor := storage.Pool.Parents.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		child, err := address.FromBytes(key)
		if nil != err {
			return err
		}
		parent, err := address.FromBytes(value)
		if nil != err {
			return err
		}
		parents[child] = parent
		return nil
	})
	if nil != err {
		return err
	}

	// parent -> children
	children := make(map[address.Address][]address.Address)
	cursor = storage.Pool.Children.NewFetchCursor()
	err = cursor.Map(func(key []byte, value []byte) error {
		parent, err := address.FromBytes(key)
		if nil != err {
			return err
		}
		children[parent] = unpackChildren(value)
		return nil
	})
	if nil != err {
		return err
	}

	// every parent pointer is mirrored exactly once in the children list
	for child, parent := range parents {
		count := 0
		for _, c := range children[parent] {
			if c == child {
				count += 1
			}
		}
		if 1 != count {
			return fault.ProcessError(fmt.Sprintf(
				"audit: address %s appears %d times under parent %s", child, count, parent))
		}
	}

	// every listed child points back at its parent
	for parent, list := range children {
		for _, child := range list {
			p, ok := parents[child]
			if !ok {
				return fault.ProcessError(fmt.Sprintf(
					"audit: listed child %s has no parent record", child))
			}
			if p != parent {
				return fault.ProcessError(fmt.Sprintf(
					"audit: child %s listed under %s but points at %s", child, parent, p))
			}
		}
	}

	// every chain reaches the root within the number of known addresses
	for child := range parents {
		current := child
		for steps := 0; ; steps += 1 {
			if steps > len(parents) {
				return fault.ProcessError(fmt.Sprintf(
					"audit: cycle in parent chain starting at %s", child))
			}
			parent, ok := parents[current]
			if !ok || parent.IsNil() {
				break
			}
			current = parent
		}
	}

	globalData.log.Infof("audit: %d addresses consistent", len(parents))
	return nil
}
