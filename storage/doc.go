// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintains a single LevelDB database split into namespaced pools
// by prefixing all keys with a single byte; this allows the
// iterator to perform cheap prefix-bounded scans of one pool
//
// first byte of key is the namespace prefix, the remainder is the
// natural key of the record
package storage
