// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fixtures - shared test setup
//
// provides a throwaway logging directory and database for package
// tests that need real storage underneath
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"

	"github.com/referral-network/referrald/storage"
)

const (
	dir         = "testing"
	LogCategory = "testing"
)

// SetupTestLogger - start logging into the throwaway directory
func SetupTestLogger() {
	removeFiles()
	_ = os.Mkdir(dir, 0700)

	logging := logger.Configuration{
		Directory: dir,
		File:      fmt.Sprintf("%s.log", LogCategory),
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}

	// start logging
	_ = logger.Initialise(logging)
}

// TeardownTestLogger - stop logging and remove all test files
func TeardownTestLogger() {
	logger.Finalise()
	removeFiles()
}

// SetupStorage - open a fresh throwaway database
//
// must be called after SetupTestLogger
func SetupStorage() error {
	return storage.Initialise(filepath.Join(dir, "test"), storage.ReadWrite)
}

// TeardownStorage - close the throwaway database
//
// the files are removed by TeardownTestLogger
func TeardownStorage() {
	storage.Finalise()
}

func removeFiles() {
	err := os.RemoveAll(dir)
	if nil != err {
		fmt.Println("remove dir with error: ", err)
	}
}
