// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// referral-dump - read-only inspection of a referral database
//
// dumps the referral, value and lottery namespaces as JSON
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/referral-network/referrald/anv"
	"github.com/referral-network/referrald/lottery"
	"github.com/referral-network/referrald/referral"
	"github.com/referral-network/referrald/storage"
)

var version = "0.1.0"

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	app := cli.NewApp()
	app.Name = "referral-dump"
	app.Usage = "inspect a referral database"
	app.Version = version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "database, d",
			Value: "",
			Usage: "*database path prefix, as given to the daemon",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "referrals",
			Usage: "dump all referral records",
			Action: func(c *cli.Context) error {
				return withDatabase(c, dumpReferrals)
			},
		},
		{
			Name:  "anvs",
			Usage: "dump all aggregate network value records",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "rewardable, r",
					Usage: " only sampling eligible records",
				},
			},
			Action: func(c *cli.Context) error {
				if c.Bool("rewardable") {
					return withDatabase(c, dumpRewardableANVs)
				}
				return withDatabase(c, dumpANVs)
			},
		},
		{
			Name:  "lottery",
			Usage: "dump the lottery reservoir",
			Action: func(c *cli.Context) error {
				return withDatabase(c, dumpLottery)
			},
		},
	}

	err := app.Run(os.Args)
	if nil != err {
		exitwithstatus.Message("Error: %s\n", err)
	}
}

// open the database read-only around a dump routine
func withDatabase(c *cli.Context, dump func() error) error {
	database := c.GlobalString("database")
	if "" == database {
		return fmt.Errorf("database path is required")
	}

	logging := logger.Configuration{
		Directory: os.TempDir(),
		File:      "referral-dump.log",
		Size:      1048576,
		Count:     2,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	err := logger.Initialise(logging)
	if nil != err {
		return err
	}
	defer logger.Finalise()

	err = storage.Initialise(database, storage.ReadOnly)
	if nil != err {
		return err
	}
	defer storage.Finalise()

	return dump()
}

func dumpReferrals() error {
	referrals := make([]*referral.Referral, 0, 64)

	cursor := storage.Pool.Referrals.NewFetchCursor()
	err := cursor.Map(func(key []byte, value []byte) error {
		r, err := referral.Packed(value).Unpack()
		if nil != err {
			return err
		}
		referrals = append(referrals, r)
		return nil
	})
	if nil != err {
		return err
	}
	return printJSON(referrals)
}

func dumpANVs() error {
	return printJSON(anv.GetAllANVs())
}

func dumpRewardableANVs() error {
	return printJSON(anv.GetAllRewardableANVs())
}

// lottery display form
type lotteryInfo struct {
	Size    uint64         `json:"size"`
	MinKey  string         `json:"minKey,omitempty"`
	Entries []lotteryEntry `json:"entries"`
}

type lotteryEntry struct {
	Address string `json:"address"`
	Key     string `json:"weightedKey"`
}

func dumpLottery() error {
	info := lotteryInfo{
		Size:    lottery.GetLotteryHeapSize(),
		Entries: make([]lotteryEntry, 0, 16),
	}
	if minKey, ok := lottery.GetLotteryMinKey(); ok {
		info.MinKey = minKey.String()
	}
	for _, e := range lottery.Entries() {
		info.Entries = append(info.Entries, lotteryEntry{
			Address: e.Address.String(),
			Key:     e.Key.String(),
		})
	}
	return printJSON(info)
}

func printJSON(v interface{}) error {
	buffer, err := json.MarshalIndent(v, "", "  ")
	if nil != err {
		return err
	}
	fmt.Printf("%s\n", buffer)
	return nil
}
