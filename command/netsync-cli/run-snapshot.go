// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/store"
)

type snapshotItem struct {
	Name        string                  `json:"name"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	Payload     string                  `json:"payload,omitempty"`
	Missing     bool                    `json:"missing,omitempty"`
}

func runSnapshot(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if 0 == c.NArg() {
		return fmt.Errorf("at least one name is required")
	}

	config, err := loadConfiguration(c)
	if nil != err {
		return err
	}

	// the store logs, send it to the configured log directory
	logging := config.Logging
	logging.File = "netsync-cli.log"
	logging.Console = false
	if err := logger.Initialise(logging); nil != err {
		return err
	}
	defer logger.Finalise()

	s, err := store.Open(config.SnapshotDatabase)
	if nil != err {
		return err
	}
	defer s.Close()

	if m.verbose {
		fmt.Fprintf(m.e, "database: %q  entries: %d\n", config.SnapshotDatabase, s.Count())
	}

	items := make([]snapshotItem, 0, c.NArg())
	for _, name := range c.Args() {
		f := fingerprint.FromName(name)
		item := snapshotItem{
			Name:        name,
			Fingerprint: f,
		}
		data, err := s.Get(f)
		switch err {
		case nil:
			item.Payload = string(data)
		case fault.ErrSnapshotMissing:
			item.Missing = true
		default:
			return err
		}
		items = append(items, item)
	}
	return printJson(m.w, items)
}
