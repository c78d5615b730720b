// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/netsync/fingerprint"
)

type fingerprintItem struct {
	Name        string                  `json:"name"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
}

func runFingerprint(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	if 0 == c.NArg() {
		return fmt.Errorf("at least one name is required")
	}

	items := make([]fingerprintItem, 0, c.NArg())
	for _, name := range c.Args() {
		f := fingerprint.FromName(name)
		if m.verbose {
			fmt.Fprintf(m.e, "name: %q  fingerprint: %s\n", name, f)
		}
		items = append(items, fingerprintItem{
			Name:        name,
			Fingerprint: f,
		})
	}
	return printJson(m.w, items)
}
