// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/configuration"
)

func loadConfiguration(c *cli.Context) (*configuration.Configuration, error) {
	fileName := c.String("config-file")
	if "" == fileName {
		return nil, fmt.Errorf("config-file is required")
	}
	return configuration.Load(fileName)
}

func runWhoAmI(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	config, err := loadConfiguration(c)
	if nil != err {
		return err
	}

	online := authority.NewStatic(config.LocalIdentity())
	offline := authority.NewStatic(config.LocalIdentity())
	online.SetActive(true)

	return printJson(m.w, struct {
		Identity    string `json:"identity"`
		Transport   string `json:"transport"`
		OnlineRole  string `json:"online_role"`
		OfflineRole string `json:"offline_role"`
	}{
		Identity:    config.LocalIdentity().String(),
		Transport:   config.Transport,
		OnlineRole:  authority.WhoAmI(online).String(),
		OfflineRole: authority.WhoAmI(offline).String(),
	})
}
