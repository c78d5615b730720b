// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/p2p"
	"github.com/bitmark-inc/netsync/zmqutil"
)

func runZmqKeyPair(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	publicFile := c.String("public")
	privateFile := c.String("private")

	err := zmqutil.MakeKeyPair(publicFile, privateFile)
	if nil != err {
		return err
	}

	public, err := zmqutil.ReadPublicKeyFile(publicFile)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "public: %q  private: %q\n", publicFile, privateFile)
	}
	return printJson(m.w, struct {
		PublicFile  string `json:"public_file"`
		PrivateFile string `json:"private_file"`
		PublicKey   string `json:"public_key"`
	}{
		PublicFile:  publicFile,
		PrivateFile: privateFile,
		PublicKey:   fmt.Sprintf("%x", public),
	})
}

func runP2PKeyPair(c *cli.Context) error {
	m := c.App.Metadata["config"].(*metadata)

	privateFile := c.String("private")
	if _, err := os.Stat(privateFile); nil == err {
		return fault.ErrKeyFileAlreadyExists
	}

	prvKey, err := p2p.GenerateKey()
	if nil != err {
		return err
	}
	text, err := p2p.EncodePrivateKey(prvKey)
	if nil != err {
		return err
	}
	id, err := p2p.PeerID(prvKey)
	if nil != err {
		return err
	}

	err = os.WriteFile(privateFile, []byte(text+"\n"), 0600)
	if nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "private: %q\n", privateFile)
	}
	return printJson(m.w, struct {
		PrivateFile string `json:"private_file"`
		PeerID      string `json:"peer_id"`
	}{
		PrivateFile: privateFile,
		PeerID:      id.Pretty(),
	})
}
