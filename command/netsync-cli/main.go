// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
)

type metadata struct {
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {
	app := newApp(os.Stdout, os.Stderr)

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "netsync-cli"
	app.Usage = "netsync support tool"
	app.Version = version
	app.HideVersion = true

	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "fingerprint",
			Usage:     "show the wire fingerprint of one or more names",
			ArgsUsage: "NAME...",
			Action:    runFingerprint,
		},
		{
			Name:      "zmq-keypair",
			Usage:     "create a ZMQ curve key pair",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "public, p",
					Value: "zmq.public",
					Usage: " public key `FILE`",
				},
				cli.StringFlag{
					Name:  "private, s",
					Value: "zmq.private",
					Usage: " private key `FILE`",
				},
			},
			Action: runZmqKeyPair,
		},
		{
			Name:      "p2p-keypair",
			Usage:     "create a libp2p node key and show its peer ID",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "private, s",
					Value: "p2p.private",
					Usage: " private key `FILE`",
				},
			},
			Action: runP2PKeyPair,
		},
		{
			Name:      "whoami",
			Usage:     "show the identity and role a configuration gives",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config-file, c",
					Value: "",
					Usage: "*netsyncd configuration `FILE`",
				},
			},
			Action: runWhoAmI,
		},
		{
			Name:      "snapshot",
			Usage:     "show saved replicated values",
			ArgsUsage: "NAME...",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "config-file, c",
					Value: "",
					Usage: "*netsyncd configuration `FILE`",
				},
			},
			Action: runSnapshot,
		},
		{
			Name:  "version",
			Usage: "display netsync-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintln(c.App.Writer, version)
				return nil
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		c.App.Metadata["config"] = &metadata{
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		return nil
	}
	return app
}
