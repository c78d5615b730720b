// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/background"
	"github.com/bitmark-inc/netsync/channel"
	"github.com/bitmark-inc/netsync/configuration"
	"github.com/bitmark-inc/netsync/discovery"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/loopback"
	"github.com/bitmark-inc/netsync/messagebus"
	"github.com/bitmark-inc/netsync/registry"
	"github.com/bitmark-inc/netsync/session"
	"github.com/bitmark-inc/netsync/store"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if nil != err {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		fmt.Printf("%s: version: %s\n", program, version)
		return
	}

	if len(options["help"]) > 0 || 0 != len(arguments) {
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE\n", program)
		return
	}

	if 1 != len(options["config-file"]) {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := configuration.Load(configurationFile)
	if nil != err {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); nil != err {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	if err = fault.Initialise(); nil != err {
		exitwithstatus.Message("%s: fault setup failed with error: %s", program, err)
	}
	defer fault.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if "" != theConfiguration.PidFile {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	identity := theConfiguration.LocalIdentity()
	log.Infof("identity: %s  transport: %s", identity, theConfiguration.Transport)

	oracle := authority.NewStatic(identity)
	queue := messagebus.New(messagebus.DefaultSize)
	processes := background.Processes{}

	// peer record from DNS, used to fill in a missing connect address
	var peerRecord *discovery.Record
	if "" != theConfiguration.PeerDomain {
		finder, err := discovery.New(logger.New("discovery"), theConfiguration.PeerDomain, nil, func(r *discovery.Record) {
			if r.Identity == identity {
				log.Warnf("peer record claims our identity: %s", r.Identity)
				return
			}
			if nil == peerRecord {
				peerRecord = r
			}
		})
		if nil != err {
			log.Criticalf("discovery error: %s", err)
			exitwithstatus.Message("discovery error: %s", err)
		}
		finder.Refresh()
		processes = append(processes, finder)
	}

	// the network transport, or an in-process peer for loopback
	var sender channel.Sender
	var mirror *session.Hub
	var mirrorQueue *messagebus.Queue

	switch theConfiguration.Transport {
	case configuration.TransportLoopback:
		mirrorQueue = messagebus.New(messagebus.DefaultSize)
		link := loopback.New(queue, mirrorQueue)

		mirrorOracle := authority.NewStatic(identity)
		mirrorOracle.Swap()

		link.A.SetNotify(oracle.SetActive)
		link.B.SetNotify(mirrorOracle.SetActive)
		link.Connect()

		sender = link.A
		mirror = session.New(registry.New(), link.B, mirrorOracle)

	default:
		t, err := newTransport(log, theConfiguration, queue, peerRecord)
		if nil != err {
			log.Criticalf("transport error: %s", err)
			exitwithstatus.Message("transport error: %s", err)
		}
		t.SetNotify(func(connected bool) {
			session.Post(queue, func() {
				oracle.SetActive(connected)
			})
		})
		sender = t
		processes = append(processes, t)
	}

	if theConfiguration.Throttle.Rate > 0 {
		sender = channel.NewThrottle(sender, rate.Limit(theConfiguration.Throttle.Rate), theConfiguration.Throttle.Burst)
	}

	hub := session.New(registry.New(), sender, oracle)

	objects, err := newShared(hub, "shared")
	if nil != err {
		log.Criticalf("shared objects error: %s", err)
		exitwithstatus.Message("shared objects error: %s", err)
	}
	defer objects.dispose()

	// restore the previous run's replicated values before any traffic
	snapshots, err := store.Open(theConfiguration.SnapshotDatabase)
	if nil != err {
		log.Criticalf("snapshot store error: %s", err)
		exitwithstatus.Message("snapshot store error: %s", err)
	}
	defer snapshots.Close()

	if _, err := snapshots.Restore(hub.Registry().Replicas()); nil != err {
		log.Errorf("snapshot restore error: %s", err)
	}

	// identity changes take effect on the session goroutine
	watcher, err := configuration.NewWatcher(logger.New("watcher"), configurationFile, func(c *configuration.Configuration) {
		session.Post(queue, func() {
			oracle.SetIdentity(c.LocalIdentity())
			log.Infof("identity now: %s", c.LocalIdentity())
		})
	})
	if nil != err {
		log.Errorf("configuration watcher error: %s", err)
	} else {
		processes = append(processes, watcher)
	}

	processes = append(processes, background.ProcessFunc(heartbeat(objects, queue)))

	// network side first, stopped before the hub
	network := background.Start(processes, nil)
	pump := background.Start(background.Processes{hub}, queue)

	var mirrorPump *background.T
	if nil != mirror {
		mirrorObjects, err := newShared(mirror, "mirror")
		if nil != err {
			log.Criticalf("mirror objects error: %s", err)
			exitwithstatus.Message("mirror objects error: %s", err)
		}
		defer mirrorObjects.dispose()
		mirrorPump = background.Start(background.Processes{
			mirror,
			background.ProcessFunc(heartbeat(mirrorObjects, mirrorQueue)),
		}, mirrorQueue)
	}

	// wait for CTRL-C before shutting down to allow manual testing
	if 0 == len(options["quiet"]) {
		fmt.Printf("\n\nWaiting for CTRL-C (SIGINT) or 'kill <pid>' (SIGTERM)…")
	}

	// turn Signals into channel messages
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
	if 0 == len(options["quiet"]) {
		fmt.Printf("\nreceived signal: %v\n", sig)
		fmt.Printf("\nshutting down…\n")
	}

	log.Info("shutting down…")
	network.Stop()
	if nil != mirrorPump {
		mirrorPump.Stop()
		mirror.Drain(mirrorQueue)
		mirror.Teardown()
	}
	pump.Stop()

	// the pump has stopped so this goroutine now owns the hub
	hub.Drain(queue)
	hub.Teardown()
	queue.Close()

	if _, err := snapshots.Save(hub.Registry().Replicas()); nil != err {
		log.Errorf("snapshot save error: %s", err)
	}

	s := hub.Statistics()
	log.Infof("sent: %d  errors: %d  received: %d  dropped: %d  anomalies: %d", s.Sent, s.SendErrors, s.Received, s.Dropped, s.Anomalies)
}
