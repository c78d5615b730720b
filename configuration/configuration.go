// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/fault"
)

// transports
const (
	TransportLoopback = "loopback"
	TransportZmq      = "zmq"
	TransportP2P      = "p2p"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultZmqPublicKeyFile  = "zmq.public"
	defaultZmqPrivateKeyFile = "zmq.private"
	defaultP2PKeyFile        = "p2p.private"

	defaultSnapshotDatabase = "snapshots.leveldb"

	defaultThrottleRate  = 100.0
	defaultThrottleBurst = 20

	defaultLogDirectory = "log"
	defaultLogFile      = "netsyncd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

var defaultLogLevels = LoglevelMap{
	logger.DefaultTag: "critical",
}

// ZmqType - curve keys are file names, each file holds tagged hex
type ZmqType struct {
	Listen        string `gluamapper:"listen" json:"listen"`
	Connect       string `gluamapper:"connect" json:"connect"`
	PublicKey     string `gluamapper:"public_key" json:"public_key"`
	PrivateKey    string `gluamapper:"private_key" json:"private_key"`
	PeerPublicKey string `gluamapper:"peer_public_key" json:"peer_public_key"`
}

// P2PType - libp2p node settings
type P2PType struct {
	Listen     []string `gluamapper:"listen" json:"listen"`
	Connect    string   `gluamapper:"connect" json:"connect"`
	PrivateKey string   `gluamapper:"private_key" json:"private_key"`
	Peer       string   `gluamapper:"peer" json:"peer"`
}

// ThrottleType - limit for best effort sends, zero rate disables
type ThrottleType struct {
	Rate  float64 `gluamapper:"rate" json:"rate"`
	Burst int     `gluamapper:"burst" json:"burst"`
}

// Configuration - contents of the daemon configuration file
type Configuration struct {
	DataDirectory    string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile          string               `gluamapper:"pidfile" json:"pidfile"`
	Identity         string               `gluamapper:"identity" json:"identity"`
	Transport        string               `gluamapper:"transport" json:"transport"`
	PeerDomain       string               `gluamapper:"peer_domain" json:"peer_domain"`
	SnapshotDatabase string               `gluamapper:"snapshot_database" json:"snapshot_database"`
	Zmq              ZmqType              `gluamapper:"zmq" json:"zmq"`
	P2P              P2PType              `gluamapper:"p2p" json:"p2p"`
	Throttle         ThrottleType         `gluamapper:"throttle" json:"throttle"`
	Logging          logger.Configuration `gluamapper:"logging" json:"logging"`
}

// LocalIdentity - decoded identity setting
func (c *Configuration) LocalIdentity() authority.Identity {
	identity, _ := authority.ParseIdentity(c.Identity)
	return identity
}

// Load - read, decode and verify a configuration file
func Load(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{
		DataDirectory:    defaultDataDirectory,
		PidFile:          "", // no PidFile by default
		Identity:         "a",
		Transport:        TransportLoopback,
		SnapshotDatabase: defaultSnapshotDatabase,

		Zmq: ZmqType{
			PublicKey:  defaultZmqPublicKeyFile,
			PrivateKey: defaultZmqPrivateKeyFile,
		},

		P2P: P2PType{
			PrivateKey: defaultP2PKeyFile,
		},

		Throttle: ThrottleType{
			Rate:  defaultThrottleRate,
			Burst: defaultThrottleBurst,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	if _, err := authority.ParseIdentity(options.Identity); nil != err {
		return nil, err
	}

	options.Transport = strings.ToLower(strings.TrimSpace(options.Transport))
	switch options.Transport {
	case TransportLoopback:
	case TransportZmq:
		if ("" == options.Zmq.Listen) == ("" == options.Zmq.Connect) {
			return nil, fault.ErrConnectionRequired
		}
	case TransportP2P:
	default:
		return nil, fault.ErrInvalidTransport
	}

	if options.Throttle.Rate < 0 || options.Throttle.Burst < 0 {
		return nil, fmt.Errorf("throttle: rate: %v  burst: %d must not be negative", options.Throttle.Rate, options.Throttle.Burst)
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	mustBeAbsolute := []*string{
		&options.SnapshotDatabase,
		&options.Zmq.PublicKey,
		&options.Zmq.PrivateKey,
		&options.P2P.PrivateKey,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = EnsureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
		&options.Zmq.PeerPublicKey,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// log file must be a plain name within the log directory
	switch filepath.Dir(options.Logging.File) {
	case "", ".":
	default:
		return nil, fmt.Errorf("files: %q is not plain name", options.Logging.File)
	}

	if err := os.MkdirAll(options.Logging.Directory, 0700); nil != err {
		return nil, err
	}

	return options, nil
}

// EnsureAbsolute - prefix a relative path with a directory
func EnsureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
