// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package discovery

import (
	"net"
	"strings"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/miekg/dns"

	"github.com/bitmark-inc/netsync/fault"
)

const (
	configFile      = "/etc/resolv.conf"
	maximumServers  = 3
	defaultInterval = 10 * time.Minute
	minimumInterval = 30 * time.Second
)

// LookupFunc - fetch the TXT strings of a domain with their TTL
type LookupFunc func(domain string) ([]string, time.Duration, error)

// LookupTXT - query the resolvers from resolv.conf for TXT records,
// the first server to answer wins
func LookupTXT(domain string) ([]string, time.Duration, error) {
	conf, err := dns.ClientConfigFromFile(configFile)
	if nil != err {
		return nil, 0, err
	}

	servers := conf.Servers
	if len(servers) > maximumServers {
		servers = servers[:maximumServers]
	}

	lastErr := error(fault.ErrNoPeerRecord)
	for _, server := range servers {
		s := net.JoinHostPort(server, conf.Port)
		c := dns.Client{}
		msg := dns.Msg{}
		msg.SetQuestion(dns.Fqdn(domain), dns.TypeTXT)

		r, _, err := c.Exchange(&msg, s)
		if nil != err {
			lastErr = err
			continue
		}

		texts := []string{}
		ttl := uint32(0)
		for _, rr := range r.Answer {
			txt, ok := rr.(*dns.TXT)
			if !ok {
				continue
			}
			texts = append(texts, strings.Join(txt.Txt, ""))
			if 0 == ttl || txt.Hdr.Ttl < ttl {
				ttl = txt.Hdr.Ttl
			}
		}
		if 0 != len(texts) {
			return texts, time.Duration(ttl) * time.Second, nil
		}
	}
	return nil, 0, lastErr
}

// Finder - background lookup reporting every valid record
type Finder struct {
	log    *logger.L
	domain string
	lookup LookupFunc
	found  func(*Record)
}

// New - create a finder, a nil lookup uses LookupTXT
func New(log *logger.L, domain string, lookup LookupFunc, found func(*Record)) (*Finder, error) {
	if "" == strings.TrimSpace(domain) {
		return nil, fault.ErrInvalidPeerDomain
	}
	if nil == lookup {
		lookup = LookupTXT
	}
	return &Finder{
		log:    log,
		domain: domain,
		lookup: lookup,
		found:  found,
	}, nil
}

// Refresh - one lookup, returns the interval until the next
func (f *Finder) Refresh() time.Duration {
	texts, ttl, err := f.lookup(f.domain)
	if nil != err {
		f.log.Warnf("lookup: %q  error: %s", f.domain, err)
		return defaultInterval
	}

	for i, text := range texts {
		r, err := Parse(text)
		if nil != err {
			f.log.Debugf("result[%d]: ignoring: %q  error: %s", i, text, err)
			continue
		}
		f.log.Infof("result[%d]: address: %q  identity: %s", i, r.Address, r.Identity)
		f.found(r)
	}

	switch {
	case 0 == ttl:
		return defaultInterval
	case ttl < minimumInterval:
		return minimumInterval
	}
	return ttl
}

// Run - background processing interface
func (f *Finder) Run(args interface{}, shutdown <-chan struct{}) {
	f.log.Info("starting…")
	timer := time.After(0)

loop:
	for {
		select {
		case <-timer:
			timer = time.After(f.Refresh())
		case <-shutdown:
			break loop
		}
	}
	f.log.Info("stopped")
}
