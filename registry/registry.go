// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package registry - reserved fingerprints and live replicated values
//
// a registry is owned by the session root and handed to every event and
// value so collisions are detected per registry rather than per process
package registry

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/netsync/counter"
	"github.com/bitmark-inc/netsync/fingerprint"
)

// Replica - a replicated value as seen by persistence
type Replica interface {
	Name() string
	Fingerprint() fingerprint.Fingerprint
	Snapshot() ([]byte, error)
	Restore([]byte) error
}

// Registry - set of named registrations plus the replica instance list
type Registry struct {
	sync.RWMutex

	log        *logger.L
	names      map[fingerprint.Fingerprint][]string
	count      int
	collisions counter.Counter
	replicas   []Replica
}

// New - create an empty registry
func New() *Registry {
	return &Registry{
		log:   logger.New("registry"),
		names: make(map[fingerprint.Fingerprint][]string),
	}
}

// Register - derive and reserve the fingerprint of a name
//
// reuse of a fingerprint is tolerated: a warning is logged and the
// collision counted, then the duplicate entry is recorded anyway
func (r *Registry) Register(name string) fingerprint.Fingerprint {
	f := fingerprint.FromName(name)

	r.Lock()
	defer r.Unlock()

	if existing, ok := r.names[f]; ok && 0 != len(existing) {
		r.collisions.Increment()
		r.log.Warnf("fingerprint: %s of %q collides with: %q (expected only across a session reload)", f, name, existing)
	}
	r.names[f] = append(r.names[f], name)
	r.count += 1
	r.log.Debugf("register: %q -> %s", name, f)

	return f
}

// Unregister - remove one entry for a name under its fingerprint
//
// other names sharing the fingerprint keep it reserved; returns false
// if the name held no entry
func (r *Registry) Unregister(f fingerprint.Fingerprint, name string) bool {
	r.Lock()
	defer r.Unlock()

	names := r.names[f]
	for i, item := range names {
		if item != name {
			continue
		}
		if 1 == len(names) {
			delete(r.names, f)
		} else {
			r.names[f] = append(names[:i:i], names[i+1:]...)
		}
		r.count -= 1
		r.log.Debugf("unregister: %q -> %s  remaining: %d", name, f, len(names)-1)
		return true
	}
	return false
}

// IsRegistered - check if a fingerprint is reserved
func (r *Registry) IsRegistered(f fingerprint.Fingerprint) bool {
	r.RLock()
	defer r.RUnlock()
	return 0 != len(r.names[f])
}

// Names - names that were registered under a fingerprint
func (r *Registry) Names(f fingerprint.Fingerprint) []string {
	r.RLock()
	defer r.RUnlock()

	names := r.names[f]
	result := make([]string, len(names))
	copy(result, names)
	return result
}

// Count - total number of entries including duplicates
func (r *Registry) Count() int {
	r.RLock()
	defer r.RUnlock()
	return r.count
}

// Collisions - number of registrations that reused a fingerprint
func (r *Registry) Collisions() uint64 {
	return r.collisions.Uint64()
}

// Track - add a replica to the instance list
func (r *Registry) Track(replica Replica) {
	r.Lock()
	r.replicas = append(r.replicas, replica)
	r.Unlock()
}

// Untrack - remove a replica from the instance list
func (r *Registry) Untrack(replica Replica) {
	r.Lock()
	defer r.Unlock()

	for i, item := range r.replicas {
		if item == replica {
			r.replicas = append(r.replicas[:i], r.replicas[i+1:]...)
			return
		}
	}
}

// Replicas - copy of the instance list
func (r *Registry) Replicas() []Replica {
	r.RLock()
	defer r.RUnlock()

	result := make([]Replica, len(r.replicas))
	copy(result, r.replicas)
	return result
}

// Reset - drop every registration and instance
func (r *Registry) Reset() {
	r.Lock()
	defer r.Unlock()

	r.names = make(map[fingerprint.Fingerprint][]string)
	r.count = 0
	r.collisions.Reset()
	r.replicas = nil
	r.log.Info("reset")
}
