// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/fixtures"
	"github.com/bitmark-inc/netsync/registry"
)

type replica struct {
	name string
}

func (r *replica) Name() string                         { return r.name }
func (r *replica) Fingerprint() fingerprint.Fingerprint { return fingerprint.FromName(r.name) }
func (r *replica) Snapshot() ([]byte, error)            { return []byte(r.name), nil }
func (r *replica) Restore([]byte) error                 { return nil }

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

func TestRegisterTwiceFlagsOneCollision(t *testing.T) {
	r := registry.New()

	f1 := r.Register("door_opened")
	f2 := r.Register("door_opened")

	assert.Equal(t, f1, f2, "wrong fingerprint")
	assert.Equal(t, uint64(1), r.Collisions(), "wrong collision count")
	assert.Equal(t, 2, r.Count(), "wrong entry count")
	assert.Equal(t, []string{"door_opened", "door_opened"}, r.Names(f1), "wrong names")
}

func TestRegisterDistinctNames(t *testing.T) {
	r := registry.New()

	f1 := r.Register("alpha")
	f2 := r.Register("beta")

	assert.NotEqual(t, f1, f2, "distinct names share a fingerprint")
	assert.Equal(t, uint64(0), r.Collisions(), "wrong collision count")
	assert.Equal(t, fingerprint.FromName("alpha"), f1, "fingerprint not derived from name")
}

func TestUnregister(t *testing.T) {
	r := registry.New()

	f := r.Register("gamma")
	r.Register("gamma")
	r.Register("delta")

	assert.True(t, r.IsRegistered(f), "not registered")
	assert.False(t, r.Unregister(f, "delta"), "removed a name held by another fingerprint")

	assert.True(t, r.Unregister(f, "gamma"), "first unregister")
	assert.True(t, r.IsRegistered(f), "shared fingerprint released early")
	assert.Equal(t, []string{"gamma"}, r.Names(f), "wrong remaining names")
	assert.Equal(t, 2, r.Count(), "wrong entry count")

	assert.True(t, r.Unregister(f, "gamma"), "second unregister")
	assert.False(t, r.IsRegistered(f), "still registered")
	assert.Equal(t, 1, r.Count(), "wrong entry count")
	assert.False(t, r.Unregister(f, "gamma"), "third unregister removed an entry")

	// registering again after removal is not a collision
	before := r.Collisions()
	r.Register("gamma")
	assert.Equal(t, before, r.Collisions(), "re-register counted as collision")
}

func TestUnregisterKeepsOtherNamesOnFingerprint(t *testing.T) {
	r := registry.New()

	f := r.Register("hp")
	r.Register("hp")
	r.Register("hp")

	assert.True(t, r.Unregister(f, "hp"), "unregister")
	assert.Equal(t, []string{"hp", "hp"}, r.Names(f), "wrong remaining names")
	assert.Equal(t, 2, r.Count(), "wrong entry count")
}

func TestRegistriesAreIndependent(t *testing.T) {
	r1 := registry.New()
	r2 := registry.New()

	r1.Register("shared")
	r2.Register("shared")

	assert.Equal(t, uint64(0), r1.Collisions(), "wrong collision count in first registry")
	assert.Equal(t, uint64(0), r2.Collisions(), "wrong collision count in second registry")
}

func TestTrackAndUntrack(t *testing.T) {
	r := registry.New()

	a := &replica{name: "a"}
	b := &replica{name: "b"}
	r.Track(a)
	r.Track(b)

	assert.Equal(t, []registry.Replica{a, b}, r.Replicas(), "wrong replicas")

	r.Untrack(a)
	assert.Equal(t, []registry.Replica{b}, r.Replicas(), "wrong replicas after untrack")

	r.Untrack(a)
	assert.Equal(t, 1, len(r.Replicas()), "untrack of missing replica changed list")
}

func TestReset(t *testing.T) {
	r := registry.New()

	f := r.Register("epsilon")
	r.Register("epsilon")
	r.Track(&replica{name: "epsilon"})

	r.Reset()

	assert.False(t, r.IsRegistered(f), "still registered after reset")
	assert.Equal(t, 0, r.Count(), "wrong count after reset")
	assert.Equal(t, uint64(0), r.Collisions(), "wrong collisions after reset")
	assert.Equal(t, 0, len(r.Replicas()), "wrong replicas after reset")
}
