// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package routine_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/netsync/authority"
	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fixtures"
	"github.com/bitmark-inc/netsync/loopback"
	"github.com/bitmark-inc/netsync/messagebus"
	"github.com/bitmark-inc/netsync/registry"
	"github.com/bitmark-inc/netsync/routine"
	"github.com/bitmark-inc/netsync/session"
)

func TestMain(m *testing.M) {
	fixtures.SetupTestLogger()
	rc := m.Run()
	fixtures.TeardownTestLogger()
	os.Exit(rc)
}

var opened int

func OpenGate() {
	opened += 1
}

func TestNameOf(t *testing.T) {
	name := routine.NameOf(OpenGate)

	assert.True(t, strings.HasPrefix(name, "net_routine_"), "missing prefix: %s", name)
	assert.True(t, strings.HasSuffix(name, "routine_test.opengate"), "wrong symbol: %s", name)
	assert.Equal(t, strings.ToLower(name), name, "name not lower case")
}

func TestRoleControlsInvoke(t *testing.T) {
	oracle := authority.NewStatic(authority.IdentityA)
	oracle.SetActive(true)
	h := session.New(registry.New(), nil, oracle)

	count := 0
	a := routine.New(h, "a-only", authority.PeerA)
	a.Bind(func() { count += 1 })
	b := routine.New(h, "b-only", authority.PeerB)
	b.Bind(func() { count += 10 })
	none := routine.New(h, "nobody", authority.None)
	none.Bind(func() { count += 100 })

	assert.True(t, a.Invoke(), "a routine denied to a")
	assert.False(t, b.Invoke(), "b routine allowed to a")
	assert.False(t, none.Invoke(), "none routine allowed")
	assert.Equal(t, 1, count, "wrong count")

	oracle.Swap()
	assert.True(t, b.Invoke(), "b routine denied after swap")
	assert.Equal(t, 11, count, "wrong count after swap")
	assert.Equal(t, authority.PeerB, b.Role(), "wrong role")
}

func TestFromFuncAcrossPeers(t *testing.T) {
	opened = 0

	qa := messagebus.New(10)
	qb := messagebus.New(10)
	link := loopback.New(qa, qb)
	link.Connect()

	oa := authority.NewStatic(authority.IdentityA)
	oa.SetActive(true)
	ob := authority.NewStatic(authority.IdentityB)
	ob.SetActive(true)

	ha := session.New(registry.New(), link.A, oa)
	hb := session.New(registry.New(), link.B, ob)

	ra := routine.FromFunc(ha, OpenGate, authority.PeerA)
	rb := routine.FromFunc(hb, OpenGate, authority.PeerA)
	assert.Equal(t, ra.Name(), rb.Name(), "peers derived different names")

	assert.False(t, rb.Invoke(), "b invoked an a routine")
	assert.True(t, ra.Invoke(), "a could not invoke")
	assert.Equal(t, 1, opened, "wrong local count")

	hb.Drain(qb)
	assert.Equal(t, 2, opened, "remote not fired")

	rb.Dispose()
	ra.Invoke()
	hb.Drain(qb)
	assert.Equal(t, 3, opened, "disposed routine fired")
}

type move struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func TestTypedRoutine(t *testing.T) {
	h := session.New(registry.New(), nil, nil)

	var moves []move
	r, err := routine.TypedFromFunc(h, func(m move) { moves = append(moves, m) }, authority.Both)
	assert.Nil(t, err, "wrong error")

	fired, err := r.Invoke(move{X: 1, Y: 2})
	assert.Nil(t, err, "wrong error")
	assert.True(t, fired, "not fired")
	assert.Equal(t, []move{{X: 1, Y: 2}}, moves, "wrong moves")
	assert.True(t, strings.HasPrefix(r.Name(), "net_routine_"), "wrong name")

	_, err = routine.NewTyped[int](h, "number", authority.Both, nil)
	assert.Equal(t, fault.ErrScalarType, err, "scalar accepted")
}
