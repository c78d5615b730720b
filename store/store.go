// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store - leveldb snapshots of replicated values
//
// each value is stored under the 16 byte fingerprint of its name with a
// one byte prefix, so a restart only restores values whose names are
// unchanged
package store

import (
	"sync"

	"github.com/bitmark-inc/logger"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/netsync/fault"
	"github.com/bitmark-inc/netsync/fingerprint"
	"github.com/bitmark-inc/netsync/registry"
)

const snapshotPrefix = 'S'

// Store - open snapshot database
type Store struct {
	sync.Mutex

	log *logger.L
	db  *leveldb.DB
}

// Open - open or create the database at a path
func Open(path string) (*Store, error) {
	log := logger.New("store")

	db, err := leveldb.OpenFile(path, &ldb_opt.Options{
		ErrorIfMissing: false,
	})
	if nil != err {
		log.Errorf("open: %q  error: %s", path, err)
		return nil, err
	}

	log.Infof("opened: %q", path)
	return &Store{
		log: log,
		db:  db,
	}, nil
}

func key(f fingerprint.Fingerprint) []byte {
	return append([]byte{snapshotPrefix}, f[:]...)
}

// Save - write every replica's current value in a single batch
func (s *Store) Save(replicas []registry.Replica) (int, error) {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return 0, fault.ErrNotInitialised
	}

	batch := new(leveldb.Batch)
	for _, r := range replicas {
		data, err := r.Snapshot()
		if nil != err {
			s.log.Warnf("snapshot: %q  error: %s", r.Name(), err)
			continue
		}
		batch.Put(key(r.Fingerprint()), data)
	}

	err := s.db.Write(batch, nil)
	if nil != err {
		return 0, err
	}
	s.log.Infof("saved: %d of %d", batch.Len(), len(replicas))
	return batch.Len(), nil
}

// Restore - load stored values into the matching replicas, returns the
// number restored, missing entries are skipped
func (s *Store) Restore(replicas []registry.Replica) (int, error) {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return 0, fault.ErrNotInitialised
	}

	n := 0
	for _, r := range replicas {
		data, err := s.db.Get(key(r.Fingerprint()), nil)
		if leveldb.ErrNotFound == err {
			s.log.Debugf("no snapshot for: %q", r.Name())
			continue
		}
		if nil != err {
			return n, err
		}
		err = r.Restore(data)
		if nil != err {
			s.log.Warnf("restore: %q  error: %s", r.Name(), err)
			continue
		}
		n += 1
	}
	s.log.Infof("restored: %d of %d", n, len(replicas))
	return n, nil
}

// Get - the raw snapshot of a single fingerprint
func (s *Store) Get(f fingerprint.Fingerprint) ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return nil, fault.ErrNotInitialised
	}
	data, err := s.db.Get(key(f), nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrSnapshotMissing
	}
	return data, err
}

// Count - number of stored snapshots
func (s *Store) Count() int {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return 0
	}
	iter := s.db.NewIterator(ldb_util.BytesPrefix([]byte{snapshotPrefix}), nil)
	defer iter.Release()

	n := 0
	for iter.Next() {
		n += 1
	}
	return n
}

// Close - close the database, further calls return ErrNotInitialised
func (s *Store) Close() error {
	s.Lock()
	defer s.Unlock()

	if nil == s.db {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.log.Info("closed")
	return err
}
