// Copyright 2014-2015 The Coname Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// 	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

// Package leveldbkv implements the kv interface using goleveldb, either
// on disk or fully in memory.
package leveldbkv

import (
	"github.com/coniks-sys/akd-go/storage/kv"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type leveldbkv struct {
	db   *leveldb.DB
	wopt *opt.WriteOptions
}

// OpenDB opens (creating if needed) the leveldb database at path.
// Writes are synchronous.
func OpenDB(path string) (kv.DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return Wrap(db), nil
}

// OpenMem opens a leveldb database backed by memory only.
func OpenMem() (kv.DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &leveldbkv{db: db, wopt: nil}, nil
}

// Wrap uses a leveldb.DB as a kv.DB the obvious way (and with Sync:true).
func Wrap(db *leveldb.DB) kv.DB {
	return &leveldbkv{db: db, wopt: &opt.WriteOptions{Sync: true}}
}

func (l *leveldbkv) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, kv.ErrNotFound
	}
	return v, err
}

func (l *leveldbkv) Put(key, value []byte) error {
	return l.db.Put(key, value, l.wopt)
}

func (l *leveldbkv) Delete(key []byte) error {
	return l.db.Delete(key, l.wopt)
}

func (l *leveldbkv) NewBatch() kv.Batch {
	return new(leveldb.Batch)
}

func (l *leveldbkv) Write(b kv.Batch) error {
	wb, ok := b.(*leveldb.Batch)
	if !ok {
		return kv.ErrBadBatch
	}
	return l.db.Write(wb, l.wopt)
}

func (l *leveldbkv) NewIterator(rg *kv.Range) kv.Iterator {
	if rg == nil {
		return l.db.NewIterator(nil, nil)
	}
	return l.db.NewIterator(&util.Range{Start: rg.Start, Limit: rg.Limit}, nil)
}

func (l *leveldbkv) Close() error {
	return l.db.Close()
}
