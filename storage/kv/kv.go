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

// Package kv contains a generic interface for ordered key-value databases
// with support for atomic batch writes. All operations are safe for
// concurrent use.
package kv

import "errors"

// DB is an abstract ordered key-value store. A Write applies every
// operation of a batch or none of them; readers never observe a
// partially applied batch. Get returns ErrNotFound for a missing key.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	NewBatch() Batch
	Write(Batch) error
	NewIterator(*Range) Iterator
	Close() error
}

// A Batch contains a sequence of Put-s and Delete-s waiting to be
// Write-n to a DB.
type Batch interface {
	Reset()
	Put(key, value []byte)
	Delete(key []byte)
	Len() int
}

// Iterator is an abstract pointer to a DB entry. It must be valid to call
// Error() after release. The boolean return values indicate whether the
// requested entry exists. A fresh iterator is positioned before the
// first entry, so Next() behaves like First().
type Iterator interface {
	Key() []byte
	Value() []byte
	First() bool
	Next() bool
	Last() bool
	Release()
	Error() error
}

var (
	// ErrNotFound is returned by Get for a missing key.
	ErrNotFound = errors.New("[kv] Not found")
	// ErrBadBatch indicates a batch created by another backend.
	ErrBadBatch = errors.New("[kv] Batch from a different backend")
)
