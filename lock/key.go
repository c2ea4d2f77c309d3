// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lock

import "github.com/cpmech/gosl/chk"

// Locked is implemented by any object that carries a Lock, e.g. SimState.
type Locked interface {
	LockRef() *Lock
}

// Key is an owning handle to a Locked object, parameterized by the lock
// kind currently held (spec.md §3 "Key / ConstKey"). A Key must not be
// copied; pass by pointer or by value only through the constructors below,
// mirroring Oxs_Key's by-value-with-dep-lock copy semantics.
type Key[T Locked] struct {
	obj  T
	kind Kind
	id   uint32
	ok   bool // false for the zero Key (no object set)
}

// NewDepKey wraps obj with a DEP hold, pinning its lifetime without
// restricting anyone else's access.
func NewDepKey[T Locked](obj T) Key[T] {
	obj.LockRef().trySetDep()
	return Key[T]{obj: obj, kind: DEP, id: obj.LockRef().Id(), ok: true}
}

// NewWriteKey claims exclusive WRITE access on obj. Panics (programming
// error, spec.md §7 LockError) if obj is already held.
func NewWriteKey[T Locked](obj T) Key[T] {
	if !obj.LockRef().tryPromoteWrite() {
		chk.Panic("lock: cannot acquire WRITE lock, object already held")
	}
	return Key[T]{obj: obj, kind: WRITE, ok: true}
}

// Kind reports which lock state this Key currently holds.
func (k Key[T]) Kind() Kind { return k.kind }

// Object returns the underlying object. Valid for any non-INVALID kind.
func (k Key[T]) Object() T { return k.obj }

// SameState reports whether id matches the id this Key last observed.
func (k Key[T]) SameState(id uint32) bool {
	if !k.ok {
		return false
	}
	return k.obj.LockRef().sameState(id)
}

// Promote upgrades a DEP key to READ. Fails (returns false) if a WRITE
// holder is currently outstanding.
func (k Key[T]) Promote() (Key[T], bool) {
	if !k.ok || k.kind != DEP {
		chk.Panic("lock: Promote called on a key not holding DEP")
	}
	if !k.obj.LockRef().tryPromoteRead() {
		return k, false
	}
	k.obj.LockRef().releaseDep()
	return Key[T]{obj: k.obj, kind: READ, id: k.obj.LockRef().Id(), ok: true}, true
}

// Demote downgrades a READ key back to DEP.
func (k Key[T]) Demote() Key[T] {
	if !k.ok || k.kind != READ {
		chk.Panic("lock: Demote called on a key not holding READ")
	}
	k.obj.LockRef().releaseRead()
	k.obj.LockRef().trySetDep()
	return Key[T]{obj: k.obj, kind: DEP, id: k.id, ok: true}
}

// Finalize assigns id to the held object and downgrades the WRITE key to a
// permanent READ key. Only valid on a WRITE-kind key.
func (k Key[T]) Finalize(id uint32) Key[T] {
	if !k.ok || k.kind != WRITE {
		chk.Panic("lock: Finalize called on a key not holding WRITE")
	}
	k.obj.LockRef().finalize(id)
	return Key[T]{obj: k.obj, kind: READ, id: id, ok: true}
}

// Release drops the lock held by k. Releasing a WRITE key without having
// finalized it is a programming error (spec.md §3) and panics.
func (k Key[T]) Release() {
	if !k.ok {
		return
	}
	switch k.kind {
	case DEP:
		k.obj.LockRef().releaseDep()
	case READ:
		k.obj.LockRef().releaseRead()
	case WRITE:
		chk.Panic("lock: dropped a WRITE key without finalizing it")
	}
}

// ConstKey is a read-only view usable anywhere a caller needs only read
// access but may want to retain the handle past the call that produced it
// (spec.md §3). It is always DEP- or READ-backed, never WRITE.
type ConstKey[T Locked] struct {
	inner Key[T]
}

// NewConstKey wraps a DEP- or READ-kind Key as a ConstKey.
func NewConstKey[T Locked](k Key[T]) ConstKey[T] {
	if k.kind == WRITE {
		chk.Panic("lock: cannot build a ConstKey from a WRITE key")
	}
	return ConstKey[T]{inner: k}
}

// Object returns the underlying read-only object.
func (c ConstKey[T]) Object() T { return c.inner.Object() }

// SameState reports whether id matches the id this key last observed.
func (c ConstKey[T]) SameState(id uint32) bool { return c.inner.SameState(id) }

// Release drops the lock held by c.
func (c ConstKey[T]) Release() { c.inner.Release() }
