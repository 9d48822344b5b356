package vm

import "loxvm/chunk"

const (
	fnvOffsetBasis uint32 = 2166136261
	fnvPrime       uint32 = 16777619
)

// hashFNV1a computes the 32-bit FNV-1a hash of s, the same algorithm every
// ObjString's Hash field is precomputed with at intern time.
func hashFNV1a(s string) uint32 {
	h := fnvOffsetBasis
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// InternString returns the ObjString handle for s, allocating and linking a
// new one into the VM's object list only if no equal-content string has
// been interned yet. Two calls with equal content always return the same
// handle, which is what lets Value equality treat strings as
// identity-comparable.
func (vm *VM) InternString(s string) *chunk.ObjString {
	if existing, ok := vm.strings.Get(s); ok {
		return existing
	}

	obj := &chunk.ObjString{
		Chars: s,
		Hash:  hashFNV1a(s),
		Next:  vm.objects,
	}
	vm.objects = obj
	vm.strings.Put(s, obj)
	return obj
}

// freeObjects walks the intrusive object list and releases every cell,
// mirroring the source's VM-drop teardown. Go's own garbage collector will
// eventually reclaim the memory regardless; this walk exists so the
// invariant ("every allocated object is reachable until teardown, and
// released exactly once at teardown") remains an observable, testable
// property of this VM rather than an implementation detail hidden behind
// the host runtime's GC.
func (vm *VM) freeObjects() {
	obj := vm.objects
	for obj != nil {
		next := obj.Next
		obj.Next = nil
		obj = next
	}
	vm.objects = nil
}
