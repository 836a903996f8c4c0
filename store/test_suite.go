package store

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"sort"
	"testing"

	"github.com/iov-one/weave-editions/weavetest/assert"
)

// OpenFunc returns a fresh, empty store together with a function
// releasing it.
type OpenFunc func() (CacheableKVStore, func())

// RunSuite checks that a store implementation honours the CacheableKVStore
// contract. Every subtest works on its own store. It is shared by the
// in-memory store and badgerdb tests.
func RunSuite(t *testing.T, open OpenFunc) {
	t.Run("layered writes", func(t *testing.T) { layeredWrites(t, open) })
	t.Run("overwrite and delete", func(t *testing.T) { overwriteAndDelete(t, open) })
	t.Run("merged iteration", func(t *testing.T) { mergedIteration(t, open) })
	t.Run("shadowed iteration", func(t *testing.T) { shadowedIteration(t, open) })
}

func layeredWrites(t *testing.T, open OpenFunc) {
	base, cleanup := open()
	defer cleanup()

	owner := []byte("owner:s1:1")
	AssertValue(t, base, owner, nil)
	assert.Nil(t, base.Set(owner, []byte("alice")))
	AssertValue(t, base, owner, []byte("alice"))

	cache := base.CacheWrap()
	AssertValue(t, cache, owner, []byte("alice"))

	minted := []byte("owner:s1:2")
	assert.Nil(t, cache.Set(minted, []byte("bob")))
	AssertValue(t, cache, minted, []byte("bob"))
	AssertValue(t, base, minted, nil)
	assert.Nil(t, cache.Write())
	AssertValue(t, base, minted, []byte("bob"))

	discarded := base.CacheWrap()
	assert.Nil(t, discarded.Set([]byte("owner:s1:3"), []byte("carol")))
	discarded.Discard()
	AssertValue(t, base, []byte("owner:s1:3"), nil)

	burn := base.CacheWrap()
	assert.Nil(t, burn.Delete(owner))
	assert.Nil(t, burn.Write())
	AssertValue(t, base, owner, nil)
	AssertValue(t, base, minted, []byte("bob"))
}

func overwriteAndDelete(t *testing.T, open OpenFunc) {
	keys := editionKeys(3)

	cases := map[string]struct {
		parent []Op
		child  []Op
		// Queries hold the expected value of a key, nil for absent.
		parentWant []Model
		childWant  []Model
	}{
		"child overwrites, deletes and adds": {
			parent:     []Op{SetOp(keys[0], []byte("alice")), SetOp(keys[1], []byte("bob"))},
			child:      []Op{SetOp(keys[0], []byte("carol")), DelOp(keys[1]), SetOp(keys[2], []byte("dave"))},
			parentWant: []Model{Pair(keys[0], []byte("alice")), Pair(keys[1], []byte("bob")), Pair(keys[2], nil)},
			childWant:  []Model{Pair(keys[0], []byte("carol")), Pair(keys[1], nil), Pair(keys[2], []byte("dave"))},
		},
		"child deletes what it wrote": {
			parent:     []Op{SetOp(keys[0], []byte("alice"))},
			child:      []Op{SetOp(keys[1], []byte("bob")), DelOp(keys[1])},
			parentWant: []Model{Pair(keys[0], []byte("alice")), Pair(keys[1], nil)},
			childWant:  []Model{Pair(keys[0], []byte("alice")), Pair(keys[1], nil)},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := open()
			defer cleanup()

			for _, op := range tc.parent {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.child {
				assert.Nil(t, op.Apply(child))
			}
			for _, m := range tc.parentWant {
				AssertValue(t, parent, m.Key, m.Value)
			}
			for _, m := range tc.childWant {
				AssertValue(t, child, m.Key, m.Value)
			}

			assert.Nil(t, child.Write())
			for _, m := range tc.childWant {
				AssertValue(t, parent, m.Key, m.Value)
			}
		})
	}
}

func mergedIteration(t *testing.T, open OpenFunc) {
	const size = 40

	inParent := randomModels(size)
	inChild := randomModels(size)
	all := sortedModels(append(append([]Model(nil), inParent...), inChild...))
	onlyChild := sortedModels(inChild)

	cases := map[string]struct {
		parent []Model
		want   []Model
	}{
		"empty parent": {parent: nil, want: onlyChild},
		"both layers":  {parent: inParent, want: all},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := open()
			defer cleanup()
			for _, m := range tc.parent {
				assert.Nil(t, base.Set(m.Key, m.Value))
			}
			child := base.CacheWrap()
			// Deleting missing keys must not disturb iteration.
			for _, m := range randomModels(10) {
				assert.Nil(t, child.Delete(m.Key))
			}
			for _, m := range inChild {
				assert.Nil(t, child.Set(m.Key, m.Value))
			}

			want := tc.want
			n := len(want)
			assertRange(t, child, nil, nil, want)
			assertRange(t, child, want[7].Key, nil, want[7:])
			assertRange(t, child, nil, want[n-5].Key, want[:n-5])
			assertRange(t, child, want[3].Key, want[19].Key, want[3:19])
			assertReverseRange(t, child, nil, nil, want)
			assertReverseRange(t, child, want[11].Key, want[30].Key, want[11:30])
		})
	}
}

func shadowedIteration(t *testing.T, open OpenFunc) {
	keys := editionKeys(4)
	a, b, c, d := keys[0], keys[1], keys[2], keys[3]

	cases := map[string]struct {
		parent []Op
		child  []Op
		want   []Model
	}{
		"child value replaces parent value": {
			parent: []Op{SetOp(a, []byte("alice")), SetOp(b, []byte("bob")), SetOp(c, []byte("carol"))},
			child:  []Op{SetOp(a, []byte("erin")), SetOp(b, []byte("frank")), SetOp(d, []byte("dave"))},
			want: []Model{
				Pair(a, []byte("erin")),
				Pair(b, []byte("frank")),
				Pair(c, []byte("carol")),
				Pair(d, []byte("dave")),
			},
		},
		"child deletes hide parent values": {
			parent: []Op{SetOp(a, []byte("alice")), SetOp(c, []byte("carol")), SetOp(d, []byte("dave"))},
			child:  []Op{DelOp(a), DelOp(b), DelOp(d)},
			want:   []Model{Pair(c, []byte("carol"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := open()
			defer cleanup()
			for _, op := range tc.parent {
				assert.Nil(t, op.Apply(base))
			}
			child := base.CacheWrap()
			for _, op := range tc.child {
				assert.Nil(t, op.Apply(child))
			}
			assertRange(t, child, nil, nil, tc.want)
			assertReverseRange(t, child, nil, nil, tc.want)
			// The end is exclusive.
			assertRange(t, child, nil, tc.want[0].Key, nil)
		})
	}
}

// AssertValue fails the test unless the store holds exactly val under key.
// A nil val asserts that the key is absent.
func AssertValue(t testing.TB, kv ReadOnlyKVStore, key, val []byte) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	has, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, val != nil, has)
}

func assertRange(t testing.TB, kv ReadOnlyKVStore, start, end []byte, want []Model) {
	t.Helper()
	it, err := kv.Iterator(start, end)
	assert.Nil(t, err)
	assertIterates(t, it, want)
}

// assertReverseRange expects want in descending order.
func assertReverseRange(t testing.TB, kv ReadOnlyKVStore, start, end []byte, want []Model) {
	t.Helper()
	it, err := kv.ReverseIterator(start, end)
	assert.Nil(t, err)
	desc := make([]Model, len(want))
	for i, m := range want {
		desc[len(want)-1-i] = m
	}
	assertIterates(t, it, desc)
}

func assertIterates(t testing.TB, it Iterator, want []Model) {
	t.Helper()
	defer it.Close()
	for i, m := range want {
		if !it.Valid() {
			t.Fatalf("iterator done after %d of %d entries", i, len(want))
		}
		if !bytes.Equal(m.Key, it.Key()) {
			t.Fatalf("entry %d: want key %X, got %X", i, m.Key, it.Key())
		}
		assert.Equal(t, m.Value, it.Value())
		assert.Nil(t, it.Next())
	}
	if it.Valid() {
		t.Fatalf("unexpected key %X", it.Key())
	}
}

func editionKeys(n int) [][]byte {
	keys := make([][]byte, n)
	for i := range keys {
		keys[i] = []byte(fmt.Sprintf("owner:s1:%d", i+1))
	}
	return keys
}

func randomModels(n int) []Model {
	models := make([]Model, n)
	for i := range models {
		models[i] = Pair(randomBytes(12), randomBytes(32))
	}
	return models
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

func sortedModels(models []Model) []Model {
	sort.Slice(models, func(i, j int) bool {
		return bytes.Compare(models[i].Key, models[j].Key) < 0
	})
	return models
}
