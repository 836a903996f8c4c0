package weavetest

import (
	"io/ioutil"
	"os"
	"testing"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/store/badgerdb"
)

// CommitKVStore returns a store instance that is using a filesystem backend
// engine to store the data.
// This implementation should be used instead of MemStore when you want the
// exact same storage implementation as the production instance is using.
func CommitKVStore(t testing.TB) (db weave.CommitKVStore, cleanup func()) {
	dbpath, err := ioutil.TempDir("", "weavetest")
	if err != nil {
		t.Fatalf("cannot create a temporary directory: %s", err)
	}

	s, err := badgerdb.NewCommitStore(dbpath)
	if err != nil {
		os.RemoveAll(dbpath)
		t.Fatalf("cannot open badger store: %s", err)
	}
	return s, func() {
		s.Close()
		os.RemoveAll(dbpath)
	}
}
