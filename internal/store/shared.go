package store

import "sync"

// shared is the process-wide store handle. Concurrent first callers — a
// timer fire racing boot recovery, say — must not construct two
// independent stores over the same database file, so construction goes
// through a single sync.Once.
var shared struct {
	once sync.Once
	st   *SQLite
	err  error
}

// Shared opens the store at path exactly once for the lifetime of the
// process and returns the same handle to every caller. The path of the
// first call wins; later calls ignore theirs.
func Shared(path string) (*SQLite, error) {
	shared.once.Do(func() {
		shared.st, shared.err = Open(path)
	})
	return shared.st, shared.err
}
