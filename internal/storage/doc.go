// Package storage persists the seen-set: which submission ids have already been announced.
//
// Every backend implements Store, a get/put key-value contract keyed by submission id
// with the announced snapshot as an opaque value. Entries are written once and never
// updated or removed. The default backend is a JSON file under
// ~/.local/share/timus-feed/; SQLite, PostgreSQL, Redis and GitHub Gist backends are
// available for hosts without a persistent disk.
package storage
