// Package chd builds minimal perfect hash functions with the
// compress-hash-displace (CHD) method.
//
// A Function maps each key of a fixed set of m distinct byte strings to a
// distinct value in [0, n), where n is the smallest odd prime above m/c for
// a load factor c in [0.5, 0.99]. It is meant to index a slot table of n
// entries; package dict wraps it into a read-only map.
//
// # Basic Usage
//
// Building a function:
//
//	f, err := chd.BuildKeys(ctx, keys)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	slot := f.Hash([]byte("mykey"))
//
// Keys that were not in the build set also hash into [0, n); callers that
// need membership must compare against the stored key.
//
// Persisting a function:
//
//	if err := chd.WriteFile("keys.chd", f); err != nil {
//	    log.Fatal(err)
//	}
//	f, err = chd.ReadFile("keys.chd")
//
// # Package Structure
//
// The implementation is organized as follows:
//
//   - Public API: function.go (Build, Hash), dump.go (Dump, Load)
//   - Configuration: builder_options.go (BuildOption, With* functions)
//   - Key input: key_source.go (KeySource, slice and line adapters)
//   - File format: header.go, file_writer.go, file_reader.go
//   - Construction phases: internal/buckets/ (Mapping, Ordering, Searching)
//   - Displacement encoding: internal/succinct/ (CompressedSeq, Select)
//   - Primitives: internal/bits/, internal/jenkins/, internal/prime/
//   - Platform: fallocate_*.go, fadvise_*.go, prefault_*.go
//   - Tools: cmd/chdtool (build, query, stats, verify), cmd/bench
package chd
