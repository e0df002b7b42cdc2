// Package errors defines all exported error sentinels for the chd library.
//
// This is the single source of truth for error values. The top-level chd
// package, the dict package and the internal construction packages all
// import from here, so errors.Is checks work across package boundaries.
package errors

import "errors"

// Build errors
var (
	ErrEmptyKeySet           = errors.New("chd: cannot build a function over zero keys")
	ErrTooManyKeys           = errors.New("chd: key count exceeds maximum (2^30)")
	ErrInvalidLoadFactor     = errors.New("chd: load factor is not a number")
	ErrKeyCountMismatch      = errors.New("chd: key source returned fewer keys than declared")
	ErrDuplicateKeys         = errors.New("chd: mapping failed after all seeds - duplicate keys?")
	ErrConstructionExhausted = errors.New("chd: construction failed after all attempts")
)

// Dump errors
var (
	ErrTruncatedDump = errors.New("chd: dump is shorter than its declared lengths")
	ErrCorruptedDump = errors.New("chd: dump data is corrupted")
)

// File errors
var (
	ErrInvalidMagic   = errors.New("chd: invalid magic number")
	ErrInvalidVersion = errors.New("chd: unsupported version")
	ErrTruncatedFile  = errors.New("chd: function file is truncated")
	ErrChecksumFailed = errors.New("chd: function file checksum verification failed")
)
