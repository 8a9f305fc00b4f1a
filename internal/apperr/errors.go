// Package apperr holds the error taxonomy shared across notesift packages.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrFetch           = errors.New("fetch failed")
	ErrOracle          = errors.New("oracle failed")
	ErrParse           = errors.New("parse failed")
	ErrCacheCorruption = errors.New("cache corrupted")
)

// FetchError reports a remote store call that failed for one document or folder.
type FetchError struct {
	Op  string
	ID  string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// OracleError reports a failed or timed out decision oracle call.
type OracleError struct {
	Err error
}

func (e *OracleError) Error() string {
	return fmt.Sprintf("oracle: %v", e.Err)
}

func (e *OracleError) Unwrap() error { return e.Err }

func (e *OracleError) Is(target error) bool { return target == ErrOracle }

// ParseError reports a date token that matched the pattern but is not a
// valid calendar date.
type ParseError struct {
	Token string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse date %q: %v", e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// CacheCorruptionError reports an on-disk snapshot that cannot be decoded.
type CacheCorruptionError struct {
	Path string
	Err  error
}

func (e *CacheCorruptionError) Error() string {
	return fmt.Sprintf("cache %s corrupted: %v", e.Path, e.Err)
}

func (e *CacheCorruptionError) Unwrap() error { return e.Err }

func (e *CacheCorruptionError) Is(target error) bool { return target == ErrCacheCorruption }
