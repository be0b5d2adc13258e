package kv

import "github.com/kvforge/llrbkv/pkg/errs"

// Sentinel errors re-exported from pkg/errs so callers of this package
// never need to import it directly.
var (
	ErrNotFound = errs.ErrNotFound
	ErrClosed   = errs.ErrClosed
	ErrEmpty    = errs.ErrEmpty
	ErrCorrupt  = errs.ErrCorrupt
)
