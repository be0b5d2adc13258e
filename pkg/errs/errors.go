/*
Package errs defines the error taxonomy shared by llrbkv's storage layers.

Every public operation in the engine fails with exactly one of these
sentinel kinds, wrapped with context via fmt.Errorf("...: %w", ...), so
callers can discriminate with errors.Is instead of parsing messages.
*/
package errs

import "errors"

var (
	// ErrNotFound is raised by Get/Delete when the key is absent.
	ErrNotFound = errors.New("llrbkv: key not found")

	// ErrClosed is raised by any operation on a handle after Close.
	ErrClosed = errors.New("llrbkv: handle closed")

	// ErrEmpty is raised by RootKey on an empty tree.
	ErrEmpty = errors.New("llrbkv: tree is empty")

	// ErrCorrupt is raised when a block's length prefix runs past the end
	// of the file, or a node block fails to deserialize.
	ErrCorrupt = errors.New("llrbkv: corrupt block")
)
