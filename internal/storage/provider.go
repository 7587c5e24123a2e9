// Package storage defines the local file access used by host commands.
package storage

// Provider reads files on behalf of a command.
type Provider interface {
	// Read returns the full contents of the file at path. Errors coming from
	// the operating system are returned unwrapped.
	Read(path string) ([]byte, error)
}
