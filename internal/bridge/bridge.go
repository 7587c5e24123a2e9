// Package bridge implements the file-import bridge: it reads a local file and
// hands its bytes back to the front-end as standard base64 text.
//
// The front-end owns all parsing of the returned bytes (PDF text extraction
// and the like). The bridge keeps no state between calls and never logs.
package bridge

import (
	"context"
	"encoding/base64"
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/filebridge/internal/command"
	"github.com/starford/filebridge/internal/storage"
)

// CommandReadFileBase64 is the name front-ends invoke the bridge by.
const CommandReadFileBase64 = "read_file_base64"

// Bridge reads files through a storage.Provider.
type Bridge struct {
	store storage.Provider
}

// New creates a Bridge backed by store.
func New(store storage.Provider) *Bridge {
	return &Bridge{store: store}
}

// ReadFileBase64 reads the whole file at path and returns it encoded with
// RFC 4648 standard base64 (padded). An empty file encodes to "".
//
// On failure the error from the file system is returned unchanged, so its
// message is the operating system's own description.
func (b *Bridge) ReadFileBase64(path string) (string, error) {
	data, err := b.store.Read(path)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Decode is the inverse of ReadFileBase64's encoding.
func Decode(text string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(text)
}

type readFileArgs struct {
	Path *string `json:"path"`
}

func (a *readFileArgs) Validate() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.Path, validation.NotNil),
	)
}

// Register binds the bridge to reg under CommandReadFileBase64.
func Register(reg *command.Registry, b *Bridge) error {
	return reg.Register(command.Command{
		Name:        CommandReadFileBase64,
		Description: "Read a local file and return its contents as standard base64 text.",
		Params: []command.Param{
			{Name: "path", Description: "File-system path of the file to read", Required: true},
		},
		Handler: func(_ context.Context, raw json.RawMessage) (string, error) {
			var args readFileArgs
			if err := command.DecodeArgs(raw, &args); err != nil {
				return "", err
			}
			return b.ReadFileBase64(*args.Path)
		},
	})
}
