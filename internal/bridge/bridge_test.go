package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/starford/filebridge/internal/apperr"
	"github.com/starford/filebridge/internal/command"
	"github.com/starford/filebridge/internal/storage"
	"github.com/starford/filebridge/internal/testutil"
)

func newBridge(t *testing.T) *Bridge {
	t.Helper()
	store, err := storage.NewLocal("")
	require.NoError(t, err)
	return New(store)
}

func TestReadFileBase64_RoundTrip(t *testing.T) {
	b := newBridge(t)

	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"one byte", []byte{0x00}},
		{"two bytes", []byte{0xff, 0xfe}},
		{"three bytes", []byte("abc")},
		{"every byte value", allBytes},
		{"pdf header", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")},
		{"random", testutil.RandomBytes(t, 4097)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testutil.WriteFile(t, "in.bin", tt.data)

			text, err := b.ReadFileBase64(p)
			require.NoError(t, err)

			got, err := Decode(text)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(tt.data, got), "decoded bytes differ from file contents")
		})
	}
}

func TestReadFileBase64_KnownEncoding(t *testing.T) {
	b := newBridge(t)
	p := testutil.WriteFile(t, "hello.txt", []byte("hello"))

	text, err := b.ReadFileBase64(p)
	require.NoError(t, err)
	assert.Equal(t, "aGVsbG8=", text)
}

func TestReadFileBase64_EmptyFile(t *testing.T) {
	b := newBridge(t)
	p := testutil.WriteFile(t, "empty.pdf", nil)

	text, err := b.ReadFileBase64(p)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestReadFileBase64_Deterministic(t *testing.T) {
	b := newBridge(t)
	p := testutil.WriteFile(t, "doc.pdf", testutil.RandomBytes(t, 1024))

	first, err := b.ReadFileBase64(p)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := b.ReadFileBase64(p)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestReadFileBase64_NonExistentPath(t *testing.T) {
	b := newBridge(t)
	p := filepath.Join(t.TempDir(), "missing.pdf")

	text, err := b.ReadFileBase64(p)
	require.Error(t, err)
	assert.Empty(t, text)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, osErr := os.ReadFile(p)
	assert.Equal(t, osErr.Error(), err.Error(), "message should be the OS text")
}

func TestReadFileBase64_Directory(t *testing.T) {
	b := newBridge(t)

	text, err := b.ReadFileBase64(t.TempDir())
	require.Error(t, err)
	assert.Empty(t, text)
}

func TestReadFileBase64_EmptyPath(t *testing.T) {
	b := newBridge(t)

	text, err := b.ReadFileBase64("")
	require.Error(t, err)
	assert.Empty(t, text)
}

func TestReadFileBase64_LargeFile(t *testing.T) {
	b := newBridge(t)
	data := testutil.RandomBytes(t, 5<<20+3)
	p := testutil.WriteFile(t, "large.bin", data)

	text, err := b.ReadFileBase64(p)
	require.NoError(t, err)
	assert.Len(t, text, (len(data)+2)/3*4)

	got, err := Decode(text)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got), "large file did not round-trip")
}

func TestReadFileBase64_ConcurrentDifferentPaths(t *testing.T) {
	b := newBridge(t)

	const n = 32
	files := make([][]byte, n)
	paths := make([]string, n)
	for i := 0; i < n; i++ {
		files[i] = []byte(fmt.Sprintf("file-%d:%x", i, testutil.RandomBytes(t, 64+i)))
		paths[i] = testutil.WriteFile(t, fmt.Sprintf("f%d.bin", i), files[i])
	}

	results := make([]string, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			text, err := b.ReadFileBase64(paths[i])
			results[i] = text
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < n; i++ {
		got, err := Decode(results[i])
		require.NoError(t, err)
		assert.Equal(t, files[i], got, "result %d mixed with another call", i)
	}
}

func TestReadFileBase64_ConcurrentSamePath(t *testing.T) {
	b := newBridge(t)
	p := testutil.WriteFile(t, "shared.bin", testutil.RandomBytes(t, 64<<10))

	want, err := b.ReadFileBase64(p)
	require.NoError(t, err)

	const n = 32
	results := make([]string, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			text, err := b.ReadFileBase64(p)
			results[i] = text
			return err
		})
	}
	require.NoError(t, g.Wait())

	for i, got := range results {
		assert.Equal(t, want, got, "call %d", i)
	}
}

func TestRegister_InvokeThroughRegistry(t *testing.T) {
	reg := command.NewRegistry(nil)
	require.NoError(t, Register(reg, newBridge(t)))

	p := testutil.WriteFile(t, "cv.pdf", []byte("%PDF"))
	args, _ := json.Marshal(map[string]string{"path": p})

	text, err := reg.Invoke(context.Background(), CommandReadFileBase64, args)
	require.NoError(t, err)
	assert.Equal(t, "JVBERg==", text)
}

func TestRegister_MissingPathArg(t *testing.T) {
	reg := command.NewRegistry(nil)
	require.NoError(t, Register(reg, newBridge(t)))

	for _, raw := range []string{"", "{}", `{"other":"x"}`, `{"path":null}`} {
		_, err := reg.Invoke(context.Background(), CommandReadFileBase64, json.RawMessage(raw))
		require.Error(t, err, "args %q", raw)
		assert.ErrorIs(t, err, apperr.ErrInvalidArgs)
		assert.Contains(t, err.Error(), "path")
	}
}

func TestRegister_NonStringPathArg(t *testing.T) {
	reg := command.NewRegistry(nil)
	require.NoError(t, Register(reg, newBridge(t)))

	_, err := reg.Invoke(context.Background(), CommandReadFileBase64, json.RawMessage(`{"path":42}`))
	assert.ErrorIs(t, err, apperr.ErrInvalidArgs)
}

func TestRegister_FailurePassesOSMessage(t *testing.T) {
	reg := command.NewRegistry(nil)
	require.NoError(t, Register(reg, newBridge(t)))

	p := filepath.Join(t.TempDir(), "gone.pdf")
	args, _ := json.Marshal(map[string]string{"path": p})

	_, err := reg.Invoke(context.Background(), CommandReadFileBase64, args)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrInvalidArgs)

	_, osErr := os.ReadFile(p)
	assert.Equal(t, osErr.Error(), err.Error())
}

func TestRegister_Rooted(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "in.pdf"), []byte("ok"), 0o644))

	store, err := storage.NewLocal(root)
	require.NoError(t, err)
	b := New(store)

	text, err := b.ReadFileBase64("in.pdf")
	require.NoError(t, err)
	assert.Equal(t, "b2s=", text)

	_, err = b.ReadFileBase64("../escape.pdf")
	assert.ErrorIs(t, err, apperr.ErrOutsideRoot)
}
