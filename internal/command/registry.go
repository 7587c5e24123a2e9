// Package command implements the host-side command registry that front-ends
// invoke by name.
package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/starford/filebridge/internal/apperr"
)

// Handler runs a command with its raw JSON arguments. A returned error is a
// failure outcome whose message is delivered to the caller as-is.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

// Param describes one string argument of a command.
type Param struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Command is a named operation exposed to front-ends.
type Command struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Params      []Param `json:"params"`
	Handler     Handler `json:"-"`
}

// Registry holds the commands available for invocation. It is safe for
// concurrent use.
type Registry struct {
	commands *xsync.Map[string, Command]
	logger   *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger discards invocation logs.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		commands: xsync.NewMap[string, Command](),
		logger:   logger,
	}
}

// Register adds cmd. Names must be unique.
func (r *Registry) Register(cmd Command) error {
	if cmd.Name == "" {
		return errors.New("command: name is required")
	}
	if cmd.Handler == nil {
		return fmt.Errorf("command: %s: handler is required", cmd.Name)
	}
	if _, loaded := r.commands.LoadOrStore(cmd.Name, cmd); loaded {
		return fmt.Errorf("command: %s: already registered", cmd.Name)
	}
	return nil
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	return r.commands.Load(name)
}

// List returns all commands sorted by name.
func (r *Registry) List() []Command {
	out := make([]Command, 0, r.commands.Size())
	r.commands.Range(func(_ string, cmd Command) bool {
		out = append(out, cmd)
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Invoke runs the named command with args.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (string, error) {
	cmd, ok := r.commands.Load(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", apperr.ErrUnknownCommand, name)
	}

	id := uuid.NewString()
	start := time.Now()
	out, err := cmd.Handler(ctx, args)

	attrs := []any{
		slog.String("invocation_id", id),
		slog.String("command", name),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		r.logger.DebugContext(ctx, "command failed", append(attrs, slog.String("error", err.Error()))...)
		return "", err
	}
	r.logger.DebugContext(ctx, "command completed", append(attrs, slog.Int("result_len", len(out)))...)
	return out, nil
}

// DecodeArgs unmarshals raw JSON arguments into v and validates it. An empty
// payload decodes as an empty object. Failures wrap apperr.ErrInvalidArgs.
func DecodeArgs(raw json.RawMessage, v validation.Validatable) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidArgs, err)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidArgs, err)
	}
	return nil
}
