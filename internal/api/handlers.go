package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/filebridge/internal/apperr"
	"github.com/starford/filebridge/internal/command"
)

// maxArgsBytes bounds the JSON argument payload. File contents never travel
// in the request.
const maxArgsBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	reg *command.Registry
}

// NewHandler creates a new Handler.
func NewHandler(reg *command.Registry) *Handler {
	return &Handler{reg: reg}
}

// ListCommands handles GET /api/commands.
//
//	@Summary		List invocable commands
//	@Tags			commands
//	@Produce		json
//	@Success		200	{object}	CommandListResponse
//	@Security		BearerAuth
//	@Router			/commands [get]
func (h *Handler) ListCommands(w http.ResponseWriter, _ *http.Request) {
	cmds := h.reg.List()
	out := make([]CommandInfo, len(cmds))
	for i, c := range cmds {
		params := c.Params
		if params == nil {
			params = []command.Param{}
		}
		out[i] = CommandInfo{Name: c.Name, Description: c.Description, Params: params}
	}
	writeJSON(w, http.StatusOK, CommandListResponse{Commands: out})
}

// Invoke handles POST /api/invoke/{command}.
//
//	@Summary		Invoke a command with JSON arguments
//	@Tags			commands
//	@Accept			json
//	@Produce		json
//	@Param			command	path		string	true	"Command name"	example(read_file_base64)
//	@Param			body	body		object	false	"Command arguments, e.g. {\"path\": \"/tmp/cv.pdf\"}"
//	@Success		200		{object}	InvokeResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/invoke/{command} [post]
func (h *Handler) Invoke(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "command")
	if _, ok := h.reg.Lookup(name); !ok {
		writeJSON(w, http.StatusNotFound, errorBody(fmt.Sprintf("%s: %s", apperr.ErrUnknownCommand, name)))
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxArgsBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("request body too large or unreadable"))
		return
	}
	if len(raw) > 0 && !json.Valid(raw) {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	out, err := h.reg.Invoke(r.Context(), name, raw)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnknownCommand):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrInvalidArgs):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Debug("command returned failure",
				slog.String("command", name),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		}
		return
	}
	writeJSON(w, http.StatusOK, InvokeResponse{Result: out})
}
