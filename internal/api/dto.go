package api

import "github.com/starford/filebridge/internal/command"

// InvokeResponse carries the text produced by a successful command.
type InvokeResponse struct {
	Result string `json:"result" example:"JVBERi0xLjcK" validate:"required"`
}

// ErrorResponse carries the message of a failed request or command.
type ErrorResponse struct {
	Error string `json:"error" example:"open /tmp/cv.pdf: no such file or directory" validate:"required"`
}

// CommandInfo describes one invocable command.
type CommandInfo struct {
	Name        string          `json:"name" example:"read_file_base64" validate:"required"`
	Description string          `json:"description" validate:"required"`
	Params      []command.Param `json:"params" validate:"required"`
}

// CommandListResponse wraps the command listing.
type CommandListResponse struct {
	Commands []CommandInfo `json:"commands" validate:"required"`
}
