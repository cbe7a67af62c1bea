package service

import (
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/squadledger/internal/models"
)

// toConnectError maps the domain error taxonomy onto Connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, models.ErrInvalidTransaction),
		errors.Is(err, models.ErrInvalidSplitRequest),
		errors.Is(err, models.ErrInvalidSquad):
		code = connect.CodeInvalidArgument
	case errors.Is(err, models.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrConflict):
		code = connect.CodeAborted
	case errors.Is(err, models.ErrAlreadyMember):
		code = connect.CodeAlreadyExists
	case errors.Is(err, models.ErrForbidden):
		code = connect.CodePermissionDenied
	case errors.Is(err, models.ErrStorage):
		code = connect.CodeUnavailable
	}
	return connect.NewError(code, err)
}

var errUnauthenticated = connect.NewError(connect.CodeUnauthenticated, errors.New("caller identity missing"))
