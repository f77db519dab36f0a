package core

import "errors"

// Failure taxonomy shared by the handshake and the command loop. At
// handshake time the first three terminate the connection with distinct
// close codes; during command handling every category becomes a direct
// error reply and the connection stays open.
var (
	ErrAuthRequired   = errors.New("authentication required")
	ErrRoomNotFound   = errors.New("room not found")
	ErrForbidden      = errors.New("forbidden")
	ErrValidation     = errors.New("validation failed")
	ErrUnknownCommand = errors.New("unknown command type")

	ErrBackpressure = errors.New("send buffer full")
)
