package core

import (
	"errors"
)

var (
	ErrInvalidColour     = errors.New("invalid hex colour")
	ErrNoScene           = errors.New("no scene bound")
	ErrNoSelection       = errors.New("no part selected")
	ErrUnknownSwatch     = errors.New("colour not in palette")
	ErrUnknownResource   = errors.New("unknown resource type")
	ErrEventSystemClosed = errors.New("event system closed")
	ErrShareTimeout      = errors.New("share request timed out")
)
