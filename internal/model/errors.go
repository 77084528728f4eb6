package model

import "errors"

var (
	ErrParse          = errors.New("parse error")
	ErrInvalidVariant = errors.New("invalid order variant")
	ErrInvalidMenu    = errors.New("invalid menu")
)
