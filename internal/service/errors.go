package service

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrMenuNotFound   = errors.New("menu not found")
	ErrUserResolution = errors.New("user resolution failed")
	ErrRemoteSync     = errors.New("remote sync failed")
)
