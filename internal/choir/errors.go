package choir

import "errors"

var (
	ErrUnknownSprite   = errors.New("no such singer")
	ErrInvalidTemplate = errors.New("template not in catalog")
	ErrRowFull         = errors.New("row is full")
	ErrElevatedActive  = errors.New("elevated melody is playing")
	ErrCannotSing      = errors.New("singer cannot sing")
	ErrChoirIncomplete = errors.New("choir size does not match elevated melody")
	ErrEmptyChoir      = errors.New("choir is empty")
)
