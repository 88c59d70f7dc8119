package render

import (
	"github.com/vango-dev/progressive/internal/errors"
)

// Sentinel errors. Every error returned by this package matches exactly one
// of them (or ErrInvalidStyle/ErrInvalidInnerHTML) with errors.Is.
var (
	ErrInvalidElement       = errors.New("R001")
	ErrInvalidTagName       = errors.New("R002")
	ErrConflictingContent   = errors.New("R003")
	ErrUnsupportedOperation = errors.New("R004")
	ErrInvalidStyle         = errors.New("R005")
	ErrInvalidInnerHTML     = errors.New("R006")
)

func newError(code, detail string) *errors.Error {
	return errors.New(code).WithDetail(detail)
}
