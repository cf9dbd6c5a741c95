package util

import "errors"

var (
	ErrAlreadyValid     = &VmError{Message: "page is already valid"}
	ErrNoMemory         = &VmError{Message: "no frame available"}
	ErrThreadTerminated = &VmError{Message: "thread terminated during swap"}
	ErrPageOutOfRange   = &VmError{Message: "page number out of range"}
	ErrOffsetOutOfRange = &VmError{Message: "offset out of range"}
)

type VmError struct {
	Message string
	Err     error
}

func (e *VmError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *VmError) Unwrap() error {
	return e.Err
}

// Is matches on the message so that wrapped copies of a sentinel still
// compare equal to it.
func (e *VmError) Is(target error) bool {
	var t *VmError
	if !errors.As(target, &t) {
		return false
	}
	return e.Message == t.Message
}

// SwapError is returned when the backing store failed to move a page.
type SwapError struct {
	*VmError
	PageId int64
}

func NewSwapError(pageId int64, err error) *SwapError {
	return &SwapError{
		VmError: &VmError{Message: "swap failed", Err: err},
		PageId:  pageId,
	}
}
