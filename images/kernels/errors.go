package kernels

import "github.com/pkg/errors"

// Error kinds returned by the blur engine. Returned errors wrap one of these
// with the offending values, test for them with errors.Is.
var (
	// ErrInvalidArgument reports iterations, radius or dimensions outside the permitted bounds.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedFormat reports a buffer that is not 4 channels of 8 bits.
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	// ErrOutOfMemory reports that the division table or scratch line could not be allocated.
	ErrOutOfMemory = errors.New("out of memory")
	// ErrBufferAccess reports that exclusive access to the pixels could not be acquired or released.
	ErrBufferAccess = errors.New("buffer access failure")
)
