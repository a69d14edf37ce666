package export

import "errors"

// Export errors.
var (
	// ErrNameConflict means two external resources resolved to the same
	// published name. Declared names are taken verbatim, so a declared
	// name may collide with another declared name or with a generated one.
	ErrNameConflict = errors.New("resource name conflict")

	// ErrSessionFinalized is returned by any call made after Finalize.
	ErrSessionFinalized = errors.New("session already finalized")

	// ErrUnsafeName means a declared resource name would escape the
	// output directory when written to disk.
	ErrUnsafeName = errors.New("unsafe resource name")
)
