package upload

import "errors"

// ErrUnsupportedType is returned when an upload's extension is not an
// accepted image type.
var ErrUnsupportedType = errors.New("unsupported file type")
