package owned

import "errors"

// ErrInvalidUTF8 indicates input to a String mutator was not valid UTF-8.
var ErrInvalidUTF8 = errors.New("owned: invalid UTF-8")
