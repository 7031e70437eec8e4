package async

import "errors"

var ErrNilFunc = errors.New("async: function cannot be nil")
