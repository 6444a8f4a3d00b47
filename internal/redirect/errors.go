package redirect

import "errors"

// ErrBaseURLNotAbsolute is returned when the configured base URL has no
// scheme or host.
var ErrBaseURLNotAbsolute = errors.New("redirect: base url must be absolute")
