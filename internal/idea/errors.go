package idea

import "errors"

var (
	ErrNotFound            = errors.New("idea not found")
	ErrAnalyzerUnavailable = errors.New("analysis service unavailable")
)
