package plist

import "errors"

var (
	ErrParse       = errors.New("plist parse error")
	ErrUnsupported = errors.New("unsupported plist")
)
