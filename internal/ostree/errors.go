package ostree

import "errors"

var (
	ErrOSTree       = errors.New("ostree command failed")
	ErrNotInstalled = errors.New("ostree binary not found")
	ErrNoCommit     = errors.New("no commit object in repository")
)
