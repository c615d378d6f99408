package build

import "errors"

// Sentinel errors wrapped by stage failures, usable with errors.Is.
var (
	ErrAssets   = errors.New("landscape: web assets error")
	ErrLoad     = errors.New("landscape: load error")
	ErrCollect  = errors.New("landscape: external data collection error")
	ErrGenerate = errors.New("landscape: generate error")
)
