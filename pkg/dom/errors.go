package dom

import "errors"

var (
	ErrParse          = errors.New("dom: failed to parse html")
	ErrRender         = errors.New("dom: failed to render html")
	ErrForeignElement = errors.New("dom: element belongs to another document implementation")
)
