package savestate

import "errors"

var (
	errCannotRewind           = errors.New("savestate: fewer than two frames in history, cannot rewind")
	errIndexPlaneSizeMismatch = errors.New("savestate: decoded index plane size does not match history")
)
