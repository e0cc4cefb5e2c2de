package mirror

import "fmt"

type State uint8

const (
	StateUnconfigured State = iota
	StateMounting
	StateMounted
	StateUploading
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateUnconfigured: "unconfigured",
	StateMounting:     "mounting",
	StateMounted:      "mounted",
	StateUploading:    "uploading",
	StateDone:         "done",
	StateFailed:       "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}
