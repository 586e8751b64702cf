package task

type Status string

// Wire values are fixed by the web client.
const (
	StatusToDo       Status = "TO_DO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

func Statuses() []Status {
	return []Status{StatusToDo, StatusInProgress, StatusDone}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	default:
		return false
	}
}
