package task

type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	DueDate     *Date
	// UserID is the owning user. It is always read back from the store.
	UserID int64
}

type Request struct {
	Title       string `json:"title" validate:"notblank,max=100"`
	Description string `json:"description"`
	Status      Status `json:"status" validate:"required,taskstatus"`
	DueDate     *Date  `json:"dueDate"`
	UserID      int64  `json:"userId" validate:"required"`
}

type Response struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	DueDate     *Date  `json:"dueDate"`
	UserID      int64  `json:"userId"`
}

func FromRequest(req Request) Task {
	t := Task{UserID: req.UserID}
	t.Apply(req)
	return t
}

// Apply overwrites the editable fields. Ownership changes are handled by the
// caller because they need a user lookup.
func (t *Task) Apply(req Request) {
	t.Title = req.Title
	t.Description = req.Description
	t.Status = req.Status
	t.DueDate = req.DueDate
}

func ToResponse(t Task) Response {
	return Response{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		UserID:      t.UserID,
	}
}

func ToResponses(tasks []Task) []Response {
	out := make([]Response, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToResponse(t))
	}
	return out
}
