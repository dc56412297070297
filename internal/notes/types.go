package notes

// Note is a note as the remote API returns it.
type Note struct {
	ID         string   `json:"_id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Owner      string   `json:"owner"`
	SharedWith []string `json:"sharedWith"`
}

// NoteInput is the body of create and update calls.
type NoteInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ShareInput is the body of a share call.
type ShareInput struct {
	Email string `json:"email"`
}

// Draft is an unsubmitted new note.
type Draft struct {
	Title   string
	Content string
}

// EditDraft is an unsubmitted change to an existing note.
type EditDraft struct {
	ID      string
	Title   string
	Content string
}

// State is a point-in-time copy of a View.
type State struct {
	Notes  []Note
	Draft  Draft
	Edit   *EditDraft
	Query  string
	Notice string
}
