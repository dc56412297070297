package models

// NoteView represents a note for template rendering
type NoteView struct {
	ID               string
	Title            string
	Content          string
	Owner            string
	SharedWith       []string
	SharedWithViewer bool
}

// EditView is the note currently being edited
type EditView struct {
	ID      string
	Title   string
	Content string
}

// NotesPageView is everything the notes page and its list fragment render
type NotesPageView struct {
	ViewID       string
	Notes        []NoteView
	Rendered     map[string]string
	DraftTitle   string
	DraftContent string
	Edit         *EditView
	Query        string
	Notice       string
	Live         bool
}

// AuthPageView backs the login and register forms
type AuthPageView struct {
	Error    string
	Username string
	Email    string
}
