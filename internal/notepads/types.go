package notepads

import "github.com/simpliv/notepads/internal/ledger"

// CreateNotepadParams carries the fields for a new notepad.
type CreateNotepadParams struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	CategoryID string `json:"category"`
}

// UpdateNotepadParams carries the full desired state of a notepad.
type UpdateNotepadParams struct {
	Title      string `json:"title"`
	Text       string `json:"text"`
	CategoryID string `json:"category"`
}

// PrepopulateResult is the {user, category, notepad} triple produced by
// onboarding a fresh account.
type PrepopulateResult struct {
	User     *ledger.User     `json:"user"`
	Category *ledger.Category `json:"category"`
	Notepad  *ledger.Notepad  `json:"notepad"`
}

// NotepadView is a notepad plus derived presentation fields.
type NotepadView struct {
	ledger.Notepad
	Preview string `json:"preview,omitempty"`
	HTML    string `json:"html,omitempty"`
}
