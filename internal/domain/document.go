package domain

// ReviewDocument is the flattened form of a review request stored in the
// Bleve search index. One document exists per indexed request; its ID is
// the decimal request id.
type ReviewDocument struct {
	// ID is the review request id as a string. Stored for retrieval but
	// not indexed; lookups go through the document ID.
	ID string `json:"id"`

	// Summary is the request's one-line summary.
	Summary string `json:"summary"`

	// Changenum is the SCM change number as a string, empty when the
	// request has none (the field is omitted from the index then).
	Changenum string `json:"changenum,omitempty"`

	// Bug is the bug-ID list with commas replaced by spaces so the
	// tokenizer splits the individual IDs.
	Bug string `json:"bug"`

	// Author is the submitter's username and display name joined by a
	// space.
	Author string `json:"author"`

	// Username is the submitter's username, matched exactly.
	Username string `json:"username"`

	// Comment is the aggregate text of every public review thread on the
	// request: review bodies, body replies, and flattened comment chains.
	Comment string `json:"comment"`

	// File is the newline-joined, de-duplicated set of all source and
	// destination paths across the request's diff sets.
	File string `json:"file"`

	// Text is the catch-all concatenation of every other field, used as
	// the default search field.
	Text string `json:"text"`
}

// Bleve field name constants for consistent references in mappings and
// queries.
const (
	DocFieldID        = "id"
	DocFieldSummary   = "summary"
	DocFieldChangenum = "changenum"
	DocFieldBug       = "bug"
	DocFieldAuthor    = "author"
	DocFieldUsername  = "username"
	DocFieldComment   = "comment"
	DocFieldFile      = "file"
	DocFieldText      = "text"
)
