package feedback

import (
	"io"
	"time"

	"github.com/feedbackportal/portal-client/transport"
)

// Author is a reference to the user who wrote a feedback record.
type Author struct {
	ID   transport.ID `json:"_id"`
	Name string       `json:"name"`
}

// Reply is an admin response appended to a feedback record. The reply
// sequence is append-only; it only ever grows.
type Reply struct {
	Admin     *Author   `json:"admin"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feedback is a user-submitted rating + text + optional image item, with zero
// or more admin replies in chronological order.
type Feedback struct {
	ID        transport.ID `json:"_id"`
	Author    *Author      `json:"user"`
	Text      string       `json:"text"`
	Rating    int          `json:"rating"`
	ImageURL  string       `json:"imageUrl,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	Replies   []Reply      `json:"replies,omitempty"`
}

// SortOrder selects list ordering by creation time.
type SortOrder string

const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
)

// ListFilters narrows a feedback listing. Filters are view-local and never
// persisted. When UserID is set the per-user endpoint is targeted and the
// shared collection is left untouched.
type ListFilters struct {
	Rating *int
	SortBy SortOrder
	UserID string
}

// ImageAttachment is an optional image accompanying a submission.
type ImageAttachment struct {
	Name   string
	Reader io.Reader
}

// sanitize drops corrupt records - anything missing an identifier or an
// author reference - so partially-trusted structures never flow deeper into
// the client. Identifier normalisation to string form happens at decode time
// (transport.ID).
func sanitize(records []Feedback) []Feedback {
	clean := make([]Feedback, 0, len(records))
	for _, record := range records {
		if record.ID == "" || record.Author == nil || record.Author.ID == "" {
			continue
		}
		clean = append(clean, record)
	}
	return clean
}
