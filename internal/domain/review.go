package domain

import "time"

// ReviewRequest status values. Pending and submitted requests are
// eligible for indexing; discarded ones are not.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusDiscarded = "discarded"
)

// ReviewRequest is a request for code review together with the metadata
// that ends up in the search index.
type ReviewRequest struct {
	ID          int64
	Status      string
	Summary     string
	Description string
	TestingDone string

	// BugsClosed is a comma-separated list of bug IDs, stored verbatim.
	BugsClosed string

	// Changenum is the SCM change number, 0 when the request has none.
	Changenum int64

	SubmitterUsername string
	SubmitterFullName string

	LastUpdated time.Time
}

// Review is one review of a request. A review with BaseReplyToID set is
// a reply to another review and never appears as a top-level entry.
// Non-public reviews are drafts and are invisible to indexing.
type Review struct {
	ID        int64
	RequestID int64
	Public    bool

	BaseReplyToID       *int64
	BodyTopReplyToID    *int64
	BodyBottomReplyToID *int64

	Timestamp  time.Time
	BodyTop    string
	BodyBottom string

	// Attached during thread reconstruction, never persisted.
	BodyTopReplies    []*Review
	BodyBottomReplies []*Review
}

// IsReply reports whether this review is a reply to another review.
func (r *Review) IsReply() bool {
	return r.BaseReplyToID != nil
}

// Comment is a single inline diff comment. Comments associate to reviews
// through a many-to-many join (JoinRow); a comment with ReplyToID set is
// a reply to another comment.
type Comment struct {
	ID        int64
	Text      string
	ReplyToID *int64

	// FileDiffID and FirstLine identify the diff location and, together
	// with Timestamp, form the stable ordering key for join-row fetches.
	FileDiffID int64
	FirstLine  int
	Timestamp  time.Time

	// Replies is attached during thread reconstruction, never persisted.
	Replies []*Comment
}

// IsReply reports whether this comment is a reply to another comment.
func (c *Comment) IsReply() bool {
	return c.ReplyToID != nil
}

// JoinRow is one row of the review/comment join relation. The join must
// be traversed rather than assumed 1:1, so fetches return the pair.
type JoinRow struct {
	ReviewID int64
	Comment  *Comment
}

// FileDiff holds the source and destination paths of one file in a diff
// set. Either path may be empty.
type FileDiff struct {
	SourceFile string
	DestFile   string
}

// CommentKind tags a bucket of comments within an entry. Only diff
// comments exist today; additional kinds plug in without touching the
// reconstruction algorithm.
type CommentKind string

// KindDiff is the comment kind for inline diff comments.
const KindDiff CommentKind = "diff"

// Entry is the reconstructed view of one top-level public review: the
// review itself, its comments grouped by kind, and timestamps used for
// ordering. Entries are ephemeral; they exist only between
// reconstruction and document assembly.
type Entry struct {
	Review    *Review
	Comments  map[CommentKind][]*Comment
	Timestamp time.Time

	// Replies holds the reply reviews targeting this entry's review, in
	// fetch order. LastReplyAt is the newest timestamp among them, zero
	// when the review has none.
	Replies     []*Review
	LastReplyAt time.Time
}

// NewEntry creates an entry for a top-level review with empty comment
// buckets.
func NewEntry(review *Review) *Entry {
	return &Entry{
		Review: review,
		Comments: map[CommentKind][]*Comment{
			KindDiff: {},
		},
		Timestamp: review.Timestamp,
	}
}
