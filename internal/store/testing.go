package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/revdex/revdex/internal/domain"
)

// NewTestDB creates a migrated, file-backed database under a test temp
// directory. Exported for use by other packages' tests.
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "reviews.db"))
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db.Writer); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return db
}

// SeedRequest inserts a review request row.
func SeedRequest(t *testing.T, db *DB, req *domain.ReviewRequest) {
	t.Helper()

	const query = `
		INSERT INTO review_requests (
			id, status, summary, description, testing_done, bugs_closed,
			changenum, submitter_username, submitter_fullname, last_updated
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := db.Writer.ExecContext(context.Background(), query,
		req.ID, req.Status, req.Summary, req.Description, req.TestingDone,
		req.BugsClosed, req.Changenum, req.SubmitterUsername,
		req.SubmitterFullName, formatTime(req.LastUpdated),
	)
	if err != nil {
		t.Fatalf("seed review request %d: %v", req.ID, err)
	}
}

// SeedReview inserts a review row.
func SeedReview(t *testing.T, db *DB, review *domain.Review) {
	t.Helper()

	const query = `
		INSERT INTO reviews (
			id, request_id, public, base_reply_to_id,
			body_top_reply_to_id, body_bottom_reply_to_id,
			timestamp, body_top, body_bottom
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	public := 0
	if review.Public {
		public = 1
	}

	_, err := db.Writer.ExecContext(context.Background(), query,
		review.ID, review.RequestID, public,
		idValue(review.BaseReplyToID), idValue(review.BodyTopReplyToID),
		idValue(review.BodyBottomReplyToID),
		formatTime(review.Timestamp), review.BodyTop, review.BodyBottom,
	)
	if err != nil {
		t.Fatalf("seed review %d: %v", review.ID, err)
	}
}

// SeedComment inserts a comment row and joins it to the given review.
func SeedComment(t *testing.T, db *DB, reviewID int64, comment *domain.Comment) {
	t.Helper()

	const insertComment = `
		INSERT INTO comments (id, text, reply_to_id, filediff_id, first_line, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`
	const insertJoin = `
		INSERT INTO review_comments (review_id, comment_id) VALUES (?, ?)`

	ctx := context.Background()
	_, err := db.Writer.ExecContext(ctx, insertComment,
		comment.ID, comment.Text, idValue(comment.ReplyToID),
		comment.FileDiffID, comment.FirstLine, formatTime(comment.Timestamp),
	)
	if err != nil {
		t.Fatalf("seed comment %d: %v", comment.ID, err)
	}

	if _, err := db.Writer.ExecContext(ctx, insertJoin, reviewID, comment.ID); err != nil {
		t.Fatalf("seed comment join %d/%d: %v", reviewID, comment.ID, err)
	}
}

// SeedDiffSet inserts a diff set with the given file records.
func SeedDiffSet(t *testing.T, db *DB, id, requestID int64, files []domain.FileDiff) {
	t.Helper()

	ctx := context.Background()
	const insertDiffSet = `INSERT INTO diffsets (id, request_id, revision) VALUES (?, ?, 1)`
	const insertFileDiff = `INSERT INTO filediffs (diffset_id, source_file, dest_file) VALUES (?, ?, ?)`

	if _, err := db.Writer.ExecContext(ctx, insertDiffSet, id, requestID); err != nil {
		t.Fatalf("seed diffset %d: %v", id, err)
	}
	for _, fd := range files {
		if _, err := db.Writer.ExecContext(ctx, insertFileDiff, id, fd.SourceFile, fd.DestFile); err != nil {
			t.Fatalf("seed filediff for diffset %d: %v", id, err)
		}
	}
}

// TouchRequest updates a request's last_updated column.
func TouchRequest(t *testing.T, db *DB, requestID int64, at time.Time) {
	t.Helper()

	_, err := db.Writer.ExecContext(context.Background(),
		`UPDATE review_requests SET last_updated = ? WHERE id = ?`,
		formatTime(at), requestID)
	if err != nil {
		t.Fatalf("touch request %d: %v", requestID, err)
	}
}

func idValue(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
