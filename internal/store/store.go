package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/revdex/revdex/internal/domain"
)

// Store exposes the bulk queries the indexer runs against the review
// database. All reads go through the reader pool; reconstruction needs
// exactly one FetchReviews and one FetchCommentJoinRows call per review
// request.
type Store struct {
	db *DB
}

// NewStore creates a store backed by the given DB.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// FetchEligibleRequests returns review requests whose status is in the
// given set, optionally restricted to those modified after the
// watermark, ordered by id.
func (s *Store) FetchEligibleRequests(ctx context.Context, statuses []string, modifiedAfter *time.Time) ([]*domain.ReviewRequest, error) {
	if len(statuses) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, status, summary, description, testing_done, bugs_closed,
		       changenum, submitter_username, submitter_fullname, last_updated
		FROM review_requests
		WHERE status IN (%s)`, placeholders(len(statuses)))

	args := make([]any, 0, len(statuses)+1)
	for _, st := range statuses {
		args = append(args, st)
	}
	if modifiedAfter != nil {
		query += " AND last_updated > ?"
		args = append(args, formatTime(*modifiedAfter))
	}
	query += " ORDER BY id"

	rows, err := s.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query eligible requests: %w", err)
	}
	defer rows.Close()

	var requests []*domain.ReviewRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review requests: %w", err)
	}

	return requests, nil
}

// GetRequest returns a single review request by id, or nil when it does
// not exist.
func (s *Store) GetRequest(ctx context.Context, id int64) (*domain.ReviewRequest, error) {
	const query = `
		SELECT id, status, summary, description, testing_done, bugs_closed,
		       changenum, submitter_username, submitter_fullname, last_updated
		FROM review_requests
		WHERE id = ?`

	row := s.db.Reader.QueryRowContext(ctx, query, id)
	req, err := scanRequest(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get review request %d: %w", id, err)
	}
	return req, nil
}

// FetchReviews returns all reviews of a request, drafts included,
// ordered by timestamp then id. This order is the fetch order that fixes
// entry and reply order during reconstruction.
func (s *Store) FetchReviews(ctx context.Context, requestID int64) ([]*domain.Review, error) {
	const query = `
		SELECT id, request_id, public, base_reply_to_id,
		       body_top_reply_to_id, body_bottom_reply_to_id,
		       timestamp, body_top, body_bottom
		FROM reviews
		WHERE request_id = ?
		ORDER BY timestamp, id`

	rows, err := s.db.Reader.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("query reviews for request %d: %w", requestID, err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}

	return reviews, nil
}

// FetchCommentJoinRows returns the review/comment join rows for the
// given review id set, ordered by filediff id, first line, then comment
// timestamp. The ordering is a content contract: it fixes the order
// comments appear in the aggregate index text.
func (s *Store) FetchCommentJoinRows(ctx context.Context, reviewIDs []int64) ([]domain.JoinRow, error) {
	if len(reviewIDs) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT rc.review_id, c.id, c.text, c.reply_to_id,
		       c.filediff_id, c.first_line, c.timestamp
		FROM review_comments rc
		JOIN comments c ON c.id = rc.comment_id
		WHERE rc.review_id IN (%s)
		ORDER BY c.filediff_id, c.first_line, c.timestamp`, placeholders(len(reviewIDs)))

	args := make([]any, len(reviewIDs))
	for i, id := range reviewIDs {
		args[i] = id
	}

	rows, err := s.db.Reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query comment join rows: %w", err)
	}
	defer rows.Close()

	var joinRows []domain.JoinRow
	for rows.Next() {
		var row domain.JoinRow
		var comment domain.Comment
		var replyTo sql.NullInt64
		var ts string

		err := rows.Scan(&row.ReviewID, &comment.ID, &comment.Text, &replyTo,
			&comment.FileDiffID, &comment.FirstLine, &ts)
		if err != nil {
			return nil, fmt.Errorf("scan comment join row: %w", err)
		}

		if replyTo.Valid {
			id := replyTo.Int64
			comment.ReplyToID = &id
		}
		comment.Timestamp, err = parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("parse comment timestamp: %w", err)
		}

		row.Comment = &comment
		joinRows = append(joinRows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment join rows: %w", err)
	}

	return joinRows, nil
}

// FetchDiffFiles returns the file records of every diff set in a
// request's history, ordered by diff set then file id.
func (s *Store) FetchDiffFiles(ctx context.Context, requestID int64) ([]domain.FileDiff, error) {
	const query = `
		SELECT f.source_file, f.dest_file
		FROM filediffs f
		JOIN diffsets d ON d.id = f.diffset_id
		WHERE d.request_id = ?
		ORDER BY d.id, f.id`

	rows, err := s.db.Reader.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("query diff files for request %d: %w", requestID, err)
	}
	defer rows.Close()

	var files []domain.FileDiff
	for rows.Next() {
		var fd domain.FileDiff
		if err := rows.Scan(&fd.SourceFile, &fd.DestFile); err != nil {
			return nil, fmt.Errorf("scan diff file: %w", err)
		}
		files = append(files, fd)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diff files: %w", err)
	}

	return files, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRequest(s scanner) (*domain.ReviewRequest, error) {
	var req domain.ReviewRequest
	var lastUpdated string

	err := s.Scan(
		&req.ID, &req.Status, &req.Summary, &req.Description,
		&req.TestingDone, &req.BugsClosed, &req.Changenum,
		&req.SubmitterUsername, &req.SubmitterFullName, &lastUpdated,
	)
	if err != nil {
		return nil, err
	}

	req.LastUpdated, err = parseTime(lastUpdated)
	if err != nil {
		return nil, fmt.Errorf("parse last_updated: %w", err)
	}

	return &req, nil
}

func scanReview(s scanner) (*domain.Review, error) {
	var review domain.Review
	var public int
	var baseReplyTo, bodyTopReplyTo, bodyBottomReplyTo sql.NullInt64
	var ts string

	err := s.Scan(
		&review.ID, &review.RequestID, &public, &baseReplyTo,
		&bodyTopReplyTo, &bodyBottomReplyTo, &ts,
		&review.BodyTop, &review.BodyBottom,
	)
	if err != nil {
		return nil, err
	}

	review.Public = public != 0
	review.BaseReplyToID = nullableID(baseReplyTo)
	review.BodyTopReplyToID = nullableID(bodyTopReplyTo)
	review.BodyBottomReplyToID = nullableID(bodyBottomReplyTo)

	review.Timestamp, err = parseTime(ts)
	if err != nil {
		return nil, fmt.Errorf("parse review timestamp: %w", err)
	}

	return &review, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// timeLayout is fixed-width so stored timestamps compare correctly as
// strings in SQL (the watermark filter relies on this). All stored times
// are UTC.
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err == nil {
		return t, nil
	}
	// Rows written by other tooling may use RFC 3339.
	return time.Parse(time.RFC3339Nano, s)
}
