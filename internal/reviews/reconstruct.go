package reviews

import (
	"context"
	"fmt"
	"time"

	"github.com/revdex/revdex/internal/domain"
)

// Store provides the bulk queries the reconstructor needs. Exactly one
// call per method happens per reconstruction, regardless of corpus size.
//
// FetchReviews must return reviews in a deterministic order; the store
// orders by timestamp then id, and that order fixes entry and reply
// order. FetchCommentJoinRows must order by filediff id, first line,
// then comment timestamp, which fixes the order comments appear in the
// aggregate index text.
type Store interface {
	FetchReviews(ctx context.Context, requestID int64) ([]*domain.Review, error)
	FetchCommentJoinRows(ctx context.Context, reviewIDs []int64) ([]domain.JoinRow, error)
}

// Reconstructor rebuilds the logical discussion tree of a review request
// from its flat relational rows: top-level reviews, their body replies,
// and their inline comment threads.
type Reconstructor struct {
	store Store
}

// NewReconstructor creates a reconstructor backed by the given store.
func NewReconstructor(store Store) *Reconstructor {
	return &Reconstructor{store: store}
}

// Reconstruct returns one entry per top-level public review of the
// request, in fetch order. Each entry records its reply reviews and the
// newest reply timestamp; body replies attach to every public review and
// comment reply chains nest under their targets.
//
// A request with no reviews yields an empty list. Reply comments whose
// target is absent from the fetch set are dropped rather than attached
// anywhere; so are comments owned by a reply review that are not
// themselves replies. Draft (non-public) reviews are invisible
// throughout.
func (r *Reconstructor) Reconstruct(ctx context.Context, request *domain.ReviewRequest) ([]*domain.Entry, error) {
	allReviews, err := r.store.FetchReviews(ctx, request.ID)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews for request %d: %w", request.ID, err)
	}

	// One pass over the review set: collect public reviews, map them by
	// id, and bucket replies by their target review.
	reviewByID := make(map[int64]*domain.Review)
	bodyTopReplies := make(map[int64][]*domain.Review)
	bodyBottomReplies := make(map[int64][]*domain.Review)
	repliesByParent := make(map[int64][]*domain.Review)
	lastReplyAt := make(map[int64]time.Time)

	var publicReviews []*domain.Review
	var reviewIDs []int64

	for _, review := range allReviews {
		review.BodyTopReplies = nil
		review.BodyBottomReplies = nil

		if !review.Public {
			continue
		}

		publicReviews = append(publicReviews, review)
		reviewByID[review.ID] = review
		reviewIDs = append(reviewIDs, review.ID)

		if review.BaseReplyToID != nil {
			parent := *review.BaseReplyToID
			repliesByParent[parent] = append(repliesByParent[parent], review)
			if review.Timestamp.After(lastReplyAt[parent]) {
				lastReplyAt[parent] = review.Timestamp
			}
		}
		if id := review.BodyTopReplyToID; id != nil {
			bodyTopReplies[*id] = append(bodyTopReplies[*id], review)
		}
		if id := review.BodyBottomReplyToID; id != nil {
			bodyBottomReplies[*id] = append(bodyBottomReplies[*id], review)
		}
	}

	// One entry per top-level public review, preserving fetch order.
	entryByReviewID := make(map[int64]*domain.Entry)
	entries := []*domain.Entry{}
	for _, review := range publicReviews {
		if review.IsReply() {
			continue
		}
		entry := domain.NewEntry(review)
		entry.Replies = repliesByParent[review.ID]
		entry.LastReplyAt = lastReplyAt[review.ID]
		entryByReviewID[review.ID] = entry
		entries = append(entries, entry)
	}

	// Attach body reply lists uniformly to every public review, not just
	// the top-level ones, so downstream code never distinguishes.
	for id, review := range reviewByID {
		review.BodyTopReplies = bodyTopReplies[id]
		review.BodyBottomReplies = bodyBottomReplies[id]
	}

	if len(reviewIDs) == 0 {
		return entries, nil
	}

	rows, err := r.store.FetchCommentJoinRows(ctx, reviewIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch comment rows for request %d: %w", request.ID, err)
	}

	attachComments(rows, reviewByID, entryByReviewID)

	return entries, nil
}

// attachComments distributes join rows in two passes: the first builds
// the comment arena, the second nests reply comments under their targets
// and appends top-level comments to their entry's bucket.
func attachComments(rows []domain.JoinRow, reviewByID map[int64]*domain.Review, entryByReviewID map[int64]*domain.Entry) {
	commentByID := make(map[int64]*domain.Comment)
	for _, row := range rows {
		if _, ok := commentByID[row.Comment.ID]; ok {
			continue // m2m join can repeat a comment; keep one canonical instance
		}
		row.Comment.Replies = nil
		commentByID[row.Comment.ID] = row.Comment
	}

	for _, row := range rows {
		owner, ok := reviewByID[row.ReviewID]
		if !ok {
			continue // owning review is a draft or missing; drop
		}
		comment := commentByID[row.Comment.ID]

		if owner.IsReply() {
			// A comment on a reply review is itself a reply. Nest it
			// under its target when the target was fetched; a comment
			// with no target, or a target outside the fetch set, is an
			// orphan and is dropped.
			if comment.IsReply() {
				if target, ok := commentByID[*comment.ReplyToID]; ok {
					target.Replies = append(target.Replies, comment)
				}
			}
			continue
		}

		if entry, ok := entryByReviewID[owner.ID]; ok {
			entry.Comments[domain.KindDiff] = append(entry.Comments[domain.KindDiff], comment)
		}
	}
}
