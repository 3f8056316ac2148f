package reviews

import (
	"context"

	"github.com/revdex/revdex/internal/domain"
)

// FakeStore serves canned rows for reconstruction tests. It records the
// review-id sets passed to FetchCommentJoinRows so tests can assert the
// bulk-query contract. Exported for use by other packages' tests.
type FakeStore struct {
	Reviews  []*domain.Review
	JoinRows []domain.JoinRow

	ReviewsErr  error
	JoinRowsErr error

	ReviewCalls  []int64
	JoinRowCalls [][]int64
}

var _ Store = (*FakeStore)(nil)

// FetchReviews returns the configured reviews in order.
func (s *FakeStore) FetchReviews(_ context.Context, requestID int64) ([]*domain.Review, error) {
	s.ReviewCalls = append(s.ReviewCalls, requestID)
	if s.ReviewsErr != nil {
		return nil, s.ReviewsErr
	}
	return s.Reviews, nil
}

// FetchCommentJoinRows returns the configured join rows in order.
func (s *FakeStore) FetchCommentJoinRows(_ context.Context, reviewIDs []int64) ([]domain.JoinRow, error) {
	s.JoinRowCalls = append(s.JoinRowCalls, reviewIDs)
	if s.JoinRowsErr != nil {
		return nil, s.JoinRowsErr
	}
	return s.JoinRows, nil
}
