package reviews

import (
	"errors"
	"fmt"
	"strings"

	"github.com/revdex/revdex/internal/domain"
)

// ErrReplyCycle indicates a comment reply chain that revisits a comment.
// Cycles are a data-integrity fault; flattening fails rather than
// recursing forever.
var ErrReplyCycle = errors.New("comment reply cycle detected")

// FlattenCommentChain returns the depth-first pre-order concatenation of
// a comment's text and all of its nested replies, newline-separated.
func FlattenCommentChain(comment *domain.Comment) (string, error) {
	var sb strings.Builder
	visited := make(map[int64]bool)
	if err := flattenComment(comment, visited, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func flattenComment(comment *domain.Comment, visited map[int64]bool, sb *strings.Builder) error {
	if visited[comment.ID] {
		return fmt.Errorf("%w: comment %d revisited", ErrReplyCycle, comment.ID)
	}
	visited[comment.ID] = true

	sb.WriteString(comment.Text)
	for _, reply := range comment.Replies {
		sb.WriteByte('\n')
		if err := flattenComment(reply, visited, sb); err != nil {
			return err
		}
	}
	return nil
}

// FlattenEntry concatenates one entry into a single newline-separated
// text blob: the review's body top and bottom, each body-top reply's top
// and bottom, each body-bottom reply's top and bottom, then every diff
// comment chain in fetch order.
func FlattenEntry(entry *domain.Entry) (string, error) {
	review := entry.Review
	parts := []string{review.BodyTop, review.BodyBottom}

	for _, reply := range review.BodyTopReplies {
		parts = append(parts, reply.BodyTop, reply.BodyBottom)
	}
	for _, reply := range review.BodyBottomReplies {
		parts = append(parts, reply.BodyTop, reply.BodyBottom)
	}

	for _, comment := range entry.Comments[domain.KindDiff] {
		chain, err := FlattenCommentChain(comment)
		if err != nil {
			return "", err
		}
		parts = append(parts, chain)
	}

	return strings.Join(parts, "\n"), nil
}
