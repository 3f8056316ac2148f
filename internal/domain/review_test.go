package domain

import (
	"testing"
	"time"
)

func TestReviewIsReply(t *testing.T) {
	top := &Review{ID: 1}
	if top.IsReply() {
		t.Error("Review without base reply target should not be a reply")
	}

	target := int64(1)
	reply := &Review{ID: 2, BaseReplyToID: &target}
	if !reply.IsReply() {
		t.Error("Review with base reply target should be a reply")
	}
}

func TestCommentIsReply(t *testing.T) {
	top := &Comment{ID: 1}
	if top.IsReply() {
		t.Error("Comment without reply target should not be a reply")
	}

	target := int64(1)
	reply := &Comment{ID: 2, ReplyToID: &target}
	if !reply.IsReply() {
		t.Error("Comment with reply target should be a reply")
	}
}

func TestNewEntry(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	review := &Review{ID: 1, Timestamp: ts}

	entry := NewEntry(review)
	if entry.Review != review {
		t.Error("Entry should hold the review")
	}
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("Entry timestamp = %v, want %v", entry.Timestamp, ts)
	}
	if entry.Comments[KindDiff] == nil {
		t.Error("Diff comment bucket should be initialized")
	}
	if !entry.LastReplyAt.IsZero() {
		t.Error("LastReplyAt should start zero")
	}
}
