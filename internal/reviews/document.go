package reviews

import (
	"strconv"
	"strings"

	"github.com/revdex/revdex/internal/domain"
)

// BuildDocument assembles the index document for a review request from
// its reconstructed entries and its diff file records. It fails only on
// a reply cycle surfaced by flattening.
func BuildDocument(request *domain.ReviewRequest, entries []*domain.Entry, files []domain.FileDiff) (domain.ReviewDocument, error) {
	var commentParts []string
	for _, entry := range entries {
		text, err := FlattenEntry(entry)
		if err != nil {
			return domain.ReviewDocument{}, err
		}
		commentParts = append(commentParts, text)
	}
	comment := strings.Join(commentParts, "\n")

	// The tokenizer won't split bug IDs on commas.
	bugs := strings.Join(strings.Split(request.BugsClosed, ","), " ")

	author := request.SubmitterUsername + " " + request.SubmitterFullName

	var changenum string
	if request.Changenum != 0 {
		changenum = strconv.FormatInt(request.Changenum, 10)
	}

	file := joinUniquePaths(files)

	text := strings.Join([]string{
		request.Summary,
		request.Description,
		changenum,
		request.TestingDone,
		bugs,
		author,
		comment,
		file,
	}, "\n")

	return domain.ReviewDocument{
		ID:        strconv.FormatInt(request.ID, 10),
		Summary:   request.Summary,
		Changenum: changenum,
		Bug:       bugs,
		Author:    author,
		Username:  request.SubmitterUsername,
		Comment:   comment,
		File:      file,
		Text:      text,
	}, nil
}

// joinUniquePaths collects source and destination paths across all diff
// sets, de-duplicated in first-seen order, newline-joined.
func joinUniquePaths(files []domain.FileDiff) string {
	seen := make(map[string]bool)
	var paths []string
	for _, fd := range files {
		for _, p := range []string{fd.SourceFile, fd.DestFile} {
			if p != "" && !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
	}
	return strings.Join(paths, "\n")
}
