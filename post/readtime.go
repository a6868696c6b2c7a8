package post

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eringen/spacetraveling/richtext"
)

// WordsPerMinute is the reading speed used by EstimateReadingTime.
const WordsPerMinute = 200

// ErrMalformedContent is returned when a content block lacks its heading or body.
var ErrMalformedContent = errors.New("post: malformed content block")

// WordCount returns the number of whitespace-delimited words across all
// headings and bodies of content.
func WordCount(content []ContentBlock) (int, error) {
	total := 0
	for i, b := range content {
		if b.Heading == nil {
			return 0, fmt.Errorf("%w: block %d has no heading", ErrMalformedContent, i)
		}
		if b.Body == nil {
			return 0, fmt.Errorf("%w: block %d has no body", ErrMalformedContent, i)
		}
		total += len(strings.Fields(*b.Heading)) + richtext.WordCount(b.Body)
	}
	return total, nil
}

// EstimateReadingTime returns the minutes needed to read content, rounded
// up. Absent or empty content reads in 0 minutes.
func EstimateReadingTime(content []ContentBlock) (int, error) {
	words, err := WordCount(content)
	if err != nil {
		return 0, err
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute, nil
}
