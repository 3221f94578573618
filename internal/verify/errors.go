package verify

import (
	"errors"
	"fmt"
)

// The verifier rejects malformed requests with one of a closed set of
// errors. All of them are input-validation failures; none is internal or
// fatal, and a substring mismatch is never an error.
var (
	// ErrEmptyDocument means no document bytes were supplied.
	ErrEmptyDocument = errors.New("document is empty")

	// ErrEmptySubstring means the expected substring was empty.
	ErrEmptySubstring = errors.New("substring is empty")

	// ErrOffsetOutOfBounds means the offset is at or beyond the end of
	// the document bytes.
	ErrOffsetOutOfBounds = errors.New("offset out of bounds")
)

// PageNumberError reports a page number above the allowed ceiling.
type PageNumberError struct {
	Page uint32
}

func (e *PageNumberError) Error() string {
	return fmt.Sprintf("invalid page number: %d", e.Page)
}

// OffsetOverflowError reports an offset whose sum with the substring
// length would overflow.
type OffsetOverflowError struct {
	Offset uint64
}

func (e *OffsetOverflowError) Error() string {
	return fmt.Sprintf("invalid offset: %d", e.Offset)
}

// Kind returns a short stable label for a verification error, used in
// rejection breakdowns. Unknown errors map to "other".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrEmptyDocument):
		return "empty_document"
	case errors.Is(err, ErrEmptySubstring):
		return "empty_substring"
	case errors.Is(err, ErrOffsetOutOfBounds):
		return "offset_out_of_bounds"
	}
	var pageErr *PageNumberError
	if errors.As(err, &pageErr) {
		return "invalid_page_number"
	}
	var offErr *OffsetOverflowError
	if errors.As(err, &offErr) {
		return "invalid_offset"
	}
	return "other"
}
