// Package verify implements the claim verifier: it checks whether an
// expected substring occurs at an exact byte offset inside a document's
// decoded text. Verification is a pure function of its input; any number
// of callers may verify concurrently without coordination.
package verify

import (
	"fmt"
	"math"

	"github.com/docattest/claimcheck/internal/model"
)

// MaxPageNumber is the ceiling for the declared page label. The label is
// carried through to the result but never selects a sub-region of the
// document bytes.
const MaxPageNumber = 10000

// Verifier validates claim requests and checks substrings at offsets.
// It holds no state; the zero value and NewVerifier are equivalent.
type Verifier struct{}

// NewVerifier creates a new verifier.
func NewVerifier() *Verifier {
	return &Verifier{}
}

// Verify validates the request and, if it is well formed, reports whether
// the substring is present at the exact offset. Verified=false is a
// normal outcome; an error always means the request was rejected.
func (v *Verifier) Verify(req model.ClaimRequest) (*model.ClaimResult, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	text := DecodeLossy(req.DocumentBytes)
	verified := substringAtOffset(text, req.Offset, req.Substring)

	return &model.ClaimResult{
		Verified:   verified,
		PageNumber: req.PageNumber,
		Offset:     req.Offset,
		Substring:  req.Substring,
		Metadata:   fmt.Sprintf("checked document with %d bytes", len(req.DocumentBytes)),
	}, nil
}

// validate applies the input constraints in order; the first violation
// wins.
func validate(req model.ClaimRequest) error {
	if len(req.DocumentBytes) == 0 {
		return ErrEmptyDocument
	}
	if req.Substring == "" {
		return ErrEmptySubstring
	}
	if req.PageNumber > MaxPageNumber {
		return &PageNumberError{Page: req.PageNumber}
	}
	if req.Offset >= uint64(len(req.DocumentBytes)) {
		return ErrOffsetOutOfBounds
	}
	if req.Offset > math.MaxUint64-uint64(len(req.Substring)) {
		return &OffsetOverflowError{Offset: req.Offset}
	}
	return nil
}

// substringAtOffset reports whether text carries sub starting exactly at
// the given byte offset of the decoded text. An offset range that falls
// outside the decoded text is a mismatch, not an error: lossy decoding
// may have changed the length relative to the raw bytes.
func substringAtOffset(text string, offset uint64, sub string) bool {
	end := offset + uint64(len(sub))
	if end > uint64(len(text)) {
		return false
	}
	return text[offset:end] == sub
}
