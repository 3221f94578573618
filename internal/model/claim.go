package model

// ClaimRequest is the full input to a single verification: the document
// bytes plus the position the claimed substring is asserted to occupy.
// A request is never mutated after construction.
type ClaimRequest struct {
	DocumentBytes []byte `json:"document_bytes"`     // Raw document content
	PageNumber    uint32 `json:"page_number"`        // Declared page label (0-based, not used for slicing)
	Offset        uint64 `json:"offset"`             // Byte offset the substring is claimed at
	Substring     string `json:"substring"`          // Expected substring at the offset
}

// ClaimResult is the outcome of one verification call. Verified=false is
// a normal result, not an error; rejected requests never produce one.
type ClaimResult struct {
	Verified   bool   `json:"verified"`
	PageNumber uint32 `json:"page_number"`
	Offset     uint64 `json:"offset"`
	Substring  string `json:"substring"`
	Metadata   string `json:"metadata,omitempty"` // Descriptive text (e.g., byte count)
}

// ClaimSpec is a claim as stated in a manifest or on the command line:
// the document is referenced by path or URL, not embedded.
type ClaimSpec struct {
	Document  string `json:"document" yaml:"document"`   // File path or http(s) URL
	Page      uint32 `json:"page" yaml:"page"`           // Declared page label
	Offset    uint64 `json:"offset" yaml:"offset"`       // Byte offset within the document
	Substring string `json:"substring" yaml:"substring"` // Expected substring
}

// Request materializes a spec against loaded document bytes.
func (c ClaimSpec) Request(documentBytes []byte) ClaimRequest {
	return ClaimRequest{
		DocumentBytes: documentBytes,
		PageNumber:    c.Page,
		Offset:        c.Offset,
		Substring:     c.Substring,
	}
}
