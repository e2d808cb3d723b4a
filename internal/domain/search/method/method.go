package method

// Method names the request whose gathered worker responses are being joined.
type Method string

// Aggregation method constants.
const (
	// Search is the primary ranking round trip.
	Search Method = "search"
	// Summary is the secondary round trip that fetches snippets and summaries.
	Summary Method = "summary"
	// Documents fetches display data for an explicit list of document ids.
	Documents Method = "documents"
)

// IsValid checks if the method is one of the supported values.
func (m Method) IsValid() bool {
	return m == Search || m == Summary || m == Documents
}

// Phase returns the label used for metrics and logs.
func (m Method) Phase() string {
	if m == "" {
		return "unknown"
	}
	return string(m)
}
