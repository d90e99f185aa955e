// export_test.go exports private functions for white-box testing.
package logger

// ErrorEntry mirrors errorEntry with exported fields.
type ErrorEntry struct {
	Message  string
	Metadata map[string]any
}

// CollectErrorEntriesExported exposes collectErrorEntries.
func CollectErrorEntriesExported(err error) []ErrorEntry {
	entries := collectErrorEntries(err)
	if entries == nil {
		return nil
	}
	out := make([]ErrorEntry, len(entries))
	for i, e := range entries {
		out[i] = ErrorEntry{Message: e.message, Metadata: e.metadata}
	}
	return out
}

// FormatErrorEntriesExported exposes formatErrorEntries.
func FormatErrorEntriesExported(entries []ErrorEntry) string {
	in := make([]errorEntry, len(entries))
	for i, e := range entries {
		in[i] = errorEntry{message: e.Message, metadata: e.Metadata}
	}
	return formatErrorEntries(in)
}
