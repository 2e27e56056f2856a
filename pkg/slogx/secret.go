package slogx

import "log/slog"

const secretPreview = 12

// Secret wraps a bearer credential so that only a short prefix ever reaches
// the log output.
type Secret string

func (s Secret) LogValue() slog.Value {
	switch {
	case s == "":
		return slog.StringValue("")
	case len(s) <= secretPreview:
		return slog.StringValue("***")
	default:
		return slog.StringValue(string(s[:secretPreview]) + "...")
	}
}
