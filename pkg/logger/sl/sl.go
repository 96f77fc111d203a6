// Package sl holds small slog helpers shared by every layer.
package sl

import "log/slog"

// Err returns the attribute used to log an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}

	return slog.String("error", err.Error())
}
