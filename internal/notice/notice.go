// Package notice turns errors into the short messages shown to users. Raw
// backend errors never leave this package.
package notice

import (
	"errors"
	"log/slog"
	"strings"

	"roadside-booking-api/internal/data"
)

type Level string

const (
	Success Level = "success"
	Warning Level = "warning"
	Error   Level = "error"
)

type Notice struct {
	Level Level  `json:"level"`
	Text  string `json:"text"`
}

func Successf(text string) Notice { return Notice{Level: Success, Text: text} }
func Warn(text string) Notice     { return Notice{Level: Warning, Text: text} }
func Fail(text string) Notice     { return Notice{Level: Error, Text: text} }

// FromError maps a data-layer error to a notice. fallback is used when the
// error carries nothing safe to show.
func FromError(err error, fallback string) Notice {
	var ae *data.AuthError
	if errors.As(err, &ae) {
		return Fail(ae.Error())
	}
	var re *data.RemoteError
	if errors.As(err, &re) {
		if errors.Is(re, data.ErrNotFound) {
			return Fail(capitalize(re.Op) + ": not found")
		}
		return Fail("Error " + re.Op)
	}
	return Fail(fallback)
}

// LogReporter logs every data-layer failure at warn level.
func LogReporter(log *slog.Logger) data.Reporter {
	return data.ReporterFunc(func(op string, err error) {
		log.Warn("data call failed", "op", op, "error", err)
	})
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
