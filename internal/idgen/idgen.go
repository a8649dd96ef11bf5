// Package idgen generates time-ordered unique IDs for operation records.
package idgen

import (
	"fmt"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefix is prepended to every generated record ID.
var Prefix = "op_"

// Alphabet defines the character set used for the random suffix.
var Alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// SuffixLength is the number of random characters appended after the timestamp.
var SuffixLength = 6

// NewRecordID returns a record ID of the form op_<timestamp>_<random>.
// The timestamp component keeps IDs sortable by creation time; the random
// suffix disambiguates records created within the same second.
func NewRecordID(now time.Time) (string, error) {
	suffix, err := nanoid.Generate(Alphabet, SuffixLength)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return Prefix + now.UTC().Format("20060102_150405") + "_" + suffix, nil
}
