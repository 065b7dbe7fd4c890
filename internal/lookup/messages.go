// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package lookup

import (
	"fmt"
	"strings"
)

// TrailerNotFound is shown when no trailer could be found.
func TrailerNotFound(title string) string {
	return fmt.Sprintf("No trailer found for **%s**.", title)
}

// ProvidersNotFound is shown when no provider could be found.
func ProvidersNotFound(title, country string) string {
	return fmt.Sprintf("No streaming provider found for **%s** in %s.", title, country)
}

// FormatProvidersList renders providers as a sentence. It returns false for
// an empty list.
func FormatProvidersList(providers []string, title, country string) (string, bool) {
	switch len(providers) {
	case 0:
		return "", false
	case 1:
		return fmt.Sprintf("Available streaming platform in %s for **%s**: %s.", country, title, providers[0]), true
	case 2:
		return fmt.Sprintf("Available streaming platforms in %s for **%s**: %s and %s.", country, title, providers[0], providers[1]), true
	}

	last := len(providers) - 1
	list := strings.Join(providers[:last], ", ") + ", and " + providers[last]
	return fmt.Sprintf("Available streaming platforms in %s for **%s**: %s.", country, title, list), true
}
