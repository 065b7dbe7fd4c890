// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Package region resolves user-supplied country names and ISO 3166 codes.
// TMDb keys watch-provider results by alpha-2 code, while users type
// whatever they like ("germany", "DE", "DEU").
package region

import (
	"sort"
	"strings"
	"sync"

	"github.com/biter777/countries"
)

// Country is a resolved ISO 3166 entry.
type Country struct {
	Name   string `json:"name"`
	Alpha2 string `json:"alpha2"`
	Alpha3 string `json:"alpha3"`
}

var (
	namesOnce sync.Once
	names     []string
)

// Lookup resolves a country by name, alpha-2 or alpha-3 code.
// Surrounding whitespace is ignored and matching is case-insensitive.
func Lookup(query string) (Country, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Country{}, false
	}

	code := countries.ByName(query)
	if code == countries.Unknown || !code.IsValid() {
		return Country{}, false
	}

	return Country{
		Name:   code.String(),
		Alpha2: code.Alpha2(),
		Alpha3: code.Alpha3(),
	}, true
}

// Valid reports whether query resolves to a country.
func Valid(query string) bool {
	_, ok := Lookup(query)
	return ok
}

// Names returns every country name, sorted. The slice is shared; callers
// must not modify it.
func Names() []string {
	namesOnce.Do(func() {
		all := countries.All()
		names = make([]string, 0, len(all))
		for _, c := range all {
			if !c.IsValid() {
				continue
			}
			names = append(names, c.String())
		}
		sort.Strings(names)
	})
	return names
}
