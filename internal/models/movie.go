// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package models

// Preferences holds the three scripted answers collected from the user.
type Preferences struct {
	Themes string `json:"themes"`
	Genres string `json:"genres"`
	Actors string `json:"actors"`
}

// Complete reports whether all three answers are present.
func (p Preferences) Complete() bool {
	return p.Themes != "" && p.Genres != "" && p.Actors != ""
}

// Recommendation is a movie suggested by the model with its justification.
type Recommendation struct {
	Title  string `json:"title"`
	Reason string `json:"reason"`

	// TMDbID is set once the title has been resolved against TMDb so that
	// later lookups target the same movie. Zero means unresolved.
	TMDbID int `json:"tmdb_id,omitempty"`
}

// CrewMember is a crew credit reduced to name and job.
type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// MovieDescription is the background block handed to the conversation
// model for each recommended movie.
type MovieDescription struct {
	Title               string       `json:"title"`
	Overview            string       `json:"overview"`
	ReleaseDate         string       `json:"release_date"`
	Runtime             int          `json:"runtime"`
	Genres              []string     `json:"genres"`
	Rating              float64      `json:"rating"`
	Cast                []string     `json:"cast"`
	Crew                []CrewMember `json:"crew"`
	Reviews             []string     `json:"reviews"`
	ProductionCompanies []string     `json:"production_companies"`
	ProductionCountries []string     `json:"production_countries"`
}

// EmptyDescription is the fallback used when TMDb has nothing for a title.
func EmptyDescription(title string) MovieDescription {
	return MovieDescription{
		Title:               title,
		Genres:              []string{},
		Cast:                []string{},
		Crew:                []CrewMember{},
		Reviews:             []string{},
		ProductionCompanies: []string{},
		ProductionCountries: []string{},
	}
}
