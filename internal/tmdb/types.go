// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package tmdb

// Movie is one entry of a /search/movie result page.
type Movie struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	Popularity  float64 `json:"popularity"`
}

// SearchResult is the /search/movie response.
type SearchResult struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalResults int     `json:"total_results"`
}

// NamedEntity covers genres, companies and countries, which TMDb returns as
// objects with a name field.
type NamedEntity struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// Details is the /movie/{id} response.
type Details struct {
	ID                  int           `json:"id"`
	Title               string        `json:"title"`
	Overview            string        `json:"overview"`
	ReleaseDate         string        `json:"release_date"`
	Runtime             int           `json:"runtime"`
	Genres              []NamedEntity `json:"genres"`
	VoteAverage         float64       `json:"vote_average"`
	ProductionCompanies []NamedEntity `json:"production_companies"`
	ProductionCountries []NamedEntity `json:"production_countries"`
}

// CastMember is an actor credit.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// CrewCredit is a crew credit.
type CrewCredit struct {
	Name       string `json:"name"`
	Job        string `json:"job"`
	Department string `json:"department"`
}

// Credits is the /movie/{id}/credits response.
type Credits struct {
	ID   int          `json:"id"`
	Cast []CastMember `json:"cast"`
	Crew []CrewCredit `json:"crew"`
}

// Review is a user review.
type Review struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Reviews is the /movie/{id}/reviews response.
type Reviews struct {
	ID      int      `json:"id"`
	Results []Review `json:"results"`
}

// Video is a trailer, teaser or clip hosted on an external site.
type Video struct {
	Name     string `json:"name"`
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// Videos is the /movie/{id}/videos response.
type Videos struct {
	ID      int     `json:"id"`
	Results []Video `json:"results"`
}

// Provider is a streaming, rental or purchase service.
type Provider struct {
	ProviderID      int    `json:"provider_id"`
	ProviderName    string `json:"provider_name"`
	DisplayPriority int    `json:"display_priority"`
}

// RegionProviders lists the offers available in one country.
type RegionProviders struct {
	Link     string     `json:"link"`
	Flatrate []Provider `json:"flatrate"`
	Rent     []Provider `json:"rent"`
	Buy      []Provider `json:"buy"`
}

// WatchProviders is the /movie/{id}/watch/providers response, keyed by
// ISO 3166-1 alpha-2 code.
type WatchProviders struct {
	ID      int                        `json:"id"`
	Results map[string]RegionProviders `json:"results"`
}
