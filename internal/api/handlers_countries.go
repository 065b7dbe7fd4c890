// CineMatch - Conversational Movie Recommendation Assistant
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/cinematch/internal/region"
)

type resolveCountryRequest struct {
	Name string `json:"name" validate:"required,max=100,country"`
}

// Countries lists every country name for the streaming lookup picker
//
// @Summary List countries
// @Tags Countries
// @Produce json
// @Success 200 {object} models.APIResponse{data=[]string}
// @Router /api/v1/countries [get]
func (h *Handler) Countries(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, region.Names(), time.Now())
}

// ResolveCountry resolves a country name or ISO 3166 code
//
// @Summary Resolve a country
// @Tags Countries
// @Produce json
// @Param name query string true "Country name, alpha-2 or alpha-3 code"
// @Success 200 {object} models.APIResponse{data=region.Country}
// @Failure 400 {object} models.APIResponse "Unknown country"
// @Router /api/v1/countries/resolve [get]
func (h *Handler) ResolveCountry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	req := resolveCountryRequest{Name: r.URL.Query().Get("name")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	country, _ := region.Lookup(req.Name)
	respondSuccess(w, http.StatusOK, country, start)
}
