package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/wastenot/internal/domain"
)

func (s *Server) handleCreateDonation(w http.ResponseWriter, r *http.Request) {
	var input domain.DonationInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	donation, err := s.service.CreateDonation(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, "create donation", err)
		return
	}
	writeJSON(w, http.StatusCreated, donation)
}

func (s *Server) handleListDonations(w http.ResponseWriter, r *http.Request) {
	var filter domain.DonationFilter
	if raw := r.URL.Query().Get("claimed"); raw != "" {
		claimed, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "claimed must be true or false")
			return
		}
		filter.Claimed = &claimed
	}
	filter.Query = r.URL.Query().Get("q")

	donations, err := s.service.ListDonations(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, "list donations", err)
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

func (s *Server) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	donation, err := s.service.GetDonation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, "get donation", err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}

func (s *Server) handleClaimDonation(w http.ResponseWriter, r *http.Request) {
	donation, err := s.service.ClaimDonation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, "claim donation", err)
		return
	}
	writeJSON(w, http.StatusOK, donation)
}
