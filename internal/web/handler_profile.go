package web

import (
	"net/http"

	"github.com/vbonduro/wastenot/internal/domain"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := s.service.GetProfile(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "get profile", err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var profile domain.Profile
	if err := decodeJSON(w, r, &profile); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.service.UpdateProfile(r.Context(), profile)
	if err != nil {
		s.writeServiceError(w, r, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleUpdateProfileDetails(w http.ResponseWriter, r *http.Request) {
	var details domain.ProfileDetails
	if err := decodeJSON(w, r, &details); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.service.UpdateProfileDetails(r.Context(), details)
	if err != nil {
		s.writeServiceError(w, r, "update profile details", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
