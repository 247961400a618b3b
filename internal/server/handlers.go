package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"chemlab/internal/core"
	"chemlab/internal/pubchem"
	"chemlab/internal/store"
)

const (
	msgNoIngredients = "Please add some chemicals first!"
	msgReactFailed   = "Could not predict the reaction. Please try again."
	msgBadImport     = "Please provide either a chemical name or PubChem ID"
	msgNotFound      = "Chemical not found. Try searching with a different name or CID."
	msgImportFailed  = "Unable to add chemical. Please try again later."
	msgNoKeyword     = "Please enter a chemical name to search for"
	msgBadMaxResults = "max_results must be a number"
	msgSearchFailed  = "Could not search the database. Please try again."
	fallbackColor    = "#ffffff"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) react(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String("request_id", requestID(r.Context())))

	var req core.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.metrics.observeInputError()
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.sim.Simulate(r.Context(), req)
	switch {
	case errors.Is(err, core.ErrNoIngredients):
		s.metrics.observeInputError()
		writeError(w, http.StatusBadRequest, msgNoIngredients)
		return
	case core.IsInputError(err):
		s.metrics.observeInputError()
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.Error("Simulation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgReactFailed)
		return
	}

	s.metrics.observeSimulation(result.ReactionType)
	log.Info("Reaction simulated",
		zap.Strings("ingredients", req.Ingredients),
		zap.String("reaction_type", string(result.ReactionType)))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) chemicalColor(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	color := s.sim.InitialColor(name)
	if color == "" {
		color = fallbackColor
	}
	writeJSON(w, http.StatusOK, map[string]string{"color": color})
}

func (s *Server) listChemicals(w http.ResponseWriter, r *http.Request) {
	if s.shelves == nil {
		writeJSON(w, http.StatusOK, store.EmptyShelves())
		return
	}
	shelves, err := s.shelves.Shelves(r.Context())
	if err != nil {
		s.logger.Error("Failed to list chemicals",
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err))
		writeJSON(w, http.StatusOK, store.EmptyShelves())
		return
	}
	writeJSON(w, http.StatusOK, shelves)
}

func (s *Server) addChemical(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With(zap.String("request_id", requestID(r.Context())))

	var req store.ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadImport)
		return
	}
	if s.importer == nil {
		log.Error("Chemical import requested but no catalog is configured")
		writeError(w, http.StatusInternalServerError, msgImportFailed)
		return
	}

	chem, existed, err := s.importer.Import(r.Context(), req)
	switch {
	case errors.Is(err, store.ErrBadImport):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pubchem.ErrNotFound):
		writeError(w, http.StatusNotFound, msgNotFound)
	case err != nil:
		log.Error("Failed to add chemical", zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgImportFailed)
	case existed:
		writeJSON(w, http.StatusOK, map[string]any{
			"message":  "This chemical is already in the database",
			"chemical": chem,
		})
	default:
		writeJSON(w, http.StatusCreated, map[string]any{
			"message":  "Chemical added successfully!",
			"chemical": chem,
		})
	}
}

func (s *Server) searchChemicals(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		writeError(w, http.StatusBadRequest, msgNoKeyword)
		return
	}
	limit := pubchem.DefaultSearchResults
	if raw := r.URL.Query().Get("max_results"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgBadMaxResults)
			return
		}
		limit = n
	}
	if s.searcher == nil {
		s.logger.Error("Search requested but no PubChem client is configured")
		writeError(w, http.StatusInternalServerError, msgSearchFailed)
		return
	}

	res, err := s.searcher.Search(r.Context(), keyword, limit)
	if err != nil {
		s.logger.Error("PubChem search failed",
			zap.String("request_id", requestID(r.Context())),
			zap.String("keyword", keyword),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgSearchFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
