package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"
	"strings"

	"cinechat/errors"
	"cinechat/repositories"

	"github.com/samber/lo"
)

type GenreHandler struct {
	log  *slog.Logger
	repo repositories.IGenreRepository
}

func NewGenreHandler(log *slog.Logger, repo repositories.IGenreRepository) *GenreHandler {
	return &GenreHandler{log: log, repo: repo}
}

type genrePayload struct {
	Name string `json:"name"`
}

func (h *GenreHandler) List(w http.ResponseWriter, _ *http.Request) {
	genres, err := h.repo.List()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"genres": lo.Ternary(genres != nil, genres, []repositories.Genre{}),
	})
}

func (h *GenreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload genrePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, h.log, err)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeError(w, h.log, errors.NewAPIError(http.StatusBadRequest, "name is required"))
		return
	}

	genre, err := h.repo.Create(repositories.Genre{Name: payload.Name})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, genre)
}

func (h *GenreHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload genrePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, h.log, err)
		return
	}
	if strings.TrimSpace(payload.Name) == "" {
		writeError(w, h.log, errors.NewAPIError(http.StatusBadRequest, "name is required"))
		return
	}

	genre := repositories.Genre{ID: r.PathValue("id"), Name: payload.Name}
	if err := h.repo.Update(genre); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			writeError(w, h.log, errors.NewAPIError(http.StatusNotFound, "Not Found"))
			return
		}
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, genre)
}

func (h *GenreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(r.PathValue("id")); err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			writeError(w, h.log, errors.NewAPIError(http.StatusNotFound, "Not Found"))
			return
		}
		writeError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
