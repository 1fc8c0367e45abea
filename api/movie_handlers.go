package api

import (
	stderrors "errors"
	"log/slog"
	"net/http"

	"cinechat/errors"
	"cinechat/repositories"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

var movieValidate = validator.New()

type MovieHandler struct {
	log  *slog.Logger
	repo repositories.IMovieRepository
}

func NewMovieHandler(log *slog.Logger, repo repositories.IMovieRepository) *MovieHandler {
	return &MovieHandler{log: log, repo: repo}
}

type moviePayload struct {
	Title  string  `json:"title" validate:"required"`
	Year   int     `json:"year" validate:"required,gte=1888"`
	Genre  string  `json:"genre"`
	Rating float64 `json:"rating" validate:"gte=0,lte=10"`
}

func (h *MovieHandler) List(w http.ResponseWriter, _ *http.Request) {
	movies, err := h.repo.List()
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"movies": lo.Ternary(movies != nil, movies, []repositories.Movie{}),
	})
}

func (h *MovieHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload moviePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := movieValidate.Struct(payload); err != nil {
		writeError(w, h.log, errors.NewAPIError(http.StatusBadRequest, "invalid movie payload"))
		return
	}

	movie, err := h.repo.Create(repositories.Movie{
		Title:  payload.Title,
		Year:   payload.Year,
		Genre:  payload.Genre,
		Rating: payload.Rating,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, movie)
}

func (h *MovieHandler) Get(w http.ResponseWriter, r *http.Request) {
	movie, err := h.repo.GetByID(r.PathValue("id"))
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			writeError(w, h.log, errors.NewAPIError(http.StatusNotFound, "Not Found"))
			return
		}
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, movie)
}

func (h *MovieHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload moviePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, h.log, err)
		return
	}
	if err := movieValidate.Struct(payload); err != nil {
		writeError(w, h.log, errors.NewAPIError(http.StatusBadRequest, "invalid movie payload"))
		return
	}

	id := r.PathValue("id")
	current, err := h.repo.GetByID(id)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			writeError(w, h.log, errors.NewAPIError(http.StatusNotFound, "Not Found"))
			return
		}
		writeError(w, h.log, err)
		return
	}

	current.Title = payload.Title
	current.Year = payload.Year
	current.Genre = payload.Genre
	current.Rating = payload.Rating
	if err := h.repo.Update(current); err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, current)
}

func (h *MovieHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
