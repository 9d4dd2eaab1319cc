package handlers

import (
	"net/http"

	"github.com/coachkit/roster-system/middleware"
	"github.com/coachkit/roster-system/services"
)

type ExerciseHandler struct {
	exerciseService services.ExerciseService
}

func NewExerciseHandler(es services.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: es}
}

func (h *ExerciseHandler) CreateExercise(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.ExerciseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.LangCode = middleware.GetLanguageFromContext(r.Context())

	exercise, err := h.exerciseService.CreateExercise(r.Context(), scope, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusCreated, exercise)
}

func (h *ExerciseHandler) GetExercise(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	exerciseID, err := getIDFromURL(r, "exerciseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	lang := middleware.GetLanguageFromContext(r.Context())
	exercise, err := h.exerciseService.GetExerciseByID(r.Context(), scope, exerciseID, lang)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, exercise)
}

func (h *ExerciseHandler) ListExercises(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	lang := middleware.GetLanguageFromContext(r.Context())
	visibleOnly := r.URL.Query().Get("visible") == "true"

	exercises, err := h.exerciseService.ListExercises(r.Context(), scope, lang, visibleOnly)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, exercises)
}

func (h *ExerciseHandler) UpdateExercise(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	exerciseID, err := getIDFromURL(r, "exerciseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ExerciseInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.LangCode = middleware.GetLanguageFromContext(r.Context())

	exercise, err := h.exerciseService.UpdateExercise(r.Context(), scope, exerciseID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, exercise)
}

func (h *ExerciseHandler) DeleteExercise(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	exerciseID, err := getIDFromURL(r, "exerciseID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.exerciseService.DeleteExercise(r.Context(), scope, exerciseID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, map[string]int{"id": exerciseID})
}
