package handlers

import (
	"fmt"
	"net/http"

	"github.com/coachkit/roster-system/middleware"
	"github.com/coachkit/roster-system/models"
	"github.com/coachkit/roster-system/services"
	"github.com/go-chi/chi/v5"
)

type ReferenceHandler struct {
	referenceService services.ReferenceService
}

func NewReferenceHandler(rs services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: rs}
}

// ListPlayerRefs отдаёт все справочники карточки игрока с переводами.
func (h *ReferenceHandler) ListPlayerRefs(w http.ResponseWriter, r *http.Request) {
	lang := middleware.GetLanguageFromContext(r.Context())

	refs, err := h.referenceService.ListPlayerRefs(r.Context(), lang)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, refs)
}

var knownRefKinds = map[models.RefKind]bool{
	models.RefTeamStatus:       true,
	models.RefPlayerStatus:     true,
	models.RefLevel:            true,
	models.RefPosition:         true,
	models.RefFoot:             true,
	models.RefExsGoal:          true,
	models.RefExsBall:          true,
	models.RefExsTeamCategory:  true,
	models.RefExsAgeCategory:   true,
	models.RefExsTrainPart:     true,
	models.RefExsCognitiveLoad: true,
}

func (h *ReferenceHandler) ListByKind(w http.ResponseWriter, r *http.Request) {
	kind := models.RefKind(chi.URLParam(r, "kind"))
	if !knownRefKinds[kind] {
		badRequestResponse(w, r, fmt.Errorf("unknown reference kind: %q", kind))
		return
	}

	lang := middleware.GetLanguageFromContext(r.Context())
	refs, err := h.referenceService.ListByKind(r.Context(), kind, lang)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, refs)
}
