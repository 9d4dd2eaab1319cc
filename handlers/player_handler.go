package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/coachkit/roster-system/forms"
	"github.com/coachkit/roster-system/services"
)

// maxProfileFormSize ограничивает размер формы профиля вместе с фото.
const maxProfileFormSize = 16 << 20 // 16MB

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// SubmitProfile принимает multipart-форму с полями игрока, карточки и
// параллельными массивами характеристик и анкет.
func (h *PlayerHandler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	if err := r.ParseMultipartForm(maxProfileFormSize); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			badRequestResponse(w, r, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}
	form := forms.New(url.Values(r.PostForm))

	input := services.SubmitProfileInput{
		PlayerID:   form.IntOr("id", -1),
		Surname:    form.String("data[surname]"),
		Name:       form.String("data[name]"),
		Patronymic: form.String("data[patronymic]"),
		TeamID:     form.Int("data[team]"),
		Card: services.CardInput{
			Citizenship:    form.StringPtr("data[citizenship]"),
			ClubFrom:       form.StringPtr("data[club_from]"),
			Growth:         form.Int("data[growth]"),
			Weight:         form.Int("data[weight]"),
			GameNum:        form.Int("data[game_num]"),
			Birthday:       form.Date("data[birthday]"),
			Come:           form.Date("data[come]"),
			Leave:          form.Date("data[leave]"),
			TeamStatusID:   form.Int("data[ref_team_status]"),
			PlayerStatusID: form.Int("data[ref_player_status]"),
			LevelID:        form.Int("data[ref_level]"),
			PositionID:     form.Int("data[ref_position]"),
			FootID:         form.Int("data[ref_foot]"),
		},
		CharacteristicIDs:   form.List("data[characteristics_ids]"),
		CharacteristicStars: form.List("data[characteristics_stars]"),
		CharacteristicNotes: form.List("data[characteristics_notes]"),
		QuestionnaireIDs:    form.List("data[questionnaires_ids]"),
		QuestionnaireNotes:  form.List("data[questionnaires_notes]"),
	}

	if file, header, err := r.FormFile("filePhoto"); err == nil {
		defer file.Close()
		input.Photo = &services.PhotoUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        file,
		}
	}

	result, err := h.playerService.SubmitProfile(r.Context(), scope, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, result)
}

func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.playerService.DeletePlayer(r.Context(), scope, playerID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, map[string]int{"id": playerID})
}

func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	detail, err := h.playerService.GetPlayerDetail(r.Context(), scope, playerID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, detail)
}

// ListPlayers отдаёт страницу списка игроков в табличном формате:
// start, length, order[0][column], order[0][dir], search[value],
// опционально team_id.
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	scope, err := scopeFromRequest(r)
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	query := forms.New(r.URL.Query())
	input := services.ListPlayersInput{
		ForTable:        true,
		Start:           query.IntOr("start", 0),
		Length:          query.IntOr("length", 10),
		SortColumnIndex: query.IntOr("order[0][column]", 0),
		SortDesc:        query.String("order[0][dir]") == "desc",
		Search:          query.String("search[value]"),
		TeamID:          query.Int("team_id"),
	}

	players, err := h.playerService.ListPlayers(r.Context(), scope, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	dataResponse(w, r, http.StatusOK, players)
}
