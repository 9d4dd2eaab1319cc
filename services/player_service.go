package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/coachkit/roster-system/models"
	"github.com/coachkit/roster-system/notify"
	"github.com/coachkit/roster-system/repositories"
	"github.com/coachkit/roster-system/storage"
	"github.com/google/uuid"
)

const playerPhotoPrefix = "players/img/"

// Authorizer отвечает на вопрос, есть ли у пользователя все требуемые
// права в его области владения.
type Authorizer interface {
	HasCapability(ctx context.Context, userID int, req models.CapabilityRequest) (bool, error)
}

type PlayerService interface {
	// SubmitProfile создаёт или обновляет игрока вместе с картой,
	// характеристиками и анкетами как одну логическую операцию.
	SubmitProfile(ctx context.Context, scope models.Scope, input SubmitProfileInput) (*SubmitProfileResult, error)
	DeletePlayer(ctx context.Context, scope models.Scope, playerID int) error
	GetPlayerDetail(ctx context.Context, scope models.Scope, playerID int) (*PlayerDetail, error)
	ListPlayers(ctx context.Context, scope models.Scope, input ListPlayersInput) ([]PlayerRow, error)
}

type PhotoUpload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

type CardInput struct {
	Citizenship *string
	ClubFrom    *string
	Growth      *int
	Weight      *int
	GameNum     *int
	Birthday    *time.Time
	Come        *time.Time
	Leave       *time.Time

	// Сырые идентификаторы справочников; несуществующий id молча
	// превращается в nil, а не в ошибку.
	TeamStatusID   *int
	PlayerStatusID *int
	LevelID        *int
	PositionID     *int
	FootID         *int
}

type SubmitProfileInput struct {
	// PlayerID <= 0 означает создание нового игрока.
	PlayerID   int
	Surname    string
	Name       string
	Patronymic string

	// TeamID — поле data[team]; nil оставляет команду без изменений.
	TeamID *int

	Photo *PhotoUpload
	Card  CardInput

	// Параллельные массивы одинаковой длины; рассинхронизация длины
	// молча пропускает весь блок.
	CharacteristicIDs   []string
	CharacteristicStars []string
	CharacteristicNotes []string

	QuestionnaireIDs   []string
	QuestionnaireNotes []string
}

type SubmitProfileResult struct {
	PlayerID             int    `json:"player_id"`
	Created              bool   `json:"created"`
	PhotoSaved           bool   `json:"photo_saved"`
	CardSaved            bool   `json:"card_saved"`
	CharacteristicsSaved int    `json:"characteristics_saved"`
	QuestionnairesSaved  int    `json:"questionnaires_saved"`
	Summary              string `json:"summary"`
}

type CharacteristicView struct {
	RowID int    `json:"row_id"`
	Value int    `json:"value"`
	Notes string `json:"notes"`
	// Diff — тренд к предыдущему наблюдению: "=", ">", "<" или "-",
	// если истории ещё нет.
	Diff string `json:"diff"`
}

type QuestionnaireView struct {
	RowID int    `json:"row_id"`
	Notes string `json:"notes"`
}

// PlayerDetail — плоская проекция игрока и его карты плюс срезы
// характеристик и анкет.
type PlayerDetail struct {
	ID         int    `json:"id"`
	Surname    string `json:"surname"`
	Name       string `json:"name"`
	Patronymic string `json:"patronymic"`
	TeamID     int    `json:"team"`
	TeamName   string `json:"team_name"`
	Photo      string `json:"photo"`

	Citizenship    *string    `json:"citizenship"`
	ClubFrom       *string    `json:"club_from"`
	Growth         *int       `json:"growth"`
	Weight         *int       `json:"weight"`
	GameNum        *int       `json:"game_num"`
	Birthday       *time.Time `json:"birthday"`
	Come           *time.Time `json:"come"`
	Leave          *time.Time `json:"leave"`
	TeamStatusID   *int       `json:"ref_team_status"`
	PlayerStatusID *int       `json:"ref_player_status"`
	LevelID        *int       `json:"ref_level"`
	PositionID     *int       `json:"ref_position"`
	FootID         *int       `json:"ref_foot"`

	Characteristics []CharacteristicView `json:"characteristics"`
	Questionnaires  []QuestionnaireView  `json:"questionnaires"`
}

type ListPlayersInput struct {
	// ForTable включает поиск/сортировку/страницу; иначе отдаётся вся
	// область как есть.
	ForTable        bool
	Start           int
	Length          int
	SortColumnIndex int
	SortDesc        bool
	Search          string
	// TeamID переопределяет команду области для этого запроса.
	TeamID *int
}

// PlayerRow — строка списка игроков без характеристик и анкет.
type PlayerRow struct {
	ID          int        `json:"id"`
	Surname     string     `json:"surname"`
	Name        string     `json:"name"`
	Patronymic  string     `json:"patronymic"`
	Citizenship string     `json:"citizenship"`
	Team        string     `json:"team"`
	ClubFrom    string     `json:"club_from"`
	Growth      *int       `json:"growth"`
	Weight      *int       `json:"weight"`
	GameNum     *int       `json:"game_num"`
	Birthday    *time.Time `json:"birthday"`
	Come        *time.Time `json:"come"`
	Leave       *time.Time `json:"leave"`
}

type playerService struct {
	playerRepo         repositories.PlayerRepository
	cardRepo           repositories.CardRepository
	characteristicRepo repositories.CharacteristicRepository
	questionnaireRepo  repositories.QuestionnaireRepository
	referenceRepo      repositories.ReferenceRepository
	teamRepo           repositories.TeamRepository
	authorizer         Authorizer
	uploader           storage.FileUploader
	hub                *notify.Hub
	logger             *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	cardRepo repositories.CardRepository,
	characteristicRepo repositories.CharacteristicRepository,
	questionnaireRepo repositories.QuestionnaireRepository,
	referenceRepo repositories.ReferenceRepository,
	teamRepo repositories.TeamRepository,
	authorizer Authorizer,
	uploader storage.FileUploader,
	hub *notify.Hub,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo:         playerRepo,
		cardRepo:           cardRepo,
		characteristicRepo: characteristicRepo,
		questionnaireRepo:  questionnaireRepo,
		referenceRepo:      referenceRepo,
		teamRepo:           teamRepo,
		authorizer:         authorizer,
		uploader:           uploader,
		hub:                hub,
		logger:             logger,
	}
}

var playerEditCaps = models.CapabilityRequest{
	User: []models.Capability{models.CapPlayerEdit},
	Club: []models.Capability{models.CapPlayerEdit},
}

var playerViewCaps = models.CapabilityRequest{
	User: []models.Capability{models.CapPlayerView},
	Club: []models.Capability{models.CapPlayerView},
}

var playerDeleteCaps = models.CapabilityRequest{
	User: []models.Capability{models.CapPlayerDelete},
	Club: []models.Capability{models.CapPlayerDelete},
}

func (s *playerService) SubmitProfile(ctx context.Context, scope models.Scope, input SubmitProfileInput) (*SubmitProfileResult, error) {
	ok, err := s.authorizer.HasCapability(ctx, scope.UserID, playerEditCaps)
	if err != nil {
		return nil, fmt.Errorf("capability check failed: %w", err)
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	// Разрешение идентичности: существующий игрок области или новый.
	var player *models.Player
	created := false
	if input.PlayerID > 0 {
		player, err = s.playerRepo.GetByID(ctx, input.PlayerID, scope)
		if err != nil && !errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, err
		}
	}
	if player == nil {
		// Новый игрок привязывается к текущей команде области; команда
		// обязана существовать и принадлежать области.
		if _, err := s.teamRepo.GetForScope(ctx, scope.TeamID, scope); err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, err
		}
		player = &models.Player{
			UserID: scope.UserID,
			ClubID: scope.ClubID,
			TeamID: scope.TeamID,
		}
		created = true
	}

	player.Surname = input.Surname
	player.Name = input.Name
	player.Patronymic = input.Patronymic

	// Перепривязка команды: поле указано — должно быть валидным для
	// области, иначе вся операция отклоняется до записи.
	if input.TeamID != nil {
		team, err := s.teamRepo.GetForScope(ctx, *input.TeamID, scope)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				return nil, ErrTeamNotFound
			}
			return nil, err
		}
		player.TeamID = team.ID
	}

	result := &SubmitProfileResult{Created: created}

	oldPhotoKey, photoErr := s.attachPhoto(ctx, player, input.Photo)
	result.PhotoSaved = input.Photo != nil && photoErr == nil

	if created {
		err = s.playerRepo.Create(ctx, player)
	} else {
		err = s.playerRepo.Update(ctx, player)
	}
	if err != nil {
		s.logger.Error("player save failed", slog.Any("error", err), slog.Int("player_id", input.PlayerID))
		return nil, fmt.Errorf("%w: %w", ErrPlayerSaveFailed, err)
	}
	result.PlayerID = player.ID

	// Старое фото подчищаем только после успешной записи игрока: при
	// отказе записи строка продолжает ссылаться на прежний ключ.
	// Осиротевший новый объект при этом безвреден. Неуспех не критичен.
	if oldPhotoKey != nil {
		if err := s.uploader.Delete(ctx, *oldPhotoKey); err != nil {
			s.logger.Warn("failed to delete old photo", slog.Any("error", err), slog.String("key", *oldPhotoKey))
		}
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Player with id: [%d] is added / edited successfully.", player.ID)
	if photoErr != nil {
		summary.WriteString("\nErr while saving player photo.")
	}

	// Карта игрока: не фатально для операции в целом — игрок уже записан.
	if err := s.upsertCard(ctx, player.ID, input.Card); err != nil {
		s.logger.Error("card save failed", slog.Any("error", err), slog.Int("player_id", player.ID))
		summary.WriteString("\nErr while saving player card.")
	} else {
		result.CardSaved = true
		summary.WriteString("\nAdded player card for player.")
	}

	s.reconcileCharacteristics(ctx, scope, player.ID, input, result, &summary)
	s.reconcileQuestionnaires(ctx, scope, player.ID, input, result, &summary)

	result.Summary = summary.String()

	if s.hub != nil {
		s.hub.BroadcastToTeam(player.TeamID, notify.Message{
			Type:    notify.EventPlayerUpdated,
			Payload: map[string]int{"id": player.ID},
		})
	}
	return result, nil
}

// attachPhoto загружает новое фото и подменяет ключ на игроке.
// Возвращает прежний ключ: удалять его можно только после того, как
// игрок с новым ключом записан.
func (s *playerService) attachPhoto(ctx context.Context, player *models.Player, photo *PhotoUpload) (*string, error) {
	if photo == nil || photo.Data == nil {
		return nil, nil
	}
	key := playerPhotoPrefix + uuid.NewString() + strings.ToLower(filepath.Ext(photo.Filename))
	if _, err := s.uploader.Upload(ctx, key, photo.ContentType, photo.Data); err != nil {
		return nil, err
	}
	oldKey := player.PhotoKey
	player.PhotoKey = &key
	return oldKey, nil
}

// cardRefBindings — статическая таблица "тип справочника -> поля",
// вместо диспетчеризации по строковому тегу.
var cardRefBindings = []struct {
	kind models.RefKind
	get  func(*CardInput) *int
	set  func(*models.PlayerCard, *int)
}{
	{models.RefTeamStatus, func(c *CardInput) *int { return c.TeamStatusID }, func(pc *models.PlayerCard, v *int) { pc.TeamStatusID = v }},
	{models.RefPlayerStatus, func(c *CardInput) *int { return c.PlayerStatusID }, func(pc *models.PlayerCard, v *int) { pc.PlayerStatusID = v }},
	{models.RefLevel, func(c *CardInput) *int { return c.LevelID }, func(pc *models.PlayerCard, v *int) { pc.LevelID = v }},
	{models.RefPosition, func(c *CardInput) *int { return c.PositionID }, func(pc *models.PlayerCard, v *int) { pc.PositionID = v }},
	{models.RefFoot, func(c *CardInput) *int { return c.FootID }, func(pc *models.PlayerCard, v *int) { pc.FootID = v }},
}

func (s *playerService) upsertCard(ctx context.Context, playerID int, input CardInput) error {
	card, err := s.cardRepo.GetByPlayerID(ctx, playerID)
	isNew := false
	if err != nil {
		if !errors.Is(err, repositories.ErrCardNotFound) {
			return err
		}
		card = &models.PlayerCard{PlayerID: playerID}
		isNew = true
	}

	// Каждое поле перезаписывается значением из запроса; некорректные
	// значения уже превращены в nil на этапе коэрции.
	card.Citizenship = input.Citizenship
	card.ClubFrom = input.ClubFrom
	card.Growth = input.Growth
	card.Weight = input.Weight
	card.GameNum = input.GameNum
	card.Birthday = input.Birthday
	card.Come = input.Come
	card.Leave = input.Leave

	for _, binding := range cardRefBindings {
		binding.set(card, s.resolveRef(ctx, binding.kind, binding.get(&input)))
	}

	if isNew {
		return s.cardRepo.Create(ctx, card)
	}
	return s.cardRepo.Update(ctx, card)
}

// resolveRef возвращает id живой строки справочника или nil: мягкий
// отказ вместо ошибки на битую ссылку.
func (s *playerService) resolveRef(ctx context.Context, kind models.RefKind, id *int) *int {
	if id == nil {
		return nil
	}
	ref, err := s.referenceRepo.GetByID(ctx, kind, *id)
	if err != nil {
		return nil
	}
	return &ref.ID
}

func (s *playerService) reconcileCharacteristics(ctx context.Context, scope models.Scope, playerID int, input SubmitProfileInput, result *SubmitProfileResult, summary *strings.Builder) {
	ids := input.CharacteristicIDs
	stars := input.CharacteristicStars
	notes := input.CharacteristicNotes
	if len(ids) != len(stars) || len(stars) != len(notes) {
		return
	}

	today := truncateToDay(time.Now())
	for i := range ids {
		rowID := atoiOr(ids[i], -1)
		value := atoiOr(stars[i], 0)
		note := notes[i]

		row, err := s.characteristicRepo.FindRow(ctx, rowID, scope)
		if err != nil {
			// Нерезолвящаяся строка пропускает запись, не прерывая пакет.
			continue
		}

		obs, err := s.characteristicRepo.FindObservationByDate(ctx, row.ID, playerID, scope, today)
		switch {
		case err == nil:
			obs.Value = value
			obs.Notes = note
			err = s.characteristicRepo.UpdateObservation(ctx, obs)
		case errors.Is(err, repositories.ErrObservationNotFound):
			obs = &models.CharacteristicObservation{
				RowID:    row.ID,
				PlayerID: playerID,
				UserID:   observationUserID(scope),
				ClubID:   scope.ClubID,
				Value:    value,
				Notes:    note,
				Date:     today,
			}
			err = s.characteristicRepo.CreateObservation(ctx, obs)
		}
		if err != nil {
			s.logger.Error("characteristic save failed", slog.Any("error", err), slog.Int("row_id", row.ID))
			summary.WriteString("\nErr while saving player characteristics.")
			continue
		}
		result.CharacteristicsSaved++
		summary.WriteString("\nAdded player characteristics for player.")
	}
}

func (s *playerService) reconcileQuestionnaires(ctx context.Context, scope models.Scope, playerID int, input SubmitProfileInput, result *SubmitProfileResult, summary *strings.Builder) {
	ids := input.QuestionnaireIDs
	notes := input.QuestionnaireNotes
	if len(ids) != len(notes) {
		return
	}

	for i := range ids {
		rowID := atoiOr(ids[i], -1)
		note := notes[i]

		row, err := s.questionnaireRepo.FindRow(ctx, rowID, scope)
		if err != nil {
			continue
		}

		answer, err := s.questionnaireRepo.FindAnswer(ctx, row.ID, playerID, scope)
		switch {
		case err == nil:
			answer.Notes = note
			err = s.questionnaireRepo.UpdateAnswer(ctx, answer)
		case errors.Is(err, repositories.ErrAnswerNotFound):
			answer = &models.QuestionnaireAnswer{
				RowID:    row.ID,
				PlayerID: playerID,
				UserID:   observationUserID(scope),
				ClubID:   scope.ClubID,
				Notes:    note,
			}
			err = s.questionnaireRepo.CreateAnswer(ctx, answer)
		}
		if err != nil {
			s.logger.Error("questionnaire save failed", slog.Any("error", err), slog.Int("row_id", row.ID))
			summary.WriteString("\nErr while saving player questionnaires.")
			continue
		}
		result.QuestionnairesSaved++
		summary.WriteString("\nAdded player questionnaires for player.")
	}
}

func (s *playerService) DeletePlayer(ctx context.Context, scope models.Scope, playerID int) error {
	ok, err := s.authorizer.HasCapability(ctx, scope.UserID, playerDeleteCaps)
	if err != nil {
		return fmt.Errorf("capability check failed: %w", err)
	}
	if !ok {
		return ErrAccessDenied
	}

	if err := s.playerRepo.Delete(ctx, playerID, scope); err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return ErrPlayerNotFound
		}
		return err
	}

	if s.hub != nil {
		s.hub.BroadcastToTeam(scope.TeamID, notify.Message{
			Type:    notify.EventPlayerDeleted,
			Payload: map[string]int{"id": playerID},
		})
	}
	return nil
}

func (s *playerService) GetPlayerDetail(ctx context.Context, scope models.Scope, playerID int) (*PlayerDetail, error) {
	ok, err := s.authorizer.HasCapability(ctx, scope.UserID, playerViewCaps)
	if err != nil {
		return nil, fmt.Errorf("capability check failed: %w", err)
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	player, err := s.playerRepo.GetByID(ctx, playerID, scope)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}

	detail := &PlayerDetail{
		ID:              player.ID,
		Surname:         player.Surname,
		Name:            player.Name,
		Patronymic:      player.Patronymic,
		TeamID:          player.TeamID,
		Photo:           s.photoURL(player.PhotoKey),
		Characteristics: []CharacteristicView{},
		Questionnaires:  []QuestionnaireView{},
	}
	if player.Team != nil {
		detail.TeamName = player.Team.Name
	}
	if card := player.Card; card != nil {
		detail.Citizenship = card.Citizenship
		detail.ClubFrom = card.ClubFrom
		detail.Growth = card.Growth
		detail.Weight = card.Weight
		detail.GameNum = card.GameNum
		detail.Birthday = card.Birthday
		detail.Come = card.Come
		detail.Leave = card.Leave
		detail.TeamStatusID = card.TeamStatusID
		detail.PlayerStatusID = card.PlayerStatusID
		detail.LevelID = card.LevelID
		detail.PositionID = card.PositionID
		detail.FootID = card.FootID
	}

	rows, err := s.characteristicRepo.ListChildRows(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		// Две последние записи достаточно и для значения, и для тренда.
		observations, err := s.characteristicRepo.ListObservations(ctx, row.ID, player.ID, scope, 2)
		if err != nil {
			return nil, err
		}
		if len(observations) == 0 {
			continue
		}
		view := CharacteristicView{
			RowID: row.ID,
			Value: observations[0].Value,
			Notes: observations[0].Notes,
			Diff:  trendMarker(observations),
		}
		detail.Characteristics = append(detail.Characteristics, view)
	}

	qRows, err := s.questionnaireRepo.ListRows(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, row := range qRows {
		answer, err := s.questionnaireRepo.FindAnswer(ctx, row.ID, player.ID, scope)
		if err != nil {
			if errors.Is(err, repositories.ErrAnswerNotFound) {
				continue
			}
			return nil, err
		}
		detail.Questionnaires = append(detail.Questionnaires, QuestionnaireView{
			RowID: row.ID,
			Notes: answer.Notes,
		})
	}

	return detail, nil
}

func (s *playerService) ListPlayers(ctx context.Context, scope models.Scope, input ListPlayersInput) ([]PlayerRow, error) {
	ok, err := s.authorizer.HasCapability(ctx, scope.UserID, playerViewCaps)
	if err != nil {
		return nil, fmt.Errorf("capability check failed: %w", err)
	}
	if !ok {
		return nil, ErrAccessDenied
	}

	if input.TeamID != nil {
		scope.TeamID = *input.TeamID
	}

	players, err := s.playerRepo.List(ctx, repositories.ListPlayersFilter{
		Scope:           scope,
		ForTable:        input.ForTable,
		Search:          input.Search,
		SortColumnIndex: input.SortColumnIndex,
		SortDesc:        input.SortDesc,
		Offset:          input.Start,
		Limit:           input.Length,
	})
	if err != nil {
		return nil, err
	}

	result := make([]PlayerRow, 0, len(players))
	for _, p := range players {
		row := PlayerRow{
			ID:         p.ID,
			Surname:    p.Surname,
			Name:       p.Name,
			Patronymic: p.Patronymic,
		}
		if p.Team != nil {
			row.Team = p.Team.Name
		}
		if card := p.Card; card != nil {
			if card.Citizenship != nil {
				row.Citizenship = *card.Citizenship
			}
			if card.ClubFrom != nil {
				row.ClubFrom = *card.ClubFrom
			}
			row.Growth = card.Growth
			row.Weight = card.Weight
			row.GameNum = card.GameNum
			row.Birthday = card.Birthday
			row.Come = card.Come
			row.Leave = card.Leave
		}
		result = append(result, row)
	}
	return result, nil
}

func (s *playerService) photoURL(key *string) string {
	if key == nil || !strings.HasPrefix(*key, playerPhotoPrefix) {
		return ""
	}
	return s.uploader.GetPublicURL(*key)
}

// trendMarker сравнивает два последних наблюдения: "-" без истории,
// "=" без изменений, ">" рост, "<" падение.
func trendMarker(observations []models.CharacteristicObservation) string {
	if len(observations) < 2 {
		return "-"
	}
	switch {
	case observations[0].Value == observations[1].Value:
		return "="
	case observations[0].Value > observations[1].Value:
		return ">"
	default:
		return "<"
	}
}

func observationUserID(scope models.Scope) *int {
	if scope.IsClub() {
		return nil
	}
	id := scope.UserID
	return &id
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
