package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/coachkit/roster-system/models"
	"github.com/coachkit/roster-system/repositories"
	"github.com/coachkit/roster-system/storage"
)

// --- фейковые зависимости ---

type fakeAuthorizer struct {
	allow bool
	err   error
}

func (f *fakeAuthorizer) HasCapability(ctx context.Context, userID int, req models.CapabilityRequest) (bool, error) {
	return f.allow, f.err
}

type fakePlayerRepo struct {
	players   map[int]*models.Player
	nextID    int
	createErr error
	updateErr error
	deleted   []int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: map[int]*models.Player{}, nextID: 1}
}

func (f *fakePlayerRepo) ownedBy(p *models.Player, scope models.Scope) bool {
	if scope.IsClub() {
		return p.ClubID != nil && *p.ClubID == *scope.ClubID
	}
	return p.ClubID == nil && p.UserID == scope.UserID
}

func (f *fakePlayerRepo) Create(ctx context.Context, player *models.Player) error {
	if f.createErr != nil {
		return f.createErr
	}
	player.ID = f.nextID
	f.nextID++
	copied := *player
	f.players[player.ID] = &copied
	return nil
}

func (f *fakePlayerRepo) GetByID(ctx context.Context, id int, scope models.Scope) (*models.Player, error) {
	p, ok := f.players[id]
	if !ok || !f.ownedBy(p, scope) || p.TeamID != scope.TeamID {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePlayerRepo) List(ctx context.Context, filter repositories.ListPlayersFilter) ([]models.Player, error) {
	var result []models.Player
	for _, p := range f.players {
		if !f.ownedBy(p, filter.Scope) || p.TeamID != filter.Scope.TeamID {
			continue
		}
		if filter.ForTable && filter.Search != "" &&
			!strings.HasPrefix(strings.ToLower(p.Surname), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (f *fakePlayerRepo) Update(ctx context.Context, player *models.Player) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	copied := *player
	f.players[player.ID] = &copied
	return nil
}

func (f *fakePlayerRepo) UpdatePhotoKey(ctx context.Context, playerID int, photoKey *string) error {
	p, ok := f.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.PhotoKey = photoKey
	return nil
}

func (f *fakePlayerRepo) Delete(ctx context.Context, id int, scope models.Scope) error {
	p, ok := f.players[id]
	if !ok || !f.ownedBy(p, scope) {
		return repositories.ErrPlayerNotFound
	}
	delete(f.players, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTeamRepo struct {
	teams map[int]*models.Team
}

func (f *fakeTeamRepo) GetForScope(ctx context.Context, id int, scope models.Scope) (*models.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	if scope.IsClub() {
		if t.ClubID == nil || *t.ClubID != *scope.ClubID {
			return nil, repositories.ErrTeamNotFound
		}
	} else if t.UserID == nil || *t.UserID != scope.UserID {
		return nil, repositories.ErrTeamNotFound
	}
	return t, nil
}

type fakeCardRepo struct {
	cards   map[int]*models.PlayerCard
	nextID  int
	saveErr error
}

func newFakeCardRepo() *fakeCardRepo {
	return &fakeCardRepo{cards: map[int]*models.PlayerCard{}, nextID: 1}
}

func (f *fakeCardRepo) GetByPlayerID(ctx context.Context, playerID int) (*models.PlayerCard, error) {
	c, ok := f.cards[playerID]
	if !ok {
		return nil, repositories.ErrCardNotFound
	}
	copied := *c
	return &copied, nil
}

func (f *fakeCardRepo) Create(ctx context.Context, card *models.PlayerCard) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	card.ID = f.nextID
	f.nextID++
	copied := *card
	f.cards[card.PlayerID] = &copied
	return nil
}

func (f *fakeCardRepo) Update(ctx context.Context, card *models.PlayerCard) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.cards[card.PlayerID]; !ok {
		return repositories.ErrCardNotFound
	}
	copied := *card
	f.cards[card.PlayerID] = &copied
	return nil
}

type fakeCharacteristicRepo struct {
	rows         map[int]*models.CharacteristicRow
	observations []*models.CharacteristicObservation
	nextID       int
}

func newFakeCharacteristicRepo() *fakeCharacteristicRepo {
	return &fakeCharacteristicRepo{rows: map[int]*models.CharacteristicRow{}, nextID: 1}
}

func (f *fakeCharacteristicRepo) FindRow(ctx context.Context, id int, scope models.Scope) (*models.CharacteristicRow, error) {
	row, ok := f.rows[id]
	if !ok || row.IsTemplate {
		return nil, repositories.ErrCharacteristicRowNotFound
	}
	return row, nil
}

func (f *fakeCharacteristicRepo) ListChildRows(ctx context.Context, scope models.Scope) ([]models.CharacteristicRow, error) {
	var result []models.CharacteristicRow
	for _, row := range f.rows {
		if row.IsTemplate || row.ParentID == nil {
			continue
		}
		result = append(result, *row)
	}
	return result, nil
}

func (f *fakeCharacteristicRepo) FindObservationByDate(ctx context.Context, rowID, playerID int, scope models.Scope, date time.Time) (*models.CharacteristicObservation, error) {
	for _, obs := range f.observations {
		if obs.RowID == rowID && obs.PlayerID == playerID && obs.Date.Equal(date) {
			copied := *obs
			return &copied, nil
		}
	}
	return nil, repositories.ErrObservationNotFound
}

func (f *fakeCharacteristicRepo) ListObservations(ctx context.Context, rowID, playerID int, scope models.Scope, limit int) ([]models.CharacteristicObservation, error) {
	var result []models.CharacteristicObservation
	// Наблюдения добавляются по порядку, отдаём от новых к старым.
	for i := len(f.observations) - 1; i >= 0 && len(result) < limit; i-- {
		obs := f.observations[i]
		if obs.RowID == rowID && obs.PlayerID == playerID {
			result = append(result, *obs)
		}
	}
	return result, nil
}

func (f *fakeCharacteristicRepo) CreateObservation(ctx context.Context, obs *models.CharacteristicObservation) error {
	obs.ID = f.nextID
	f.nextID++
	copied := *obs
	f.observations = append(f.observations, &copied)
	return nil
}

func (f *fakeCharacteristicRepo) UpdateObservation(ctx context.Context, obs *models.CharacteristicObservation) error {
	for i, existing := range f.observations {
		if existing.ID == obs.ID {
			copied := *obs
			f.observations[i] = &copied
			return nil
		}
	}
	return repositories.ErrObservationNotFound
}

type fakeQuestionnaireRepo struct {
	rows    map[int]*models.QuestionnaireRow
	answers []*models.QuestionnaireAnswer
	nextID  int
}

func newFakeQuestionnaireRepo() *fakeQuestionnaireRepo {
	return &fakeQuestionnaireRepo{rows: map[int]*models.QuestionnaireRow{}, nextID: 1}
}

func (f *fakeQuestionnaireRepo) FindRow(ctx context.Context, id int, scope models.Scope) (*models.QuestionnaireRow, error) {
	row, ok := f.rows[id]
	if !ok || row.IsTemplate {
		return nil, repositories.ErrQuestionnaireRowNotFound
	}
	return row, nil
}

func (f *fakeQuestionnaireRepo) ListRows(ctx context.Context, scope models.Scope) ([]models.QuestionnaireRow, error) {
	var result []models.QuestionnaireRow
	for _, row := range f.rows {
		if row.IsTemplate {
			continue
		}
		result = append(result, *row)
	}
	return result, nil
}

func (f *fakeQuestionnaireRepo) FindAnswer(ctx context.Context, rowID, playerID int, scope models.Scope) (*models.QuestionnaireAnswer, error) {
	for _, a := range f.answers {
		if a.RowID == rowID && a.PlayerID == playerID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, repositories.ErrAnswerNotFound
}

func (f *fakeQuestionnaireRepo) CreateAnswer(ctx context.Context, answer *models.QuestionnaireAnswer) error {
	answer.ID = f.nextID
	f.nextID++
	copied := *answer
	f.answers = append(f.answers, &copied)
	return nil
}

func (f *fakeQuestionnaireRepo) UpdateAnswer(ctx context.Context, answer *models.QuestionnaireAnswer) error {
	for i, existing := range f.answers {
		if existing.ID == answer.ID {
			copied := *answer
			f.answers[i] = &copied
			return nil
		}
	}
	return repositories.ErrAnswerNotFound
}

type fakeReferenceRepo struct {
	refs map[models.RefKind]map[int]*models.Reference
}

func (f *fakeReferenceRepo) GetByID(ctx context.Context, kind models.RefKind, id int) (*models.Reference, error) {
	if byID, ok := f.refs[kind]; ok {
		if ref, ok := byID[id]; ok {
			return ref, nil
		}
	}
	return nil, repositories.ErrReferenceNotFound
}

func (f *fakeReferenceRepo) ListByKind(ctx context.Context, kind models.RefKind) ([]models.Reference, error) {
	var result []models.Reference
	for _, ref := range f.refs[kind] {
		result = append(result, *ref)
	}
	return result, nil
}

type fakeUploader struct {
	uploaded []string
	removed  []string
}

func (f *fakeUploader) Upload(ctx context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	f.uploaded = append(f.uploaded, key)
	return &storage.UploadResult{Key: key, Location: f.GetPublicURL(key)}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

func (f *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

// --- сборка сервиса под тест ---

type playerServiceFixture struct {
	service    PlayerService
	authorizer *fakeAuthorizer
	playerRepo *fakePlayerRepo
	cardRepo   *fakeCardRepo
	charRepo   *fakeCharacteristicRepo
	questRepo  *fakeQuestionnaireRepo
	refRepo    *fakeReferenceRepo
	teamRepo   *fakeTeamRepo
	uploader   *fakeUploader
}

func newPlayerServiceFixture(t *testing.T) *playerServiceFixture {
	t.Helper()

	userID := 7
	f := &playerServiceFixture{
		authorizer: &fakeAuthorizer{allow: true},
		playerRepo: newFakePlayerRepo(),
		cardRepo:   newFakeCardRepo(),
		charRepo:   newFakeCharacteristicRepo(),
		questRepo:  newFakeQuestionnaireRepo(),
		refRepo:    &fakeReferenceRepo{refs: map[models.RefKind]map[int]*models.Reference{}},
		teamRepo: &fakeTeamRepo{teams: map[int]*models.Team{
			1: {ID: 1, Name: "First Team", UserID: &userID},
			2: {ID: 2, Name: "Reserve", UserID: &userID},
		}},
		uploader: &fakeUploader{},
	}
	f.service = NewPlayerService(
		f.playerRepo,
		f.cardRepo,
		f.charRepo,
		f.questRepo,
		f.refRepo,
		f.teamRepo,
		f.authorizer,
		f.uploader,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func personalScope() models.Scope {
	return models.Scope{UserID: 7, TeamID: 1}
}

func TestSubmitProfile_CreatesPlayer(t *testing.T) {
	f := newPlayerServiceFixture(t)

	result, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
		Name:     "Ivan",
	})
	if err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	if !result.Created {
		t.Error("expected Created = true")
	}
	if result.PlayerID <= 0 {
		t.Fatalf("expected positive player id, got %d", result.PlayerID)
	}

	saved := f.playerRepo.players[result.PlayerID]
	if saved == nil {
		t.Fatal("player not persisted")
	}
	if saved.TeamID != 1 {
		t.Errorf("player bound to team %d, want 1", saved.TeamID)
	}
	if saved.UserID != 7 || saved.ClubID != nil {
		t.Errorf("player ownership = (%d, %v), want (7, nil)", saved.UserID, saved.ClubID)
	}
	if !strings.Contains(result.Summary, "is added / edited successfully") {
		t.Errorf("unexpected summary: %q", result.Summary)
	}
}

func TestSubmitProfile_UpdateDoesNotDuplicate(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()

	first, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	second, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: first.PlayerID,
		Surname:  "Petrov",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if second.Created {
		t.Error("expected Created = false on update")
	}
	if second.PlayerID != first.PlayerID {
		t.Errorf("player id changed: %d -> %d", first.PlayerID, second.PlayerID)
	}
	if len(f.playerRepo.players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(f.playerRepo.players))
	}
	if got := f.playerRepo.players[first.PlayerID].Surname; got != "Petrov" {
		t.Errorf("surname = %q, want Petrov", got)
	}
}

func TestSubmitProfile_UnknownTeamRejected(t *testing.T) {
	f := newPlayerServiceFixture(t)
	badTeam := 99

	_, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
		TeamID:   &badTeam,
	})
	if !errors.Is(err, ErrTeamNotFound) {
		t.Fatalf("err = %v, want ErrTeamNotFound", err)
	}
	if len(f.playerRepo.players) != 0 {
		t.Error("player must not be written when team is invalid")
	}
}

func TestSubmitProfile_AbsentTeamKeepsCurrent(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()
	team2 := 2

	created, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
		TeamID:   &team2,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := f.playerRepo.players[created.PlayerID].TeamID; got != 2 {
		t.Fatalf("team = %d, want 2", got)
	}

	// Повторная отправка без поля команды не должна её менять.
	scope.TeamID = 2
	if _, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: created.PlayerID,
		Surname:  "Ivanov",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.playerRepo.players[created.PlayerID].TeamID; got != 2 {
		t.Errorf("team changed to %d, want 2 unchanged", got)
	}
}

func TestSubmitProfile_UnevenCharacteristicArraysSkipped(t *testing.T) {
	f := newPlayerServiceFixture(t)
	parent := 1
	f.charRepo.rows[10] = &models.CharacteristicRow{ID: 10, Name: "Passing", ParentID: &parent}

	result, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID:            -1,
		Surname:             "Ivanov",
		CharacteristicIDs:   []string{"10", "11"},
		CharacteristicStars: []string{"4"},
		CharacteristicNotes: []string{"ok", "meh"},
	})
	if err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	if result.CharacteristicsSaved != 0 {
		t.Errorf("CharacteristicsSaved = %d, want 0", result.CharacteristicsSaved)
	}
	if len(f.charRepo.observations) != 0 {
		t.Error("no observations must be written for uneven arrays")
	}
	// Сам игрок и карта при этом сохраняются.
	if len(f.playerRepo.players) != 1 {
		t.Error("player must still be saved")
	}
	if !result.CardSaved {
		t.Error("card must still be saved")
	}
}

func TestSubmitProfile_UnknownCharacteristicRowSkipped(t *testing.T) {
	f := newPlayerServiceFixture(t)
	parent := 1
	f.charRepo.rows[10] = &models.CharacteristicRow{ID: 10, Name: "Passing", ParentID: &parent}

	result, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID:            -1,
		Surname:             "Ivanov",
		CharacteristicIDs:   []string{"10", "999", "oops"},
		CharacteristicStars: []string{"4", "5", "3"},
		CharacteristicNotes: []string{"", "", ""},
	})
	if err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	if result.CharacteristicsSaved != 1 {
		t.Errorf("CharacteristicsSaved = %d, want 1", result.CharacteristicsSaved)
	}
	if len(f.charRepo.observations) != 1 {
		t.Fatalf("observations = %d, want 1", len(f.charRepo.observations))
	}
	if got := f.charRepo.observations[0].Value; got != 4 {
		t.Errorf("observation value = %d, want 4", got)
	}
}

func TestSubmitProfile_SameDayObservationUpdatedInPlace(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()
	parent := 1
	f.charRepo.rows[10] = &models.CharacteristicRow{ID: 10, Name: "Passing", ParentID: &parent}

	created, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID:            -1,
		Surname:             "Ivanov",
		CharacteristicIDs:   []string{"10"},
		CharacteristicStars: []string{"3"},
		CharacteristicNotes: []string{"first"},
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if _, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID:            created.PlayerID,
		Surname:             "Ivanov",
		CharacteristicIDs:   []string{"10"},
		CharacteristicStars: []string{"5"},
		CharacteristicNotes: []string{"second"},
	}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if len(f.charRepo.observations) != 1 {
		t.Fatalf("observations = %d, want 1 per day", len(f.charRepo.observations))
	}
	obs := f.charRepo.observations[0]
	if obs.Value != 5 || obs.Notes != "second" {
		t.Errorf("observation = (%d, %q), want latest (5, second)", obs.Value, obs.Notes)
	}
}

func TestSubmitProfile_QuestionnaireAnswerUpdatedInPlace(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()
	f.questRepo.rows[20] = &models.QuestionnaireRow{ID: 20, Name: "Diet"}

	created, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID:           -1,
		Surname:            "Ivanov",
		QuestionnaireIDs:   []string{"20"},
		QuestionnaireNotes: []string{"vegetarian"},
	})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	if _, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID:           created.PlayerID,
		Surname:            "Ivanov",
		QuestionnaireIDs:   []string{"20"},
		QuestionnaireNotes: []string{"omnivore"},
	}); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if len(f.questRepo.answers) != 1 {
		t.Fatalf("answers = %d, want 1", len(f.questRepo.answers))
	}
	if got := f.questRepo.answers[0].Notes; got != "omnivore" {
		t.Errorf("answer = %q, want omnivore", got)
	}
}

func TestSubmitProfile_BrokenRefBecomesNil(t *testing.T) {
	f := newPlayerServiceFixture(t)
	f.refRepo.refs[models.RefPosition] = map[int]*models.Reference{
		3: {ID: 3, Name: "Forward", Kind: models.RefPosition},
	}
	goodRef := 3
	badRef := 77

	result, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
		Card: CardInput{
			PositionID: &goodRef,
			FootID:     &badRef,
		},
	})
	if err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}

	card := f.cardRepo.cards[result.PlayerID]
	if card == nil {
		t.Fatal("card not persisted")
	}
	if card.PositionID == nil || *card.PositionID != 3 {
		t.Errorf("position = %v, want 3", card.PositionID)
	}
	if card.FootID != nil {
		t.Errorf("foot = %v, want nil for unknown reference", *card.FootID)
	}
}

func TestSubmitProfile_AccessDeniedWritesNothing(t *testing.T) {
	f := newPlayerServiceFixture(t)
	f.authorizer.allow = false

	_, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("err = %v, want ErrAccessDenied", err)
	}
	if len(f.playerRepo.players) != 0 || len(f.cardRepo.cards) != 0 {
		t.Error("no writes expected on denied access")
	}
}

func TestSubmitProfile_PhotoFailureKeepsPlayer(t *testing.T) {
	f := newPlayerServiceFixture(t)

	result, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
		Photo: &PhotoUpload{
			Filename:    "face.JPG",
			ContentType: "image/jpeg",
			Data:        strings.NewReader("bytes"),
		},
	})
	if err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	if !result.PhotoSaved {
		t.Error("expected PhotoSaved = true")
	}
	if len(f.uploader.uploaded) != 1 {
		t.Fatalf("uploads = %d, want 1", len(f.uploader.uploaded))
	}
	key := f.uploader.uploaded[0]
	if !strings.HasPrefix(key, "players/img/") || !strings.HasSuffix(key, ".jpg") {
		t.Errorf("unexpected photo key %q", key)
	}
}

func TestSubmitProfile_CreateFailureReportsNothingSaved(t *testing.T) {
	f := newPlayerServiceFixture(t)
	f.playerRepo.createErr = errors.New("insert rejected")
	parent := 1
	f.charRepo.rows[10] = &models.CharacteristicRow{ID: 10, Name: "Passing", ParentID: &parent}

	_, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID:            -1,
		Surname:             "Ivanov",
		CharacteristicIDs:   []string{"10"},
		CharacteristicStars: []string{"4"},
		CharacteristicNotes: []string{""},
	})
	if !errors.Is(err, ErrPlayerSaveFailed) {
		t.Fatalf("err = %v, want ErrPlayerSaveFailed", err)
	}
	if len(f.playerRepo.players) != 0 {
		t.Error("player must not be persisted")
	}
	if len(f.cardRepo.cards) != 0 || len(f.charRepo.observations) != 0 {
		t.Error("no card or observations must be written after a failed player save")
	}
}

func TestSubmitProfile_UpdateFailureKeepsOldPhoto(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()

	created, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
		Photo: &PhotoUpload{
			Filename:    "face.jpg",
			ContentType: "image/jpeg",
			Data:        strings.NewReader("old"),
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldKey := *f.playerRepo.players[created.PlayerID].PhotoKey

	f.playerRepo.updateErr = errors.New("update rejected")
	_, err = f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: created.PlayerID,
		Surname:  "Ivanov",
		Photo: &PhotoUpload{
			Filename:    "face2.jpg",
			ContentType: "image/jpeg",
			Data:        strings.NewReader("new"),
		},
	})
	if !errors.Is(err, ErrPlayerSaveFailed) {
		t.Fatalf("err = %v, want ErrPlayerSaveFailed", err)
	}

	// Строка продолжает ссылаться на прежний ключ, удалять его нельзя.
	if len(f.uploader.removed) != 0 {
		t.Errorf("removed = %v, want old photo untouched after failed save", f.uploader.removed)
	}
	if got := *f.playerRepo.players[created.PlayerID].PhotoKey; got != oldKey {
		t.Errorf("stored photo key = %q, want unchanged %q", got, oldKey)
	}
}

func TestSubmitProfile_PhotoReplacedAfterSuccessfulSave(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()

	created, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
		Photo: &PhotoUpload{
			Filename:    "face.jpg",
			ContentType: "image/jpeg",
			Data:        strings.NewReader("old"),
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	oldKey := *f.playerRepo.players[created.PlayerID].PhotoKey

	if _, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: created.PlayerID,
		Surname:  "Ivanov",
		Photo: &PhotoUpload{
			Filename:    "face2.jpg",
			ContentType: "image/jpeg",
			Data:        strings.NewReader("new"),
		},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if len(f.uploader.removed) != 1 || f.uploader.removed[0] != oldKey {
		t.Errorf("removed = %v, want exactly the replaced key %q", f.uploader.removed, oldKey)
	}
	if got := *f.playerRepo.players[created.PlayerID].PhotoKey; got == oldKey {
		t.Error("stored photo key must point at the new object")
	}
}

func TestSubmitProfile_CardFailureNonFatal(t *testing.T) {
	f := newPlayerServiceFixture(t)
	f.cardRepo.saveErr = errors.New("card insert rejected")

	result, err := f.service.SubmitProfile(context.Background(), personalScope(), SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
	})
	if err != nil {
		t.Fatalf("SubmitProfile: %v", err)
	}
	if result.CardSaved {
		t.Error("CardSaved = true, want false")
	}
	if !strings.Contains(result.Summary, "Err while saving player card.") {
		t.Errorf("summary = %q, want card failure line", result.Summary)
	}
	// Игрок при этом записан.
	if len(f.playerRepo.players) != 1 {
		t.Fatalf("players = %d, want 1", len(f.playerRepo.players))
	}
}

func TestDeletePlayer_NotFound(t *testing.T) {
	f := newPlayerServiceFixture(t)

	err := f.service.DeletePlayer(context.Background(), personalScope(), 123)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
	if len(f.playerRepo.deleted) != 0 {
		t.Error("nothing must be deleted")
	}
}

func TestDeletePlayer_ForeignScopeNotFound(t *testing.T) {
	f := newPlayerServiceFixture(t)
	otherClub := 5
	f.playerRepo.players[1] = &models.Player{ID: 1, Surname: "Foreign", UserID: 99, ClubID: &otherClub, TeamID: 1}

	err := f.service.DeletePlayer(context.Background(), personalScope(), 1)
	if !errors.Is(err, ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}
	if _, ok := f.playerRepo.players[1]; !ok {
		t.Error("foreign player must survive")
	}
}

func TestGetPlayerDetail_TrendMarkers(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()
	parent := 1
	f.charRepo.rows[10] = &models.CharacteristicRow{ID: 10, Name: "Passing", ParentID: &parent}
	f.charRepo.rows[11] = &models.CharacteristicRow{ID: 11, Name: "Speed", ParentID: &parent}
	f.charRepo.rows[12] = &models.CharacteristicRow{ID: 12, Name: "Stamina", ParentID: &parent}

	created, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	playerID := created.PlayerID
	userID := scope.UserID

	yesterday := truncateToDay(time.Now().AddDate(0, 0, -1))
	today := truncateToDay(time.Now())
	seed := []models.CharacteristicObservation{
		{RowID: 10, PlayerID: playerID, UserID: &userID, Value: 3, Date: yesterday},
		{RowID: 10, PlayerID: playerID, UserID: &userID, Value: 5, Date: today},
		{RowID: 11, PlayerID: playerID, UserID: &userID, Value: 4, Date: yesterday},
		{RowID: 11, PlayerID: playerID, UserID: &userID, Value: 2, Date: today},
		{RowID: 12, PlayerID: playerID, UserID: &userID, Value: 4, Date: today},
	}
	for i := range seed {
		if err := f.charRepo.CreateObservation(context.Background(), &seed[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	detail, err := f.service.GetPlayerDetail(context.Background(), scope, playerID)
	if err != nil {
		t.Fatalf("GetPlayerDetail: %v", err)
	}

	diffs := map[int]string{}
	values := map[int]int{}
	for _, view := range detail.Characteristics {
		diffs[view.RowID] = view.Diff
		values[view.RowID] = view.Value
	}
	if diffs[10] != ">" || values[10] != 5 {
		t.Errorf("row 10: diff %q value %d, want > 5", diffs[10], values[10])
	}
	if diffs[11] != "<" || values[11] != 2 {
		t.Errorf("row 11: diff %q value %d, want < 2", diffs[11], values[11])
	}
	if diffs[12] != "-" || values[12] != 4 {
		t.Errorf("row 12: diff %q value %d, want - 4", diffs[12], values[12])
	}
}

func TestGetPlayerDetail_PhotoURLOnlyForManagedKeys(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()

	created, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	foreignKey := "somewhere/else.png"
	f.playerRepo.players[created.PlayerID].PhotoKey = &foreignKey
	detail, err := f.service.GetPlayerDetail(context.Background(), scope, created.PlayerID)
	if err != nil {
		t.Fatalf("GetPlayerDetail: %v", err)
	}
	if detail.Photo != "" {
		t.Errorf("photo = %q, want empty for unmanaged key", detail.Photo)
	}

	managedKey := "players/img/abc.png"
	f.playerRepo.players[created.PlayerID].PhotoKey = &managedKey
	detail, err = f.service.GetPlayerDetail(context.Background(), scope, created.PlayerID)
	if err != nil {
		t.Fatalf("GetPlayerDetail: %v", err)
	}
	if want := "https://cdn.test/players/img/abc.png"; detail.Photo != want {
		t.Errorf("photo = %q, want %q", detail.Photo, want)
	}
}

func TestListPlayers_SearchByPrefix(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()

	for _, surname := range []string{"Ivanov", "Ivashkin", "Petrov"} {
		if _, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
			PlayerID: -1,
			Surname:  surname,
		}); err != nil {
			t.Fatalf("seed %s: %v", surname, err)
		}
	}

	rows, err := f.service.ListPlayers(context.Background(), scope, ListPlayersInput{
		ForTable: true,
		Length:   10,
		Search:   "iva",
	})
	if err != nil {
		t.Fatalf("ListPlayers: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	for _, row := range rows {
		if !strings.HasPrefix(strings.ToLower(row.Surname), "iva") {
			t.Errorf("unexpected row %q", row.Surname)
		}
	}
}

func TestListPlayers_TeamOverride(t *testing.T) {
	f := newPlayerServiceFixture(t)
	scope := personalScope()
	team2 := 2

	if _, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Ivanov",
	}); err != nil {
		t.Fatalf("seed team 1: %v", err)
	}
	if _, err := f.service.SubmitProfile(context.Background(), scope, SubmitProfileInput{
		PlayerID: -1,
		Surname:  "Petrov",
		TeamID:   &team2,
	}); err != nil {
		t.Fatalf("seed team 2: %v", err)
	}

	rows, err := f.service.ListPlayers(context.Background(), scope, ListPlayersInput{TeamID: &team2})
	if err != nil {
		t.Fatalf("ListPlayers: %v", err)
	}
	if len(rows) != 1 || rows[0].Surname != "Petrov" {
		t.Fatalf("rows = %+v, want only Petrov", rows)
	}
}

func TestTrendMarker(t *testing.T) {
	obs := func(values ...int) []models.CharacteristicObservation {
		result := make([]models.CharacteristicObservation, len(values))
		for i, v := range values {
			result[i].Value = v
		}
		return result
	}

	cases := []struct {
		name string
		in   []models.CharacteristicObservation
		want string
	}{
		{"no history", obs(4), "-"},
		{"equal", obs(4, 4), "="},
		{"up", obs(5, 3), ">"},
		{"down", obs(2, 3), "<"},
	}
	for _, tc := range cases {
		if got := trendMarker(tc.in); got != tc.want {
			t.Errorf("%s: trendMarker = %q, want %q", tc.name, got, tc.want)
		}
	}
}
