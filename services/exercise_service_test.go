package services

import (
	"context"
	"errors"
	"testing"

	"github.com/coachkit/roster-system/models"
	"github.com/coachkit/roster-system/repositories"
)

type fakeExerciseRepo struct {
	exercises map[int]*models.Exercise
	nextID    int
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: map[int]*models.Exercise{}, nextID: 1}
}

func (f *fakeExerciseRepo) ownedBy(e *models.Exercise, scope models.Scope) bool {
	if scope.IsClub() {
		return e.ClubID != nil && *e.ClubID == *scope.ClubID
	}
	return e.ClubID == nil && e.UserID == scope.UserID
}

func (f *fakeExerciseRepo) Create(ctx context.Context, exercise *models.Exercise) error {
	exercise.ID = f.nextID
	f.nextID++
	copied := *exercise
	f.exercises[exercise.ID] = &copied
	return nil
}

func (f *fakeExerciseRepo) GetByID(ctx context.Context, id int, scope models.Scope) (*models.Exercise, error) {
	e, ok := f.exercises[id]
	if !ok || !f.ownedBy(e, scope) {
		return nil, repositories.ErrExerciseNotFound
	}
	copied := *e
	return &copied, nil
}

func (f *fakeExerciseRepo) List(ctx context.Context, scope models.Scope, visibleOnly bool) ([]models.Exercise, error) {
	var result []models.Exercise
	for _, e := range f.exercises {
		if !f.ownedBy(e, scope) {
			continue
		}
		if visibleOnly && !e.Visible {
			continue
		}
		result = append(result, *e)
	}
	return result, nil
}

func (f *fakeExerciseRepo) Update(ctx context.Context, exercise *models.Exercise) error {
	if _, ok := f.exercises[exercise.ID]; !ok {
		return repositories.ErrExerciseNotFound
	}
	copied := *exercise
	f.exercises[exercise.ID] = &copied
	return nil
}

func (f *fakeExerciseRepo) Delete(ctx context.Context, id int, scope models.Scope) error {
	e, ok := f.exercises[id]
	if !ok || !f.ownedBy(e, scope) {
		return repositories.ErrExerciseNotFound
	}
	delete(f.exercises, id)
	return nil
}

func newExerciseServiceForTest(repo *fakeExerciseRepo, refs *fakeReferenceRepo) ExerciseService {
	if refs == nil {
		refs = &fakeReferenceRepo{refs: map[models.RefKind]map[int]*models.Reference{}}
	}
	return NewExerciseService(repo, refs, &fakeAuthorizer{allow: true})
}

func TestCreateExercise_TranslationsPerLanguage(t *testing.T) {
	repo := newFakeExerciseRepo()
	service := newExerciseServiceForTest(repo, nil)
	scope := models.Scope{UserID: 7, TeamID: 1}

	created, err := service.CreateExercise(context.Background(), scope, ExerciseInput{
		LangCode: "ru",
		Title:    "Квадрат",
	})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	if !created.Visible {
		t.Error("new exercise must be visible by default")
	}

	// Обновление на другом языке добавляет перевод, не затирая прежний.
	if _, err := service.UpdateExercise(context.Background(), scope, created.ID, ExerciseInput{
		LangCode: "en",
		Title:    "Rondo",
	}); err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}

	view, err := service.GetExerciseByID(context.Background(), scope, created.ID, "ru")
	if err != nil {
		t.Fatalf("GetExerciseByID: %v", err)
	}
	if view.TitleText != "Квадрат" {
		t.Errorf("ru title = %q, want Квадрат", view.TitleText)
	}

	view, err = service.GetExerciseByID(context.Background(), scope, created.ID, "de")
	if err != nil {
		t.Fatalf("GetExerciseByID: %v", err)
	}
	if view.TitleText != "Rondo" {
		t.Errorf("de title = %q, want fallback Rondo", view.TitleText)
	}
}

func TestUpdateExercise_CompletedSetsTimestamp(t *testing.T) {
	repo := newFakeExerciseRepo()
	service := newExerciseServiceForTest(repo, nil)
	scope := models.Scope{UserID: 7, TeamID: 1}

	created, err := service.CreateExercise(context.Background(), scope, ExerciseInput{Title: "Rondo"})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}

	done := true
	updated, err := service.UpdateExercise(context.Background(), scope, created.ID, ExerciseInput{Completed: &done})
	if err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if !updated.Completed || updated.CompletedTime == nil {
		t.Fatalf("completed = (%v, %v), want true with timestamp", updated.Completed, updated.CompletedTime)
	}

	undone := false
	updated, err = service.UpdateExercise(context.Background(), scope, created.ID, ExerciseInput{Completed: &undone})
	if err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if updated.Completed || updated.CompletedTime != nil {
		t.Fatalf("completed = (%v, %v), want cleared", updated.Completed, updated.CompletedTime)
	}
}

func TestListExercises_VisibleOnly(t *testing.T) {
	repo := newFakeExerciseRepo()
	service := newExerciseServiceForTest(repo, nil)
	scope := models.Scope{UserID: 7, TeamID: 1}

	created, err := service.CreateExercise(context.Background(), scope, ExerciseInput{Title: "Hidden"})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	hidden := false
	if _, err := service.UpdateExercise(context.Background(), scope, created.ID, ExerciseInput{Visible: &hidden}); err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if _, err := service.CreateExercise(context.Background(), scope, ExerciseInput{Title: "Shown"}); err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}

	all, err := service.ListExercises(context.Background(), scope, "en", false)
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("all = %d, want 2", len(all))
	}

	visible, err := service.ListExercises(context.Background(), scope, "en", true)
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(visible) != 1 || visible[0].TitleText != "Shown" {
		t.Fatalf("visible = %+v, want only Shown", visible)
	}
}

func TestDeleteExercise_ForeignScope(t *testing.T) {
	repo := newFakeExerciseRepo()
	service := newExerciseServiceForTest(repo, nil)

	created, err := service.CreateExercise(context.Background(), models.Scope{UserID: 7, TeamID: 1}, ExerciseInput{Title: "Rondo"})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}

	err = service.DeleteExercise(context.Background(), models.Scope{UserID: 8, TeamID: 1}, created.ID)
	if !errors.Is(err, ErrExerciseNotFound) {
		t.Fatalf("err = %v, want ErrExerciseNotFound", err)
	}
	if _, ok := repo.exercises[created.ID]; !ok {
		t.Error("exercise of another scope must survive")
	}
}

func TestCreateExercise_BrokenRefBecomesNil(t *testing.T) {
	repo := newFakeExerciseRepo()
	refs := &fakeReferenceRepo{refs: map[models.RefKind]map[int]*models.Reference{
		models.RefExsGoal: {4: {ID: 4, Kind: models.RefExsGoal, Name: "possession"}},
	}}
	service := newExerciseServiceForTest(repo, refs)

	goodRef := 4
	badRef := 55
	created, err := service.CreateExercise(context.Background(), models.Scope{UserID: 7, TeamID: 1}, ExerciseInput{
		Title:  "Rondo",
		GoalID: &goodRef,
		BallID: &badRef,
	})
	if err != nil {
		t.Fatalf("CreateExercise: %v", err)
	}
	if created.GoalID == nil || *created.GoalID != 4 {
		t.Errorf("goal = %v, want 4", created.GoalID)
	}
	if created.BallID != nil {
		t.Errorf("ball = %v, want nil for unknown reference", *created.BallID)
	}
}
