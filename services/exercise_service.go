package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coachkit/roster-system/models"
	"github.com/coachkit/roster-system/repositories"
)

type ExerciseService interface {
	CreateExercise(ctx context.Context, scope models.Scope, input ExerciseInput) (*models.Exercise, error)
	GetExerciseByID(ctx context.Context, scope models.Scope, id int, langCode string) (*ExerciseView, error)
	ListExercises(ctx context.Context, scope models.Scope, langCode string, visibleOnly bool) ([]ExerciseView, error)
	UpdateExercise(ctx context.Context, scope models.Scope, id int, input ExerciseInput) (*models.Exercise, error)
	DeleteExercise(ctx context.Context, scope models.Scope, id int) error
}

type ExerciseInput struct {
	// LangCode проставляется обработчиком из контекста запроса.
	LangCode    string `json:"-"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       *int   `json:"order"`
	Visible     *bool  `json:"visible"`
	Completed   *bool  `json:"completed"`
	TeamID      *int   `json:"team_id"`

	GoalID          *int `json:"ref_goal"`
	BallID          *int `json:"ref_ball"`
	TeamCategoryID  *int `json:"ref_team_category"`
	AgeCategoryID   *int `json:"ref_age_category"`
	TrainPartID     *int `json:"ref_train_part"`
	CognitiveLoadID *int `json:"ref_cognitive_load"`
}

// ExerciseView — упражнение с заголовком и описанием, переведёнными на
// язык запроса.
type ExerciseView struct {
	models.Exercise
	TitleText       string `json:"title_text"`
	DescriptionText string `json:"description_text"`
}

var exerciseEditCaps = models.CapabilityRequest{
	User: []models.Capability{models.CapExerciseEdit},
	Club: []models.Capability{models.CapExerciseEdit},
}

var exerciseViewCaps = models.CapabilityRequest{
	User: []models.Capability{models.CapExerciseView},
	Club: []models.Capability{models.CapExerciseView},
}

var exerciseDeleteCaps = models.CapabilityRequest{
	User: []models.Capability{models.CapExerciseDelete},
	Club: []models.Capability{models.CapExerciseDelete},
}

type exerciseService struct {
	exerciseRepo  repositories.ExerciseRepository
	referenceRepo repositories.ReferenceRepository
	authorizer    Authorizer
}

func NewExerciseService(
	exerciseRepo repositories.ExerciseRepository,
	referenceRepo repositories.ReferenceRepository,
	authorizer Authorizer,
) ExerciseService {
	return &exerciseService{
		exerciseRepo:  exerciseRepo,
		referenceRepo: referenceRepo,
		authorizer:    authorizer,
	}
}

// exerciseRefBindings — та же статическая привязка справочников, что и
// у карточки игрока.
var exerciseRefBindings = []struct {
	kind models.RefKind
	get  func(*ExerciseInput) *int
	set  func(*models.Exercise, *int)
}{
	{models.RefExsGoal, func(i *ExerciseInput) *int { return i.GoalID }, func(e *models.Exercise, v *int) { e.GoalID = v }},
	{models.RefExsBall, func(i *ExerciseInput) *int { return i.BallID }, func(e *models.Exercise, v *int) { e.BallID = v }},
	{models.RefExsTeamCategory, func(i *ExerciseInput) *int { return i.TeamCategoryID }, func(e *models.Exercise, v *int) { e.TeamCategoryID = v }},
	{models.RefExsAgeCategory, func(i *ExerciseInput) *int { return i.AgeCategoryID }, func(e *models.Exercise, v *int) { e.AgeCategoryID = v }},
	{models.RefExsTrainPart, func(i *ExerciseInput) *int { return i.TrainPartID }, func(e *models.Exercise, v *int) { e.TrainPartID = v }},
	{models.RefExsCognitiveLoad, func(i *ExerciseInput) *int { return i.CognitiveLoadID }, func(e *models.Exercise, v *int) { e.CognitiveLoadID = v }},
}

func (s *exerciseService) CreateExercise(ctx context.Context, scope models.Scope, input ExerciseInput) (*models.Exercise, error) {
	if err := s.authorize(ctx, scope, exerciseEditCaps); err != nil {
		return nil, err
	}

	exercise := &models.Exercise{
		UserID:  scope.UserID,
		ClubID:  scope.ClubID,
		TeamID:  input.TeamID,
		Visible: true,
	}
	s.applyInput(ctx, exercise, input)

	if err := s.exerciseRepo.Create(ctx, exercise); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExerciseSaveFailed, err)
	}
	return exercise, nil
}

func (s *exerciseService) GetExerciseByID(ctx context.Context, scope models.Scope, id int, langCode string) (*ExerciseView, error) {
	if err := s.authorize(ctx, scope, exerciseViewCaps); err != nil {
		return nil, err
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, repositories.ErrExerciseNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}
	view := newExerciseView(*exercise, langCode)
	return &view, nil
}

func (s *exerciseService) ListExercises(ctx context.Context, scope models.Scope, langCode string, visibleOnly bool) ([]ExerciseView, error) {
	if err := s.authorize(ctx, scope, exerciseViewCaps); err != nil {
		return nil, err
	}

	exercises, err := s.exerciseRepo.List(ctx, scope, visibleOnly)
	if err != nil {
		return nil, err
	}

	views := make([]ExerciseView, 0, len(exercises))
	for _, e := range exercises {
		views = append(views, newExerciseView(e, langCode))
	}
	return views, nil
}

func (s *exerciseService) UpdateExercise(ctx context.Context, scope models.Scope, id int, input ExerciseInput) (*models.Exercise, error) {
	if err := s.authorize(ctx, scope, exerciseEditCaps); err != nil {
		return nil, err
	}

	exercise, err := s.exerciseRepo.GetByID(ctx, id, scope)
	if err != nil {
		if errors.Is(err, repositories.ErrExerciseNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, err
	}

	s.applyInput(ctx, exercise, input)

	if err := s.exerciseRepo.Update(ctx, exercise); err != nil {
		if errors.Is(err, repositories.ErrExerciseNotFound) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrExerciseSaveFailed, err)
	}
	return exercise, nil
}

func (s *exerciseService) DeleteExercise(ctx context.Context, scope models.Scope, id int) error {
	if err := s.authorize(ctx, scope, exerciseDeleteCaps); err != nil {
		return err
	}

	if err := s.exerciseRepo.Delete(ctx, id, scope); err != nil {
		if errors.Is(err, repositories.ErrExerciseNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

func (s *exerciseService) authorize(ctx context.Context, scope models.Scope, req models.CapabilityRequest) error {
	ok, err := s.authorizer.HasCapability(ctx, scope.UserID, req)
	if err != nil {
		return fmt.Errorf("capability check failed: %w", err)
	}
	if !ok {
		return ErrAccessDenied
	}
	return nil
}

func (s *exerciseService) applyInput(ctx context.Context, exercise *models.Exercise, input ExerciseInput) {
	lang := input.LangCode
	if lang == "" {
		lang = models.LangCodeDefault
	}
	if input.Title != "" {
		exercise.Title = exercise.Title.Set(lang, input.Title)
	}
	if input.Description != "" {
		exercise.Description = exercise.Description.Set(lang, input.Description)
	}
	if input.Order != nil {
		exercise.Order = *input.Order
	}
	if input.Visible != nil {
		exercise.Visible = *input.Visible
	}
	if input.Completed != nil {
		exercise.Completed = *input.Completed
		if *input.Completed {
			now := time.Now()
			exercise.CompletedTime = &now
		} else {
			exercise.CompletedTime = nil
		}
	}
	if input.TeamID != nil {
		exercise.TeamID = input.TeamID
	}

	for _, binding := range exerciseRefBindings {
		if raw := binding.get(&input); raw != nil {
			binding.set(exercise, s.resolveRef(ctx, binding.kind, raw))
		}
	}
}

func newExerciseView(exercise models.Exercise, langCode string) ExerciseView {
	return ExerciseView{
		Exercise:        exercise,
		TitleText:       exercise.Title.Resolve(langCode),
		DescriptionText: exercise.Description.Resolve(langCode),
	}
}

func (s *exerciseService) resolveRef(ctx context.Context, kind models.RefKind, id *int) *int {
	if id == nil {
		return nil
	}
	ref, err := s.referenceRepo.GetByID(ctx, kind, *id)
	if err != nil {
		return nil
	}
	return &ref.ID
}
