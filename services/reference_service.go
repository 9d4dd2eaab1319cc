package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/coachkit/roster-system/models"
	"github.com/coachkit/roster-system/repositories"
	"golang.org/x/sync/errgroup"
)

type ReferenceService interface {
	// ListPlayerRefs возвращает все справочники карточки игрока с
	// заголовками, переведёнными на язык запроса.
	ListPlayerRefs(ctx context.Context, langCode string) (map[models.RefKind][]models.Reference, error)
	ListByKind(ctx context.Context, kind models.RefKind, langCode string) ([]models.Reference, error)
}

type referenceService struct {
	referenceRepo repositories.ReferenceRepository
}

func NewReferenceService(referenceRepo repositories.ReferenceRepository) ReferenceService {
	return &referenceService{referenceRepo: referenceRepo}
}

func (s *referenceService) ListPlayerRefs(ctx context.Context, langCode string) (map[models.RefKind][]models.Reference, error) {
	result := make(map[models.RefKind][]models.Reference, len(models.PlayerRefKinds))
	var mu sync.Mutex

	// Пять независимых таблиц тянем параллельно.
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range models.PlayerRefKinds {
		kind := kind
		g.Go(func() error {
			refs, err := s.referenceRepo.ListByKind(gctx, kind)
			if err != nil {
				return fmt.Errorf("failed to list %s references: %w", kind, err)
			}
			applyTitles(refs, langCode)
			mu.Lock()
			result[kind] = refs
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *referenceService) ListByKind(ctx context.Context, kind models.RefKind, langCode string) ([]models.Reference, error) {
	refs, err := s.referenceRepo.ListByKind(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s references: %w", kind, err)
	}
	applyTitles(refs, langCode)
	return refs, nil
}

// applyTitles проставляет переведённый заголовок; без перевода остаётся
// техническое имя.
func applyTitles(refs []models.Reference, langCode string) {
	for i := range refs {
		title := refs[i].Translations.Resolve(langCode)
		if title == "" {
			title = refs[i].Name
		}
		refs[i].Title = title
	}
}
