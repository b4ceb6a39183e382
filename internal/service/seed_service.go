package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

// TaxonomySeed: формат YAML файла справочника.
type TaxonomySeed struct {
	Types []SeedType `yaml:"types"`
}

type SeedEntry struct {
	Slug          string `yaml:"slug"`
	NameDE        string `yaml:"name_de"`
	NameEN        string `yaml:"name_en"`
	DescriptionDE string `yaml:"description_de"`
	DescriptionEN string `yaml:"description_en"`
	SortOrder     int    `yaml:"sort_order"`
	Active        *bool  `yaml:"active"`
}

type SeedType struct {
	SeedEntry `yaml:",inline"`
	Subtypes  []SeedEntry `yaml:"subtypes"`
}

// SeedResult: сколько записей создано и обновлено.
type SeedResult struct {
	TypesCreated    int
	TypesUpdated    int
	SubtypesCreated int
	SubtypesUpdated int
}

// ParseTaxonomySeed читает и проверяет YAML справочника.
func ParseTaxonomySeed(r io.Reader) (*TaxonomySeed, error) {
	var seed TaxonomySeed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("seed: не удалось разобрать YAML: %w", err)
	}

	seen := make(map[string]bool, len(seed.Types))
	for i, t := range seed.Types {
		slug := strings.TrimSpace(t.Slug)
		if slug == "" {
			return nil, fmt.Errorf("seed: у типа #%d нет slug", i+1)
		}
		if seen[slug] {
			return nil, fmt.Errorf("seed: slug %q повторяется", slug)
		}
		seen[slug] = true

		sub := make(map[string]bool, len(t.Subtypes))
		for j, st := range t.Subtypes {
			s := strings.TrimSpace(st.Slug)
			if s == "" {
				return nil, fmt.Errorf("seed: у подтипа #%d типа %q нет slug", j+1, slug)
			}
			if sub[s] {
				return nil, fmt.Errorf("seed: slug подтипа %q повторяется в типе %q", s, slug)
			}
			sub[s] = true
		}
	}
	return &seed, nil
}

// Seed создаёт или обновляет типы и подтипы по slug. Записи, которых нет
// в файле, не трогаются.
func (s *TaxonomyService) Seed(ctx context.Context, seed *TaxonomySeed) (*SeedResult, error) {
	res := &SeedResult{}
	defer s.cache.InvalidateTaxonomy()

	for _, st := range seed.Types {
		t, created, err := s.upsertType(ctx, st.SeedEntry)
		if err != nil {
			return res, fmt.Errorf("seed: тип %q: %w", st.Slug, err)
		}
		if created {
			res.TypesCreated++
		} else {
			res.TypesUpdated++
		}

		for _, sub := range st.Subtypes {
			created, err := s.upsertSubtype(ctx, t, sub)
			if err != nil {
				return res, fmt.Errorf("seed: подтип %q/%q: %w", st.Slug, sub.Slug, err)
			}
			if created {
				res.SubtypesCreated++
			} else {
				res.SubtypesUpdated++
			}
		}
	}
	return res, nil
}

func (s *TaxonomyService) upsertType(ctx context.Context, e SeedEntry) (*entity.IncidentType, bool, error) {
	in := seedInput(e)
	existing, err := s.repo.FindTypeBySlug(ctx, strings.TrimSpace(e.Slug))
	switch {
	case err == nil:
		t, err := s.UpdateType(ctx, existing.ID, in)
		return t, false, err
	case apperror.IsNotFound(err):
		t, err := s.CreateType(ctx, in)
		return t, true, err
	default:
		return nil, false, err
	}
}

func (s *TaxonomyService) upsertSubtype(ctx context.Context, t *entity.IncidentType, e SeedEntry) (bool, error) {
	in := seedInput(e)
	existing, err := s.repo.FindSubtypeBySlug(ctx, t.ID, strings.TrimSpace(e.Slug))
	switch {
	case err == nil:
		_, err := s.UpdateSubtype(ctx, existing.ID, in)
		return false, err
	case apperror.IsNotFound(err):
		_, err := s.CreateSubtype(ctx, t.ID, in)
		return true, err
	default:
		return false, err
	}
}

func seedInput(e SeedEntry) TaxonomyInput {
	active := true
	if e.Active != nil {
		active = *e.Active
	}
	return TaxonomyInput{
		Slug:          e.Slug,
		NameDE:        e.NameDE,
		NameEN:        e.NameEN,
		DescriptionDE: &e.DescriptionDE,
		DescriptionEN: &e.DescriptionEN,
		SortOrder:     &e.SortOrder,
		Active:        &active,
	}
}
