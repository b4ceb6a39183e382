package service

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/entity"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/repository"
	"github.com/Studio-Zurich/fix-app-sub000/internal/domain/valueobject"
	"github.com/Studio-Zurich/fix-app-sub000/internal/pkg/apperror"
)

// memoryTaxonomy реализует TaxonomyRepository в памяти и считает запросы списка.
type memoryTaxonomy struct {
	mu        sync.Mutex
	types     map[uuid.UUID]*entity.IncidentType
	subtypes  map[uuid.UUID]*entity.IncidentSubtype
	listCalls int
}

func newMemoryTaxonomy() *memoryTaxonomy {
	return &memoryTaxonomy{
		types:    make(map[uuid.UUID]*entity.IncidentType),
		subtypes: make(map[uuid.UUID]*entity.IncidentSubtype),
	}
}

func (m *memoryTaxonomy) addType(slug, de, en string, order int, active bool) *entity.IncidentType {
	t, _ := entity.NewIncidentType(slug, de, en)
	t.SortOrder = order
	t.Active = active
	m.types[t.ID] = t
	return t
}

func (m *memoryTaxonomy) addSubtype(typeID uuid.UUID, slug, de, en string, active bool) *entity.IncidentSubtype {
	st, _ := entity.NewIncidentSubtype(typeID, slug, de, en)
	st.Active = active
	m.subtypes[st.ID] = st
	return st
}

func (m *memoryTaxonomy) ListTypes(_ context.Context, onlyActive bool) ([]*entity.IncidentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	var out []*entity.IncidentType
	for _, t := range m.types {
		if onlyActive && !t.Active {
			continue
		}
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memoryTaxonomy) FindTypeByID(_ context.Context, id uuid.UUID) (*entity.IncidentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.types[id]; ok {
		c := *t
		return &c, nil
	}
	return nil, apperror.ErrIncidentTypeNotFound
}

func (m *memoryTaxonomy) FindTypeBySlug(_ context.Context, slug string) (*entity.IncidentType, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.types {
		if t.Slug == slug {
			c := *t
			return &c, nil
		}
	}
	return nil, apperror.ErrIncidentTypeNotFound
}

func (m *memoryTaxonomy) CreateType(_ context.Context, t *entity.IncidentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *t
	m.types[t.ID] = &c
	return nil
}

func (m *memoryTaxonomy) UpdateType(_ context.Context, t *entity.IncidentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.types[t.ID]; !ok {
		return apperror.ErrIncidentTypeNotFound
	}
	c := *t
	m.types[t.ID] = &c
	return nil
}

func (m *memoryTaxonomy) ListSubtypes(_ context.Context, typeID uuid.UUID, onlyActive bool) ([]*entity.IncidentSubtype, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.IncidentSubtype
	for _, st := range m.subtypes {
		if st.TypeID != typeID || (onlyActive && !st.Active) {
			continue
		}
		c := *st
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memoryTaxonomy) FindSubtypeByID(_ context.Context, id uuid.UUID) (*entity.IncidentSubtype, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.subtypes[id]; ok {
		c := *st
		return &c, nil
	}
	return nil, apperror.ErrIncidentSubtypeNotFound
}

func (m *memoryTaxonomy) FindSubtypeBySlug(_ context.Context, typeID uuid.UUID, slug string) (*entity.IncidentSubtype, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, st := range m.subtypes {
		if st.TypeID == typeID && st.Slug == slug {
			c := *st
			return &c, nil
		}
	}
	return nil, apperror.ErrIncidentSubtypeNotFound
}

func (m *memoryTaxonomy) CreateSubtype(_ context.Context, st *entity.IncidentSubtype) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := *st
	m.subtypes[st.ID] = &c
	return nil
}

func (m *memoryTaxonomy) UpdateSubtype(_ context.Context, st *entity.IncidentSubtype) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subtypes[st.ID]; !ok {
		return apperror.ErrIncidentSubtypeNotFound
	}
	c := *st
	m.subtypes[st.ID] = &c
	return nil
}

func (m *memoryTaxonomy) CountActiveSubtypes(ctx context.Context, typeID uuid.UUID) (int, error) {
	list, err := m.ListSubtypes(ctx, typeID, true)
	return len(list), err
}

type memoryAdmins struct {
	byID    map[uuid.UUID]*entity.AdminUser
	touched int
}

func newMemoryAdmins() *memoryAdmins {
	return &memoryAdmins{byID: make(map[uuid.UUID]*entity.AdminUser)}
}

func (m *memoryAdmins) Create(_ context.Context, a *entity.AdminUser) error {
	m.byID[a.ID] = a
	return nil
}

func (m *memoryAdmins) FindByEmail(_ context.Context, email string) (*entity.AdminUser, error) {
	for _, a := range m.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, apperror.ErrAdminNotFound
}

func (m *memoryAdmins) FindByID(_ context.Context, id uuid.UUID) (*entity.AdminUser, error) {
	if a, ok := m.byID[id]; ok {
		return a, nil
	}
	return nil, apperror.ErrAdminNotFound
}

func (m *memoryAdmins) TouchLastLogin(context.Context, uuid.UUID) error {
	m.touched++
	return nil
}

type memoryReports struct {
	mu          sync.Mutex
	reports     map[uuid.UUID]*entity.Report
	images      map[uuid.UUID][]entity.ReportImage
	countCalls  int
	statusCalls int
}

func newMemoryReports() *memoryReports {
	return &memoryReports{
		reports: make(map[uuid.UUID]*entity.Report),
		images:  make(map[uuid.UUID][]entity.ReportImage),
	}
}

func (m *memoryReports) Create(_ context.Context, r *entity.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[r.ID] = r
	return nil
}

func (m *memoryReports) FindByID(_ context.Context, id uuid.UUID) (*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[id]; ok {
		c := *r
		return &c, nil
	}
	return nil, apperror.ErrReportNotFound
}

func (m *memoryReports) List(_ context.Context, f repository.ReportFilter) ([]*entity.Report, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Report
	for _, r := range m.reports {
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *memoryReports) UpdateStatus(_ context.Context, id uuid.UUID, status valueobject.ReportStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return apperror.ErrReportNotFound
	}
	m.statusCalls++
	r.Status = status
	return nil
}

func (m *memoryReports) AddImage(_ context.Context, img *entity.ReportImage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[img.ReportID] = append(m.images[img.ReportID], *img)
	return nil
}

func (m *memoryReports) FindImages(_ context.Context, id uuid.UUID) ([]entity.ReportImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.images[id], nil
}

func (m *memoryReports) CountByStatus(context.Context) (map[valueobject.ReportStatus]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	out := make(map[valueobject.ReportStatus]int)
	for _, r := range m.reports {
		out[r.Status]++
	}
	return out, nil
}

func (m *memoryReports) CountByType(context.Context) ([]repository.TypeCount, error) {
	return nil, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Broadcast(event string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}
