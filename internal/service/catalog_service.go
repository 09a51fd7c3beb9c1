package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/mapper"
	"github.com/tripdesk/agency-api/internal/pricing"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SnapshotFormatVersion is written into every exported catalog snapshot
const SnapshotFormatVersion = 1

// LatestSnapshotName is the key suffix of the most recent snapshot
const LatestSnapshotName = "appdata-latest.json"

// CatalogKind is CRUD for one kind of catalog entry. R is the request body,
// D the response DTO.
type CatalogKind[T repository.CatalogEntity, R any, D any] struct {
	name   string
	repo   *repository.CatalogRepository[T]
	build  func(req *R, existing *T) *T
	toDTO  func(*T) D
	logger *zap.Logger
}

// Name is the kind's singular name used in logs and audit entries
func (k *CatalogKind[T, R, D]) Name() string {
	return k.name
}

// Create validates nothing beyond the request tags and stores a new entry
func (k *CatalogKind[T, R, D]) Create(ctx context.Context, req *R) (*D, error) {
	entity := k.build(req, nil)
	if err := k.repo.Create(ctx, entity); err != nil {
		return nil, mapRepoError(err, "create "+k.name)
	}
	k.logger.Info("catalog entry created", zap.String("kind", k.name))
	dto := k.toDTO(entity)
	return &dto, nil
}

// Get returns one entry
func (k *CatalogKind[T, R, D]) Get(ctx context.Context, id uuid.UUID) (*D, error) {
	entity, err := k.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get "+k.name)
	}
	dto := k.toDTO(entity)
	return &dto, nil
}

// Update replaces an entry's fields. Nested rows keep their IDs when the
// request carries them.
func (k *CatalogKind[T, R, D]) Update(ctx context.Context, id uuid.UUID, req *R) (*D, error) {
	existing, err := k.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get "+k.name)
	}
	entity := k.build(req, existing)
	if err := k.repo.Update(ctx, entity); err != nil {
		return nil, mapRepoError(err, "update "+k.name)
	}
	k.logger.Info("catalog entry updated", zap.String("kind", k.name), zap.String("id", id.String()))

	updated, err := k.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "get "+k.name)
	}
	dto := k.toDTO(updated)
	return &dto, nil
}

// Delete removes an entry. Day plans that still reference it price it at zero.
func (k *CatalogKind[T, R, D]) Delete(ctx context.Context, id uuid.UUID) error {
	if err := k.repo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "delete "+k.name)
	}
	k.logger.Info("catalog entry deleted", zap.String("kind", k.name), zap.String("id", id.String()))
	return nil
}

// List returns a page of entries, optionally filtered by name
func (k *CatalogKind[T, R, D]) List(ctx context.Context, page, pageSize int, search string) (*domain.PaginatedResponse, error) {
	items, total, err := k.repo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", k.name, err)
	}
	dtos := make([]D, len(items))
	for i := range items {
		dtos[i] = k.toDTO(&items[i])
	}
	return paginated(dtos, total, page, pageSize), nil
}

// CatalogService owns the catalog store: per-kind CRUD, the pricing index
// and whole-catalog snapshots.
type CatalogService struct {
	Transportations *CatalogKind[domain.Transportation, domain.TransportationRequest, domain.TransportationDTO]
	Hotels          *CatalogKind[domain.Hotel, domain.HotelRequest, domain.HotelDTO]
	Sightseeings    *CatalogKind[domain.Sightseeing, domain.SightseeingRequest, domain.SightseeingDTO]
	Activities      *CatalogKind[domain.Activity, domain.ActivityRequest, domain.ActivityDTO]
	EntryTickets    *CatalogKind[domain.EntryTicket, domain.EntryTicketRequest, domain.EntryTicketDTO]
	Meals           *CatalogKind[domain.Meal, domain.MealRequest, domain.MealDTO]

	db             *gorm.DB
	store          storage.Storage
	snapshotPrefix string
	logger         *zap.Logger
	now            func() time.Time
}

// CatalogRepositories groups the per-kind repositories
type CatalogRepositories struct {
	Transportations *repository.CatalogRepository[domain.Transportation]
	Hotels          *repository.CatalogRepository[domain.Hotel]
	Sightseeings    *repository.CatalogRepository[domain.Sightseeing]
	Activities      *repository.CatalogRepository[domain.Activity]
	EntryTickets    *repository.CatalogRepository[domain.EntryTicket]
	Meals           *repository.CatalogRepository[domain.Meal]
}

// NewCatalogRepositories creates every catalog repository over db
func NewCatalogRepositories(db *gorm.DB) CatalogRepositories {
	return CatalogRepositories{
		Transportations: repository.NewTransportationRepository(db),
		Hotels:          repository.NewHotelRepository(db),
		Sightseeings:    repository.NewSightseeingRepository(db),
		Activities:      repository.NewActivityRepository(db),
		EntryTickets:    repository.NewEntryTicketRepository(db),
		Meals:           repository.NewMealRepository(db),
	}
}

// NewCatalogService creates a new catalog service. store may be nil when
// snapshots are not used.
func NewCatalogService(db *gorm.DB, repos CatalogRepositories, store storage.Storage, snapshotPrefix string, logger *zap.Logger) *CatalogService {
	if snapshotPrefix == "" {
		snapshotPrefix = "snapshots"
	}
	return &CatalogService{
		Transportations: &CatalogKind[domain.Transportation, domain.TransportationRequest, domain.TransportationDTO]{
			name: "transportation", repo: repos.Transportations, build: buildTransportation, toDTO: mapper.ToTransportationDTO, logger: logger,
		},
		Hotels: &CatalogKind[domain.Hotel, domain.HotelRequest, domain.HotelDTO]{
			name: "hotel", repo: repos.Hotels, build: buildHotel, toDTO: mapper.ToHotelDTO, logger: logger,
		},
		Sightseeings: &CatalogKind[domain.Sightseeing, domain.SightseeingRequest, domain.SightseeingDTO]{
			name: "sightseeing", repo: repos.Sightseeings, build: buildSightseeing, toDTO: mapper.ToSightseeingDTO, logger: logger,
		},
		Activities: &CatalogKind[domain.Activity, domain.ActivityRequest, domain.ActivityDTO]{
			name: "activity", repo: repos.Activities, build: buildActivity, toDTO: mapper.ToActivityDTO, logger: logger,
		},
		EntryTickets: &CatalogKind[domain.EntryTicket, domain.EntryTicketRequest, domain.EntryTicketDTO]{
			name: "entry ticket", repo: repos.EntryTickets, build: buildEntryTicket, toDTO: mapper.ToEntryTicketDTO, logger: logger,
		},
		Meals: &CatalogKind[domain.Meal, domain.MealRequest, domain.MealDTO]{
			name: "meal", repo: repos.Meals, build: buildMeal, toDTO: mapper.ToMealDTO, logger: logger,
		},
		db:             db,
		store:          store,
		snapshotPrefix: snapshotPrefix,
		logger:         logger,
		now:            time.Now,
	}
}

func buildTransportation(req *domain.TransportationRequest, existing *domain.Transportation) *domain.Transportation {
	t := existing
	if t == nil {
		t = &domain.Transportation{}
	}
	t.Type = req.Type
	t.Name = req.Name
	t.CostPerDay = req.CostPerDay
	if t.Type == domain.TransportCab {
		t.CostPerDay = 0
	}
	return t
}

func buildHotel(req *domain.HotelRequest, existing *domain.Hotel) *domain.Hotel {
	h := existing
	if h == nil {
		h = &domain.Hotel{}
	}
	h.Name = req.Name
	h.Place = req.Place
	h.StarCategory = req.StarCategory
	if h.StarCategory == 0 {
		h.StarCategory = 3
	}

	known := make(map[uuid.UUID]bool, len(h.RoomTypes))
	for _, r := range h.RoomTypes {
		known[r.ID] = true
	}
	rooms := make([]domain.RoomType, 0, len(req.RoomTypes))
	for i, r := range req.RoomTypes {
		room := domain.RoomType{
			HotelID:       h.ID,
			Name:          r.Name,
			SortOrder:     i,
			PeakRate:      r.PeakRate,
			SeasonRate:    r.SeasonRate,
			OffSeasonRate: r.OffSeasonRate,
		}
		if r.ID != nil && known[*r.ID] {
			room.ID = *r.ID
		}
		rooms = append(rooms, room)
	}
	h.RoomTypes = rooms
	return h
}

func buildSightseeing(req *domain.SightseeingRequest, existing *domain.Sightseeing) *domain.Sightseeing {
	s := existing
	if s == nil {
		s = &domain.Sightseeing{}
	}
	s.Name = req.Name
	s.Description = req.Description
	s.TransportationMode = req.TransportationMode
	s.VehicleCosts = datatypes.NewJSONType(req.VehicleCosts)
	return s
}

func buildActivity(req *domain.ActivityRequest, existing *domain.Activity) *domain.Activity {
	a := existing
	if a == nil {
		a = &domain.Activity{}
	}
	a.Name = req.Name
	a.Location = req.Location

	known := make(map[uuid.UUID]bool, len(a.Options))
	for _, o := range a.Options {
		known[o.ID] = true
	}
	options := make([]domain.ActivityOption, 0, len(req.Options))
	for i, o := range req.Options {
		opt := domain.ActivityOption{
			ActivityID:     a.ID,
			Name:           o.Name,
			SortOrder:      i,
			Cost:           o.Cost,
			CostForHowMany: o.CostForHowMany,
		}
		if opt.CostForHowMany < 1 {
			opt.CostForHowMany = 1
		}
		if o.ID != nil && known[*o.ID] {
			opt.ID = *o.ID
		}
		options = append(options, opt)
	}
	a.Options = options
	return a
}

func buildEntryTicket(req *domain.EntryTicketRequest, existing *domain.EntryTicket) *domain.EntryTicket {
	t := existing
	if t == nil {
		t = &domain.EntryTicket{}
	}
	t.Name = req.Name
	t.Cost = req.Cost
	t.SightseeingID = req.SightseeingID
	return t
}

func buildMeal(req *domain.MealRequest, existing *domain.Meal) *domain.Meal {
	m := existing
	if m == nil {
		m = &domain.Meal{}
	}
	m.Type = req.Type
	m.Place = req.Place
	m.Cost = req.Cost
	return m
}

// LoadData reads the whole catalog with nested rows
func (s *CatalogService) LoadData(ctx context.Context) (pricing.CatalogData, error) {
	var data pricing.CatalogData
	var err error
	if data.Transportations, err = s.Transportations.repo.All(ctx); err != nil {
		return data, fmt.Errorf("failed to load transportations: %w", err)
	}
	if data.Hotels, err = s.Hotels.repo.All(ctx); err != nil {
		return data, fmt.Errorf("failed to load hotels: %w", err)
	}
	if data.Sightseeings, err = s.Sightseeings.repo.All(ctx); err != nil {
		return data, fmt.Errorf("failed to load sightseeing: %w", err)
	}
	if data.Activities, err = s.Activities.repo.All(ctx); err != nil {
		return data, fmt.Errorf("failed to load activities: %w", err)
	}
	if data.EntryTickets, err = s.EntryTickets.repo.All(ctx); err != nil {
		return data, fmt.Errorf("failed to load entry tickets: %w", err)
	}
	if data.Meals, err = s.Meals.repo.All(ctx); err != nil {
		return data, fmt.Errorf("failed to load meals: %w", err)
	}
	return data, nil
}

// LoadIndex builds the pricing lookup from the current catalog
func (s *CatalogService) LoadIndex(ctx context.Context) (*pricing.Index, error) {
	data, err := s.LoadData(ctx)
	if err != nil {
		return nil, err
	}
	return pricing.NewIndex(data), nil
}

// BuildSnapshot returns the whole catalog as one document
func (s *CatalogService) BuildSnapshot(ctx context.Context) (*domain.CatalogSnapshot, error) {
	data, err := s.LoadData(ctx)
	if err != nil {
		return nil, err
	}
	snap := &domain.CatalogSnapshot{
		Version:         SnapshotFormatVersion,
		ExportedAt:      s.now().UTC().Format(time.RFC3339),
		Transportations: make([]domain.TransportationDTO, len(data.Transportations)),
		Hotels:          make([]domain.HotelDTO, len(data.Hotels)),
		Sightseeings:    make([]domain.SightseeingDTO, len(data.Sightseeings)),
		Activities:      make([]domain.ActivityDTO, len(data.Activities)),
		EntryTickets:    make([]domain.EntryTicketDTO, len(data.EntryTickets)),
		Meals:           make([]domain.MealDTO, len(data.Meals)),
	}
	for i := range data.Transportations {
		snap.Transportations[i] = mapper.ToTransportationDTO(&data.Transportations[i])
	}
	for i := range data.Hotels {
		snap.Hotels[i] = mapper.ToHotelDTO(&data.Hotels[i])
	}
	for i := range data.Sightseeings {
		snap.Sightseeings[i] = mapper.ToSightseeingDTO(&data.Sightseeings[i])
	}
	for i := range data.Activities {
		snap.Activities[i] = mapper.ToActivityDTO(&data.Activities[i])
	}
	for i := range data.EntryTickets {
		snap.EntryTickets[i] = mapper.ToEntryTicketDTO(&data.EntryTickets[i])
	}
	for i := range data.Meals {
		snap.Meals[i] = mapper.ToMealDTO(&data.Meals[i])
	}
	return snap, nil
}

// ExportSnapshot writes the catalog to storage under a timestamped key and
// refreshes the latest copy.
func (s *CatalogService) ExportSnapshot(ctx context.Context) (*domain.SnapshotResultDTO, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: snapshot storage is not configured", ErrInvalidInput)
	}
	snap, err := s.BuildSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}

	key := path.Join(s.snapshotPrefix, fmt.Sprintf("appdata-%s.json", s.now().UTC().Format("20060102-150405")))
	if _, err := s.store.Put(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	if _, err := s.store.Put(ctx, path.Join(s.snapshotPrefix, LatestSnapshotName), "application/json", bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store latest snapshot: %w", err)
	}

	s.logger.Info("catalog snapshot exported", zap.String("key", key), zap.Int("bytes", len(data)))
	result := snapshotResult(snap)
	result.Path = key
	return result, nil
}

// ListSnapshots returns stored snapshot keys in ascending order
func (s *CatalogService) ListSnapshots(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return []string{}, nil
	}
	keys, err := s.store.List(ctx, s.snapshotPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return keys, nil
}

// LoadSnapshot reads a stored snapshot. An empty key reads the latest one.
func (s *CatalogService) LoadSnapshot(ctx context.Context, key string) (*domain.CatalogSnapshot, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: snapshot storage is not configured", ErrInvalidInput)
	}
	if key == "" {
		key = path.Join(s.snapshotPrefix, LatestSnapshotName)
	}
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap domain.CatalogSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, invalid("snapshot is not valid JSON: %v", err)
	}
	return &snap, nil
}

// ImportSnapshot replaces the whole catalog with the snapshot contents in
// one transaction. IDs are preserved so existing day plans keep resolving.
func (s *CatalogService) ImportSnapshot(ctx context.Context, snap *domain.CatalogSnapshot) (*domain.SnapshotResultDTO, error) {
	if snap.Version > SnapshotFormatVersion {
		return nil, invalid("snapshot version %d is newer than supported version %d", snap.Version, SnapshotFormatVersion)
	}
	data := catalogFromSnapshot(snap)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Transportations.repo.WithTx(tx).ReplaceAll(ctx, data.Transportations); err != nil {
			return fmt.Errorf("transportations: %w", err)
		}
		if err := s.Hotels.repo.WithTx(tx).ReplaceAll(ctx, data.Hotels); err != nil {
			return fmt.Errorf("hotels: %w", err)
		}
		if err := s.Sightseeings.repo.WithTx(tx).ReplaceAll(ctx, data.Sightseeings); err != nil {
			return fmt.Errorf("sightseeing: %w", err)
		}
		if err := s.Activities.repo.WithTx(tx).ReplaceAll(ctx, data.Activities); err != nil {
			return fmt.Errorf("activities: %w", err)
		}
		if err := s.EntryTickets.repo.WithTx(tx).ReplaceAll(ctx, data.EntryTickets); err != nil {
			return fmt.Errorf("entry tickets: %w", err)
		}
		if err := s.Meals.repo.WithTx(tx).ReplaceAll(ctx, data.Meals); err != nil {
			return fmt.Errorf("meals: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import snapshot: %w", err)
	}

	result := snapshotResult(snap)
	s.logger.Info("catalog snapshot imported",
		zap.Int("hotels", result.Hotels),
		zap.Int("activities", result.Activities),
		zap.Int("meals", result.Meals),
	)
	return result, nil
}

func snapshotResult(snap *domain.CatalogSnapshot) *domain.SnapshotResultDTO {
	return &domain.SnapshotResultDTO{
		Transportations: len(snap.Transportations),
		Hotels:          len(snap.Hotels),
		Sightseeings:    len(snap.Sightseeings),
		Activities:      len(snap.Activities),
		EntryTickets:    len(snap.EntryTickets),
		Meals:           len(snap.Meals),
	}
}

func catalogFromSnapshot(snap *domain.CatalogSnapshot) pricing.CatalogData {
	var data pricing.CatalogData
	for _, t := range snap.Transportations {
		e := domain.Transportation{Type: t.Type, Name: t.Name, CostPerDay: t.CostPerDay}
		e.ID = t.ID
		data.Transportations = append(data.Transportations, e)
	}
	for _, h := range snap.Hotels {
		e := domain.Hotel{Name: h.Name, Place: h.Place, StarCategory: h.StarCategory}
		e.ID = h.ID
		for i, r := range h.RoomTypes {
			room := domain.RoomType{HotelID: h.ID, Name: r.Name, SortOrder: i, PeakRate: r.PeakRate, SeasonRate: r.SeasonRate, OffSeasonRate: r.OffSeasonRate}
			room.ID = r.ID
			e.RoomTypes = append(e.RoomTypes, room)
		}
		data.Hotels = append(data.Hotels, e)
	}
	for _, sg := range snap.Sightseeings {
		e := domain.Sightseeing{Name: sg.Name, Description: sg.Description, TransportationMode: sg.TransportationMode, VehicleCosts: datatypes.NewJSONType(sg.VehicleCosts)}
		e.ID = sg.ID
		data.Sightseeings = append(data.Sightseeings, e)
	}
	for _, a := range snap.Activities {
		e := domain.Activity{Name: a.Name, Location: a.Location}
		e.ID = a.ID
		for i, o := range a.Options {
			opt := domain.ActivityOption{ActivityID: a.ID, Name: o.Name, SortOrder: i, Cost: o.Cost, CostForHowMany: o.CostForHowMany}
			if opt.CostForHowMany < 1 {
				opt.CostForHowMany = 1
			}
			opt.ID = o.ID
			e.Options = append(e.Options, opt)
		}
		data.Activities = append(data.Activities, e)
	}
	for _, t := range snap.EntryTickets {
		e := domain.EntryTicket{Name: t.Name, Cost: t.Cost, SightseeingID: t.SightseeingID}
		e.ID = t.ID
		data.EntryTickets = append(data.EntryTickets, e)
	}
	for _, m := range snap.Meals {
		e := domain.Meal{Type: m.Type, Place: m.Place, Cost: m.Cost}
		e.ID = m.ID
		data.Meals = append(data.Meals, e)
	}
	return data
}
