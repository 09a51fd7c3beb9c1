package pricing

import (
	"github.com/google/uuid"
	"github.com/tripdesk/agency-api/internal/domain"
)

// Catalog is the lookup side of the catalog store used while pricing.
// Every lookup reports whether the reference exists.
type Catalog interface {
	Transportation(id uuid.UUID) (domain.Transportation, bool)
	RoomType(hotelID, roomTypeID uuid.UUID) (domain.RoomType, bool)
	Sightseeing(id uuid.UUID) (domain.Sightseeing, bool)
	ActivityOption(activityID, optionID uuid.UUID) (domain.ActivityOption, bool)
	EntryTicket(id uuid.UUID) (domain.EntryTicket, bool)
	Meal(id uuid.UUID) (domain.Meal, bool)
}

type roomKey struct {
	hotel uuid.UUID
	room  uuid.UUID
}

type optionKey struct {
	activity uuid.UUID
	option   uuid.UUID
}

// Index is an in-memory Catalog built from loaded catalog rows
type Index struct {
	transportations map[uuid.UUID]domain.Transportation
	rooms           map[roomKey]domain.RoomType
	sightseeings    map[uuid.UUID]domain.Sightseeing
	options         map[optionKey]domain.ActivityOption
	tickets         map[uuid.UUID]domain.EntryTicket
	meals           map[uuid.UUID]domain.Meal
}

// CatalogData is the full set of rows an Index is built from
type CatalogData struct {
	Transportations []domain.Transportation
	Hotels          []domain.Hotel
	Sightseeings    []domain.Sightseeing
	Activities      []domain.Activity
	EntryTickets    []domain.EntryTicket
	Meals           []domain.Meal
}

// NewIndex builds an Index. Hotels and activities must have their room
// types and options loaded.
func NewIndex(data CatalogData) *Index {
	idx := &Index{
		transportations: make(map[uuid.UUID]domain.Transportation, len(data.Transportations)),
		rooms:           make(map[roomKey]domain.RoomType),
		sightseeings:    make(map[uuid.UUID]domain.Sightseeing, len(data.Sightseeings)),
		options:         make(map[optionKey]domain.ActivityOption),
		tickets:         make(map[uuid.UUID]domain.EntryTicket, len(data.EntryTickets)),
		meals:           make(map[uuid.UUID]domain.Meal, len(data.Meals)),
	}
	for _, t := range data.Transportations {
		idx.transportations[t.ID] = t
	}
	for _, h := range data.Hotels {
		for _, r := range h.RoomTypes {
			idx.rooms[roomKey{hotel: h.ID, room: r.ID}] = r
		}
	}
	for _, s := range data.Sightseeings {
		idx.sightseeings[s.ID] = s
	}
	for _, a := range data.Activities {
		for _, o := range a.Options {
			idx.options[optionKey{activity: a.ID, option: o.ID}] = o
		}
	}
	for _, t := range data.EntryTickets {
		idx.tickets[t.ID] = t
	}
	for _, m := range data.Meals {
		idx.meals[m.ID] = m
	}
	return idx
}

func (i *Index) Transportation(id uuid.UUID) (domain.Transportation, bool) {
	t, ok := i.transportations[id]
	return t, ok
}

func (i *Index) RoomType(hotelID, roomTypeID uuid.UUID) (domain.RoomType, bool) {
	r, ok := i.rooms[roomKey{hotel: hotelID, room: roomTypeID}]
	return r, ok
}

func (i *Index) Sightseeing(id uuid.UUID) (domain.Sightseeing, bool) {
	s, ok := i.sightseeings[id]
	return s, ok
}

func (i *Index) ActivityOption(activityID, optionID uuid.UUID) (domain.ActivityOption, bool) {
	o, ok := i.options[optionKey{activity: activityID, option: optionID}]
	return o, ok
}

func (i *Index) EntryTicket(id uuid.UUID) (domain.EntryTicket, bool) {
	t, ok := i.tickets[id]
	return t, ok
}

func (i *Index) Meal(id uuid.UUID) (domain.Meal, bool) {
	m, ok := i.meals[id]
	return m, ok
}
