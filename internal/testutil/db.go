// Package testutil provides database fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/database"
	"github.com/tripdesk/agency-api/internal/domain"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database with the full schema.
// Every call gets its own database so tests can run in parallel.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "failed to open sqlite test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// CreateTestUser inserts an active user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, role domain.UserRoleType, name string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)

	user := &domain.User{
		Email:        fmt.Sprintf("%s-%s@example.com", role, uuid.NewString()[:8]),
		PasswordHash: hash,
		DisplayName:  name,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// ContextFor returns a context authenticated as user
func ContextFor(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Role:        user.Role,
	})
}

// Catalog is a small seeded catalog
type Catalog struct {
	Cab         *domain.Transportation
	Car         *domain.Transportation
	Hotel       *domain.Hotel
	Sightseeing *domain.Sightseeing
	Activity    *domain.Activity
	Ticket      *domain.EntryTicket
	Meal        *domain.Meal
}

// SeedCatalog inserts one entry of every catalog kind
func SeedCatalog(t *testing.T, db *gorm.DB) *Catalog {
	t.Helper()
	c := &Catalog{
		Cab: &domain.Transportation{Type: domain.TransportCab, Name: "Private Cab"},
		Car: &domain.Transportation{Type: domain.TransportSelfDriveCar, Name: "Rental Car", CostPerDay: 30},
		Hotel: &domain.Hotel{
			Name: "Ocean View", Place: "Kuta", StarCategory: 4,
			RoomTypes: []domain.RoomType{
				{Name: "Deluxe", SortOrder: 0, PeakRate: 150, SeasonRate: 100, OffSeasonRate: 80},
			},
		},
		Sightseeing: &domain.Sightseeing{
			Name:               "Temple Tour",
			TransportationMode: domain.TransportCab,
			VehicleCosts:       datatypes.NewJSONType(domain.VehicleCosts{Avanza: 40, Hiace: 70, MiniBus: 110, Bus32: 160, Bus39: 200}),
		},
		Activity: &domain.Activity{
			Name: "Rafting", Location: "Ubud",
			Options: []domain.ActivityOption{{Name: "Couple", Cost: 90, CostForHowMany: 2}},
		},
		Ticket: &domain.EntryTicket{Name: "Temple Entry", Cost: 10},
		Meal:   &domain.Meal{Type: domain.MealLunch, Place: "Warung", Cost: 12},
	}
	for _, v := range []interface{}{c.Cab, c.Car, c.Hotel, c.Sightseeing, c.Activity, c.Ticket, c.Meal} {
		require.NoError(t, db.Create(v).Error)
	}
	return c
}

// DayPlan selects every seeded entry for one day
func (c *Catalog) DayPlan(day int) domain.DayPlan {
	return domain.DayPlan{
		Day:            day,
		Hotel:          &domain.HotelSelection{HotelID: c.Hotel.ID, RoomTypeID: c.Hotel.RoomTypes[0].ID},
		SightseeingIDs: []uuid.UUID{c.Sightseeing.ID},
		Activities:     []domain.ActivitySelection{{ActivityID: c.Activity.ID, OptionID: c.Activity.Options[0].ID}},
		TicketIDs:      []uuid.UUID{c.Ticket.ID},
		MealIDs:        []uuid.UUID{c.Meal.ID},
	}
}
