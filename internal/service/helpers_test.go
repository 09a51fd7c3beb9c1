package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/config"
	"github.com/tripdesk/agency-api/internal/document"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/realtime"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/storage"
	"github.com/tripdesk/agency-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type services struct {
	db            *gorm.DB
	store         *storage.LocalStorage
	broker        *realtime.MemoryBroker
	catalog       *service.CatalogService
	clients       *service.ClientService
	itineraries   *service.ItineraryService
	fixed         *service.FixedItineraryService
	notifications *service.NotificationService
	followUps     *service.FollowUpService
	assignments   *service.AssignmentService
	chat          *service.ChatService
	seed          *testutil.Catalog
}

func newServices(t *testing.T) *services {
	t.Helper()
	logger := zap.NewNop()
	db := testutil.SetupTestDB(t)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	broker := realtime.NewMemoryBroker(0, logger)
	t.Cleanup(func() { _ = broker.Close() })

	repos := service.NewCatalogRepositories(db)
	catalog := service.NewCatalogService(db, repos, store, "snapshots", logger)
	clients := service.NewClientService(repository.NewClientRepository(db), repos.Transportations, logger)
	settings := service.NewPricingSettings(&config.PricingConfig{Currency: "usd", PeakMonths: []int{7, 8}})
	itineraries := service.NewItineraryService(
		repository.NewItineraryRepository(db),
		repository.NewItineraryDocumentRepository(db),
		clients,
		catalog,
		store,
		document.NewItineraryPDF("Test Travel", "https://trips.example.com"),
		settings,
		"documents",
		logger,
	)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), logger)
	userRepo := repository.NewUserRepository(db)
	salesClients := repository.NewSalesClientRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)

	return &services{
		db:            db,
		store:         store,
		broker:        broker,
		catalog:       catalog,
		clients:       clients,
		itineraries:   itineraries,
		fixed:         service.NewFixedItineraryService(repository.NewFixedItineraryRepository(db), itineraries, logger),
		notifications: notifications,
		followUps:     service.NewFollowUpService(salesClients, nil, logger),
		assignments:   service.NewAssignmentService(assignmentRepo, salesClients, userRepo, itineraries, catalog, notifications, logger),
		chat:          service.NewChatService(repository.NewChatRepository(db), assignmentRepo, broker, notifications, logger),
		seed:          testutil.SeedCatalog(t, db),
	}
}

// newCabClient creates a two-adult cab trip over the given number of days
func (s *services) newCabClient(t *testing.T, ctx context.Context, days int) *domain.ClientDTO {
	t.Helper()
	end := []string{"", "2025-03-01", "2025-03-02", "2025-03-03", "2025-03-04"}[days]
	client, err := s.clients.Create(ctx, &domain.ClientRequest{
		Name:               "Walker family",
		StartDate:          "2025-03-01",
		EndDate:            end,
		Adults:             2,
		TransportationMode: domain.TransportCab,
		TransportationID:   &s.seed.Cab.ID,
	})
	require.NoError(t, err)
	require.Equal(t, days, client.NumberOfDays)
	return client
}
