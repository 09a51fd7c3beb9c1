package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/auth"
	"github.com/tripdesk/agency-api/internal/config"
	"github.com/tripdesk/agency-api/internal/document"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/http/handler"
	"github.com/tripdesk/agency-api/internal/realtime"
	"github.com/tripdesk/agency-api/internal/repository"
	"github.com/tripdesk/agency-api/internal/service"
	"github.com/tripdesk/agency-api/internal/storage"
	"github.com/tripdesk/agency-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testUserHeader = "X-Test-User"

// testAPI mounts the handlers on a bare chi router. Requests pick their
// user with the X-Test-User header.
type testAPI struct {
	db      *gorm.DB
	seed    *testutil.Catalog
	users   map[uuid.UUID]*domain.User
	handler http.Handler

	followUps   *service.FollowUpService
	assignments *service.AssignmentService
}

func newTestAPI(t *testing.T) *testAPI {
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
	itineraries := service.NewItineraryService(
		repository.NewItineraryRepository(db),
		repository.NewItineraryDocumentRepository(db),
		clients,
		catalog,
		store,
		document.NewItineraryPDF("Test Travel", "https://trips.example.com"),
		service.NewPricingSettings(&config.PricingConfig{Currency: "usd"}),
		"documents",
		logger,
	)
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), logger)
	salesClients := repository.NewSalesClientRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	followUps := service.NewFollowUpService(salesClients, nil, logger)
	assignments := service.NewAssignmentService(assignmentRepo, salesClients, repository.NewUserRepository(db), itineraries, catalog, notifications, logger)
	chat := service.NewChatService(repository.NewChatRepository(db), assignmentRepo, broker, notifications, logger)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db), logger)

	api := &testAPI{
		db:          db,
		seed:        testutil.SeedCatalog(t, db),
		users:       map[uuid.UUID]*domain.User{},
		followUps:   followUps,
		assignments: assignments,
	}

	clientH := handler.NewClientHandler(clients, logger)
	itineraryH := handler.NewItineraryHandler(itineraries, logger)
	followUpH := handler.NewFollowUpHandler(followUps, logger)
	assignmentH := handler.NewAssignmentHandler(assignments, logger)
	chatH := handler.NewChatHandler(chat, []string{"*"}, logger)
	notificationH := handler.NewNotificationHandler(notifications, logger)
	auditH := handler.NewAuditHandler(audit, logger)
	snapshotH := handler.NewSnapshotHandler(catalog, logger)

	r := chi.NewRouter()
	r.Use(api.authenticate)
	r.Route("/catalog", func(r chi.Router) {
		for _, m := range handler.NewCatalogMounts(catalog, logger) {
			r.Route(m.Path, func(r chi.Router) { m.Handler.Mount(r, r) })
		}
		r.Get("/snapshot", snapshotH.Download)
	})
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", clientH.List)
		r.Post("/", clientH.Create)
		r.Get("/{id}", clientH.GetByID)
		r.Put("/{id}", clientH.Update)
		r.Delete("/{id}", clientH.Delete)
	})
	r.Route("/itineraries", func(r chi.Router) {
		r.Get("/", itineraryH.List)
		r.Post("/", itineraryH.Create)
		r.Get("/{id}", itineraryH.GetByID)
		r.Put("/{id}/status", itineraryH.UpdateStatus)
		r.Get("/{id}/quote", itineraryH.Quote)
		r.Post("/{id}/documents", itineraryH.GenerateDocument)
		r.Get("/{id}/documents/{documentId}", itineraryH.DownloadDocument)
	})
	r.Route("/follow-ups", func(r chi.Router) {
		r.Get("/", followUpH.List)
		r.Post("/", followUpH.Create)
		r.Get("/statuses", followUpH.Statuses)
		r.Put("/{id}/status", followUpH.UpdateStatus)
		r.Get("/{id}/history", followUpH.History)
	})
	r.Route("/assignments", func(r chi.Router) {
		r.Post("/", assignmentH.Create)
		r.Get("/{id}", assignmentH.GetByID)
		r.Post("/{id}/items", assignmentH.AddItem)
		r.Post("/{id}/items/{itemId}/toggle", assignmentH.ToggleItem)
		r.Get("/{id}/completion", assignmentH.Completion)
		r.Get("/{id}/chat", chatH.List)
		r.Post("/{id}/chat", chatH.Send)
		r.Get("/{id}/chat/stream", chatH.Stream)
	})
	r.Get("/notifications", notificationH.List)
	r.Get("/notifications/count", notificationH.GetUnreadCount)
	r.Get("/audit", auditH.List)

	api.handler = r
	return api
}

func (a *testAPI) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, err := uuid.Parse(r.Header.Get(testUserHeader)); err == nil {
			if user, ok := a.users[id]; ok {
				r = r.WithContext(auth.WithUserContext(r.Context(), &auth.UserContext{
					UserID:      user.ID,
					DisplayName: user.DisplayName,
					Email:       user.Email,
					Role:        user.Role,
				}))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *testAPI) user(t *testing.T, role domain.UserRoleType, name string) *domain.User {
	t.Helper()
	u := testutil.CreateTestUser(t, a.db, role, name)
	a.users[u.ID] = u
	return u
}

func (a *testAPI) do(t *testing.T, user *domain.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set(testUserHeader, user.ID.String())
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (a *testAPI) createCabClient(t *testing.T, user *domain.User) domain.ClientDTO {
	t.Helper()
	rr := a.do(t, user, http.MethodPost, "/clients", domain.ClientRequest{
		Name:               "Walker family",
		StartDate:          "2025-03-01",
		EndDate:            "2025-03-02",
		Adults:             2,
		TransportationMode: domain.TransportCab,
		TransportationID:   &a.seed.Cab.ID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[domain.ClientDTO](t, rr)
}
