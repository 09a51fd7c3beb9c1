package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"github.com/tripdesk/agency-api/internal/realtime"
	"github.com/tripdesk/agency-api/internal/service"
)

func TestClientHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)
	agent := api.user(t, domain.RoleAgent, "Agent")
	other := api.user(t, domain.RoleAgent, "Other agent")

	t.Run("validation errors use json field names", func(t *testing.T) {
		rr := api.do(t, agent, http.MethodPost, "/clients", domain.ClientRequest{
			Email:              "not-an-email",
			Adults:             0,
			TransportationMode: "boat",
		})
		require.Equal(t, http.StatusBadRequest, rr.Code)
		problem := decode[domain.APIError](t, rr)
		assert.Equal(t, domain.ErrorTypeValidation, problem.Type)
		assert.Contains(t, problem.Errors, "name")
		assert.Contains(t, problem.Errors, "email")
		assert.Contains(t, problem.Errors, "adults")
		assert.Contains(t, problem.Errors, "transportationMode")
	})

	t.Run("end before start is rejected by the service", func(t *testing.T) {
		rr := api.do(t, agent, http.MethodPost, "/clients", domain.ClientRequest{
			Name:               "Backwards",
			StartDate:          "2025-03-05",
			EndDate:            "2025-03-01",
			Adults:             1,
			TransportationMode: domain.TransportCab,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	client := api.createCabClient(t, agent)
	assert.Equal(t, 2, client.NumberOfDays)

	rr := api.do(t, agent, http.MethodGet, "/clients/"+client.ID.String(), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = api.do(t, other, http.MethodGet, "/clients/"+client.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, agent, http.MethodGet, "/clients/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, agent, http.MethodGet, "/clients?search=walker", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[domain.PaginatedResponse](t, rr)
	assert.Equal(t, int64(1), page.Total)

	rr = api.do(t, agent, http.MethodDelete, "/clients/"+client.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = api.do(t, nil, http.MethodGet, "/clients", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestItineraryHandler_QuoteAndDocument(t *testing.T) {
	api := newTestAPI(t)
	agent := api.user(t, domain.RoleAgent, "Agent")
	client := api.createCabClient(t, agent)

	rr := api.do(t, agent, http.MethodPost, "/itineraries", domain.CreateItineraryRequest{
		ClientID:     client.ID,
		DayPlans:     []domain.DayPlan{api.seed.DayPlan(1), api.seed.DayPlan(2)},
		Season:       domain.SeasonRegular,
		ProfitMargin: 100,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	it := decode[domain.ItineraryDTO](t, rr)
	assert.Equal(t, 1, it.Version)

	rr = api.do(t, agent, http.MethodGet, "/itineraries/"+it.ID.String()+"/quote", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	quote := decode[domain.QuoteDTO](t, rr)
	assert.Equal(t, it.FinalPrice, quote.FinalPrice)
	assert.Equal(t, "USD", quote.Currency)

	rr = api.do(t, agent, http.MethodGet, "/itineraries?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, agent, http.MethodGet, "/itineraries?clientId="+client.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(1), decode[domain.PaginatedResponse](t, rr).Total)

	rr = api.do(t, agent, http.MethodPost, "/itineraries/"+it.ID.String()+"/documents", nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	doc := decode[domain.ItineraryDocumentDTO](t, rr)
	assert.Equal(t, 1, doc.Version)

	rr = api.do(t, agent, http.MethodGet, "/itineraries/"+it.ID.String()+"/documents/"+doc.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), doc.FileName)
	assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))

	rr = api.do(t, agent, http.MethodGet, "/itineraries/"+it.ID.String()+"/documents/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestFollowUpHandler_StatusFlow(t *testing.T) {
	api := newTestAPI(t)
	sales := api.user(t, domain.RoleSales, "Sales")

	rr := api.do(t, sales, http.MethodPost, "/follow-ups", domain.SalesClientRequest{
		Name:             "Ana Souza",
		Destination:      "Ubud",
		Adults:           2,
		NextFollowUpDate: "2025-03-01",
		NextFollowUpTime: "10:30",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	lead := decode[domain.SalesClientDTO](t, rr)

	rr = api.do(t, sales, http.MethodPut, "/follow-ups/"+lead.ID.String()+"/status", map[string]string{
		"status":           "follow-up-1",
		"nextFollowUpTime": "25:99",
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, sales, http.MethodGet, "/follow-ups/statuses", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	statuses := decode[[]domain.FollowUpStatusDTO](t, rr)
	require.NotEmpty(t, statuses)

	rr = api.do(t, sales, http.MethodPut, "/follow-ups/"+lead.ID.String()+"/status", domain.UpdateFollowUpStatusRequest{
		Status: statuses[len(statuses)-1].Value,
		Notes:  "closed",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, sales, http.MethodGet, "/follow-ups/"+lead.ID.String()+"/history", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[[]domain.FollowUpHistoryDTO](t, rr)
	assert.NotEmpty(t, history)

	rr = api.do(t, sales, http.MethodGet, "/follow-ups?status=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

type assignmentFixture struct {
	sales *domain.User
	ops   *domain.User
	a     domain.AssignmentDTO
}

func newAssignment(t *testing.T, api *testAPI) assignmentFixture {
	t.Helper()
	sales := api.user(t, domain.RoleSales, "Sales")
	ops := api.user(t, domain.RoleOperations, "Ops")

	rr := api.do(t, sales, http.MethodPost, "/follow-ups", domain.SalesClientRequest{Name: "Ana Souza", Adults: 2})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	lead := decode[domain.SalesClientDTO](t, rr)

	rr = api.do(t, sales, http.MethodPost, "/assignments", domain.CreateAssignmentRequest{
		SalesClientID:      lead.ID,
		OperationsPersonID: ops.ID,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return assignmentFixture{sales: sales, ops: ops, a: decode[domain.AssignmentDTO](t, rr)}
}

func TestAssignmentHandler_Checklist(t *testing.T) {
	api := newTestAPI(t)
	f := newAssignment(t, api)
	base := "/assignments/" + f.a.ID.String()

	rr := api.do(t, f.ops, http.MethodPost, base+"/items", domain.AddChecklistItemRequest{
		ItemType:    "hotel",
		DayNumber:   1,
		Description: "Book Ubud villa",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	item := decode[domain.ChecklistItemDTO](t, rr)

	rr = api.do(t, f.ops, http.MethodPost, base+"/items/"+item.ID.String()+"/toggle", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = api.do(t, f.ops, http.MethodGet, base+"/completion", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	completion := decode[domain.CompletionDTO](t, rr)
	assert.Equal(t, 1, completion.Total)
	assert.Equal(t, 100, completion.Percent)

	outsider := api.user(t, domain.RoleOperations, "Outsider")
	rr = api.do(t, outsider, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, f.sales, http.MethodPost, "/assignments", domain.CreateAssignmentRequest{
		SalesClientID:      uuid.New(),
		OperationsPersonID: f.sales.ID,
	})
	assert.Contains(t, []int{http.StatusBadRequest, http.StatusNotFound}, rr.Code)
}

func TestChatHandler_SendAndStream(t *testing.T) {
	api := newTestAPI(t)
	f := newAssignment(t, api)
	base := "/assignments/" + f.a.ID.String() + "/chat"

	srv := httptest.NewServer(api.handler)
	defer srv.Close()

	header := http.Header{}
	header.Set(testUserHeader, f.ops.ID.String())
	conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+base+"/stream", header)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	rr := api.do(t, f.sales, http.MethodPost, base, domain.SendChatMessageRequest{Message: "Client wants an ocean view"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sent := decode[domain.ChatMessageDTO](t, rr)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var event realtime.Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, service.ChatEventMessage, event.Type)
	var payload domain.ChatMessageDTO
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, sent.ID, payload.ID)

	rr = api.do(t, f.ops, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]domain.ChatMessageDTO](t, rr), 1)

	// The counterpart got an in-app notification
	rr = api.do(t, f.ops, http.MethodGet, "/notifications/count", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.GreaterOrEqual(t, decode[domain.UnreadCountDTO](t, rr).Count, 1)

	outsider := api.user(t, domain.RoleOperations, "Outsider")
	rr = api.do(t, outsider, http.MethodPost, base, domain.SendChatMessageRequest{Message: "hi"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	// Access errors are answered before the upgrade
	header.Set(testUserHeader, outsider.ID.String())
	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+base+"/stream", header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuditHandler_Filters(t *testing.T) {
	api := newTestAPI(t)
	admin := api.user(t, domain.RoleAdmin, "Admin")

	rr := api.do(t, admin, http.MethodGet, "/audit?action=explode", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, admin, http.MethodGet, "/audit?startTime=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do(t, admin, http.MethodGet, "/audit?action=create&entityType=client", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int64(0), decode[domain.PaginatedResponse](t, rr).Total)
}

func TestCatalogHandler_CRUDAndSnapshot(t *testing.T) {
	api := newTestAPI(t)
	admin := api.user(t, domain.RoleAdmin, "Admin")

	rr := api.do(t, admin, http.MethodGet, "/catalog/meals", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	before := decode[domain.PaginatedResponse](t, rr).Total

	rr = api.do(t, admin, http.MethodPost, "/catalog/meals", map[string]interface{}{
		"type":  "dinner",
		"place": "Jimbaran seafood",
		"cost":  25,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	meal := decode[domain.MealDTO](t, rr)

	rr = api.do(t, admin, http.MethodGet, "/catalog/meals", nil)
	assert.Equal(t, before+1, decode[domain.PaginatedResponse](t, rr).Total)

	rr = api.do(t, admin, http.MethodDelete, "/catalog/meals/"+meal.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = api.do(t, admin, http.MethodGet, "/catalog/meals/"+meal.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do(t, admin, http.MethodGet, "/catalog/snapshot", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "appdata-")
	snap := decode[domain.CatalogSnapshot](t, rr)
	assert.Equal(t, service.SnapshotFormatVersion, snap.Version)
}
