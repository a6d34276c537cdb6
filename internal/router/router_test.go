package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/auth"
	"github.com/arrendix/protecciones/internal/completion"
	"github.com/arrendix/protecciones/internal/config"
	"github.com/arrendix/protecciones/internal/database/dbtest"
	"github.com/arrendix/protecciones/internal/handler"
	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/pricing"
	"github.com/arrendix/protecciones/internal/repository"
	"github.com/arrendix/protecciones/internal/usecase"
	"github.com/arrendix/protecciones/internal/workflow"
)

var authCfg = config.AuthConfig{Secret: "router-secret", Issuer: "protecciones", Audience: "protecciones-api", TokenTTL: time.Hour}

type server struct {
	http.Handler
	policies *repository.PolicyRepository
	actors   *repository.ActorRepository
}

func newServer(t *testing.T) *server {
	db := dbtest.Open(t)
	log := zap.NewNop()

	policyRepo := repository.NewPolicyRepository(db)
	actorRepo := repository.NewActorRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	activities := activity.NewStore(db)
	gate := completion.NewGate(actorRepo)
	wf := workflow.NewService(policyRepo, policy.NewValidator(), gate, activities, log)

	h := Handlers{
		Policies: handler.NewPolicyHandler(
			usecase.NewPolicyUsecase(policyRepo, pricing.NewCalculator(config.PricingConfig{}), gate, activities, log), wf, log),
		Actors:   handler.NewActorHandler(usecase.NewActorUsecase(policyRepo, actorRepo, activities, log), log),
		Payments: handler.NewPaymentHandler(usecase.NewPaymentUsecase(policyRepo, paymentRepo, activities, log), log),
	}
	return &server{
		Handler:  SetupRoutes(h, auth.NewJWTVerifier(authCfg), nil, log),
		policies: policyRepo,
		actors:   actorRepo,
	}
}

func token(t *testing.T, role auth.Role) string {
	tok, err := auth.NewToken(authCfg, auth.User{ID: "user-" + string(role), Role: role}, time.Now())
	require.NoError(t, err)
	return tok
}

func (s *server) do(t *testing.T, method, path, bearer string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (s *server) seed(t *testing.T, status policy.Status, g policy.GuarantorType) *models.Policy {
	p := &models.Policy{Status: status, GuarantorType: g, TenantRequired: true, LandlordRequired: true}
	require.NoError(t, s.policies.Create(context.Background(), p))
	return p
}

func (s *server) completeActor(t *testing.T, p *models.Policy, at policy.ActorType) {
	a, _ := models.NewActor(at, p.ID)
	require.NoError(t, s.actors.Create(context.Background(), a))
	require.NoError(t, s.actors.MarkComplete(context.Background(), a, time.Now()))
}

func TestUpdateStatus_Approves(t *testing.T) {
	s := newServer(t)
	p := s.seed(t, policy.StatusPendingApproval, policy.GuarantorNone)
	s.completeActor(t, p, policy.ActorTenant)
	s.completeActor(t, p, policy.ActorLandlord)

	rec, body := s.do(t, http.MethodPut, fmt.Sprintf("/policies/%d/status", p.ID), token(t, auth.RoleStaff),
		map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["success"])

	pol := body["policy"].(map[string]interface{})
	assert.Equal(t, "APPROVED", pol["status"])
	assert.NotNil(t, pol["approvedAt"])

	act := body["activity"].(map[string]interface{})
	assert.Equal(t, "approved", act["action"])
	details := act["details"].(map[string]interface{})
	assert.Equal(t, "PENDING_APPROVAL", details["previousStatus"])
	assert.Equal(t, "user-STAFF", act["performedById"])
}

func TestUpdateStatus_IncompleteActors(t *testing.T) {
	s := newServer(t)
	p := s.seed(t, policy.StatusPendingApproval, policy.GuarantorBoth)
	s.completeActor(t, p, policy.ActorTenant)
	s.completeActor(t, p, policy.ActorLandlord)
	s.completeActor(t, p, policy.ActorJointObligor)
	aval, _ := models.NewActor(policy.ActorAval, p.ID)
	require.NoError(t, s.actors.Create(context.Background(), aval))

	rec, body := s.do(t, http.MethodPut, fmt.Sprintf("/policies/%d/status", p.ID), token(t, auth.RoleAdmin),
		map[string]string{"status": "APPROVED"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "INCOMPLETE_ACTORS", body["code"])
	details := body["details"].(map[string]interface{})
	assert.Equal(t, []interface{}{"aval"}, details["missingActors"])
}

func TestUpdateStatus_Errors(t *testing.T) {
	s := newServer(t)
	p := s.seed(t, policy.StatusUnderInvestigation, policy.GuarantorNone)
	path := fmt.Sprintf("/policies/%d/status", p.ID)

	tests := []struct {
		name   string
		path   string
		bearer string
		body   interface{}
		status int
		code   string
	}{
		{"unauthenticated", path, "", map[string]string{"status": "PENDING_APPROVAL"}, http.StatusUnauthorized, ""},
		{"unknown policy", "/policies/9999/status", token(t, auth.RoleStaff), map[string]string{"status": "PENDING_APPROVAL"}, http.StatusNotFound, ""},
		{"unknown status", path, token(t, auth.RoleStaff), map[string]string{"status": "ARCHIVED"}, http.StatusBadRequest, "INVALID_STATUS"},
		{"missing status", path, token(t, auth.RoleStaff), map[string]string{}, http.StatusBadRequest, "INVALID_STATUS"},
		{"rejection without reason", path, token(t, auth.RoleStaff), map[string]string{"status": "INVESTIGATION_REJECTED"}, http.StatusBadRequest, "MISSING_REASON"},
		{"backwards", path, token(t, auth.RoleStaff), map[string]string{"status": "DRAFT"}, http.StatusBadRequest, "INVALID_TRANSITION"},
		{"broker cannot reject", path, token(t, auth.RoleBroker), map[string]string{"status": "INVESTIGATION_REJECTED", "reason": "x"}, http.StatusForbidden, ""},
		{"broker approval checked before lookup", "/policies/9999/status", token(t, auth.RoleBroker), map[string]string{"status": "APPROVED"}, http.StatusForbidden, ""},
		{"bad body", path, token(t, auth.RoleStaff), "not json", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := s.do(t, http.MethodPut, tt.path, tt.bearer, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.code != "" {
				assert.Equal(t, tt.code, body["code"])
			}
		})
	}

	stored, err := s.policies.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, policy.StatusUnderInvestigation, stored.Status)
}

func TestUpdateStatus_BrokerForwardMove(t *testing.T) {
	s := newServer(t)
	p := s.seed(t, policy.StatusDraft, policy.GuarantorNone)

	rec, body := s.do(t, http.MethodPut, fmt.Sprintf("/policies/%d/status", p.ID), token(t, auth.RoleBroker),
		map[string]string{"status": "collecting_info"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "COLLECTING_INFO", body["policy"].(map[string]interface{})["status"])

	rec, body = s.do(t, http.MethodPut, fmt.Sprintf("/policies/%d/status", p.ID), token(t, auth.RoleBroker),
		map[string]string{"status": "COLLECTING_INFO"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["noOp"])
	assert.Nil(t, body["activity"])
}

func TestPolicyLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)
	broker := token(t, auth.RoleBroker)

	rec, body := s.do(t, http.MethodPost, "/policies", broker, map[string]interface{}{
		"propertyAddress": "Av. Juárez 10, CDMX",
		"rentAmount":      "12000",
		"guarantorType":   "NONE",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	pol := body["policy"].(map[string]interface{})
	id := uint(pol["id"].(float64))
	assert.Equal(t, "DRAFT", pol["status"])
	assert.Equal(t, "5568", pol["totalPrice"])

	rec, body = s.do(t, http.MethodPost, fmt.Sprintf("/policies/%d/actors/tenant", id), broker, map[string]interface{}{
		"fullName": "Ana", "email": "ana@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, body["accessToken"])
	actorID := uint(body["actor"].(map[string]interface{})["id"].(float64))

	rec, body = s.do(t, http.MethodPut, fmt.Sprintf("/policies/%d/actors/tenant/%d/complete", id, actorID), broker, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INCOMPLETE_ACTOR_DATA", body["code"])

	rec, body = s.do(t, http.MethodGet, fmt.Sprintf("/policies/%d/completion", id), broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["satisfied"])

	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/policies/%d/payments", id), broker, map[string]string{"status": "COMPLETED"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	staff := token(t, auth.RoleStaff)
	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/policies/%d/payments", id), staff, map[string]string{"status": "COMPLETED"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = s.do(t, http.MethodPost, fmt.Sprintf("/policies/%d/payments", id), staff, map[string]string{"status": "COMPLETED"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, body = s.do(t, http.MethodGet, fmt.Sprintf("/policies/%d/payments", id), broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["payments"], 1)
	completed, ok := body["completed"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	assert.Equal(t, "COMPLETED", completed["status"])

	rec, body = s.do(t, http.MethodGet, fmt.Sprintf("/policies/%d/activities", id), broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := body["activities"].([]interface{})
	require.Len(t, list, 3)
	assert.Equal(t, "payment_completed", list[0].(map[string]interface{})["action"])
	assert.Equal(t, "created", list[2].(map[string]interface{})["action"])

	rec, body = s.do(t, http.MethodGet, "/policies?status=DRAFT", broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["policies"], 1)

	rec, _ = s.do(t, http.MethodGet, "/policies?status=CONTRACT_SIGNED", broker, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = s.do(t, http.MethodGet, "/statuses", broker, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["statuses"], len(policy.Statuses()))
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec, _ := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
