package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ohadbarr1/dobby/internal/messaging"
	"github.com/ohadbarr1/dobby/internal/models"
	"github.com/ohadbarr1/dobby/internal/store"
	"github.com/ohadbarr1/dobby/internal/twiliowhatsapp"
)

const testToken = "test-token"

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st, err := store.NewSQLiteStore(store.WithSQLiteDSN(filepath.Join(t.TempDir(), "api-test.db")))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewServer(st, WithToken(testToken)), st
}

func doRequest(t *testing.T, s *Server, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, w.Body.String())
	}
	return resp
}

func TestHealthNoAuth(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(t, s, http.MethodGet, "/health", nil, false)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d", w.Code)
	}
}

func TestAuthRequired(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/families", nil, false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/families", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 with wrong token, got %d", rec.Code)
	}
}

func TestNoTokenConfiguredRejectsAll(t *testing.T) {
	st, err := store.NewSQLiteStore(store.WithSQLiteDSN(filepath.Join(t.TempDir(), "api-test.db")))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer st.Close()

	s := NewServer(st) // no token
	req := httptest.NewRequest(http.MethodGet, "/families", nil)
	req.Header.Set("Authorization", "Bearer anything")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without configured token, got %d", w.Code)
	}
}

func TestCreateAndListFamilies(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/families",
		map[string]any{"name": "כהן", "chat_id": "123@g.us"}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d (%s)", w.Code, w.Body.String())
	}

	// Duplicate chat_id conflicts.
	w = doRequest(t, s, http.MethodPost, "/families",
		map[string]any{"name": "אחר", "chat_id": "123@g.us"}, true)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/families", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	resp := decodeResponse(t, w)
	families, ok := resp.Result.([]any)
	if !ok || len(families) != 1 {
		t.Errorf("expected 1 family, got %v", resp.Result)
	}
}

func TestCreateFamilyValidation(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/families", map[string]any{"name": "כהן"}, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing chat_id should be 400, got %d", w.Code)
	}
}

func TestUpdateFamily(t *testing.T) {
	s, st := newTestServer(t)
	fam := &models.Family{Name: "כהן", ChatID: "123@g.us"}
	if err := st.CreateFamily(fam); err != nil {
		t.Fatalf("seed family: %v", err)
	}

	w := doRequest(t, s, http.MethodPatch, "/families/1",
		map[string]any{"briefing_hour": 7, "briefing_minute": 30, "ai_mode": true}, true)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d (%s)", w.Code, w.Body.String())
	}

	got, _ := st.FamilyByID(fam.ID)
	if got.BriefingHour != 7 || got.BriefingMinute != 30 || !got.AIMode {
		t.Errorf("update not persisted: %+v", got)
	}

	w = doRequest(t, s, http.MethodPatch, "/families/1",
		map[string]any{"timezone": "Not/AZone"}, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad timezone should be 400, got %d", w.Code)
	}

	w = doRequest(t, s, http.MethodPatch, "/families/99", map[string]any{}, true)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing family should be 404, got %d", w.Code)
	}
}

func TestMemberLifecycle(t *testing.T) {
	s, st := newTestServer(t)
	fam := &models.Family{Name: "כהן", ChatID: "123@g.us"}
	if err := st.CreateFamily(fam); err != nil {
		t.Fatalf("seed family: %v", err)
	}

	w := doRequest(t, s, http.MethodPost, "/families/1/members",
		map[string]any{"name": "Ohad", "phone": "972501111111", "role": "admin"}, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("add member status = %d (%s)", w.Code, w.Body.String())
	}

	// Duplicate phone conflicts.
	w = doRequest(t, s, http.MethodPost, "/families/1/members",
		map[string]any{"name": "Again", "phone": "972501111111"}, true)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate member status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodGet, "/families/1/members", nil, true)
	resp := decodeResponse(t, w)
	members, ok := resp.Result.([]any)
	if !ok || len(members) != 1 {
		t.Fatalf("expected 1 member, got %v", resp.Result)
	}

	w = doRequest(t, s, http.MethodDelete, "/families/1/members/1", nil, true)
	if w.Code != http.StatusOK {
		t.Fatalf("delete member status = %d", w.Code)
	}

	w = doRequest(t, s, http.MethodDelete, "/families/1/members/1", nil, true)
	if w.Code != http.StatusNotFound {
		t.Errorf("deleting a deleted member should be 404, got %d", w.Code)
	}
}

func TestAddMemberValidation(t *testing.T) {
	s, st := newTestServer(t)
	if err := st.CreateFamily(&models.Family{Name: "כהן", ChatID: "123@g.us"}); err != nil {
		t.Fatalf("seed family: %v", err)
	}

	w := doRequest(t, s, http.MethodPost, "/families/1/members",
		map[string]any{"name": "X", "phone": "972501111111", "role": "superuser"}, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad role should be 400, got %d", w.Code)
	}
}

func TestTwilioWebhookMountedWithoutAuth(t *testing.T) {
	st, err := store.NewSQLiteStore(store.WithSQLiteDSN(filepath.Join(t.TempDir(), "api-test.db")))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer st.Close()

	tw := messaging.NewTwilioService(twiliowhatsapp.NewMockClient())
	s := NewServer(st, WithToken(testToken),
		WithWebhook("POST /webhook/twilio", tw.TwilioWebhookHandler))

	form := url.Values{}
	form.Set("From", "+972501234567")
	form.Set("Body", "7")
	form.Set("MessageSid", "SM123")

	req := httptest.NewRequest(http.MethodPost, "/webhook/twilio", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// No Authorization header: the provider cannot present the admin token.
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("webhook status = %d (%s)", w.Code, w.Body.String())
	}

	select {
	case resp := <-tw.Responses():
		if resp.Body != "7" || resp.MessageID != "SM123" {
			t.Errorf("unexpected response: %+v", resp)
		}
	default:
		t.Error("inbound webhook message never reached the responses channel")
	}
}
