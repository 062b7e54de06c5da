//go:build !integration

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tariff-billing-service/internal/domain"
	"tariff-billing-service/internal/domain/model"

	"github.com/rs/zerolog"
)

// stubServiceUC drives the handlers with canned responses.
type stubServiceUC struct {
	svc *model.Service
	err error
}

func (s *stubServiceUC) StartTarif(ctx context.Context, serviceID, tarifID int64) (*model.Service, error) {
	return s.svc, s.err
}

func (s *stubServiceUC) StopTarif(ctx context.Context, serviceID int64) (*model.Service, error) {
	return s.svc, s.err
}

func (s *stubServiceUC) ChangeTarif(ctx context.Context, serviceID, tarifID int64) (*model.Service, error) {
	return s.svc, s.err
}

func (s *stubServiceUC) Info(ctx context.Context, serviceID int64) (*model.ServiceInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	info := s.svc.Info()
	return &info, nil
}

func (s *stubServiceUC) AvailableTarifs(ctx context.Context, serviceID int64) ([]*model.Tarif, error) {
	return nil, s.err
}

func testServer(t *testing.T, uc *stubServiceUC) (*Server, string) {
	t.Helper()
	log := zerolog.Nop()
	auth := NewAuthManager("test-secret", time.Minute)
	token, err := auth.Mint()
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return NewServer(0, auth, uc, nil, nil, &log), token
}

func testService(t *testing.T) *model.Service {
	t.Helper()
	acc, err := model.NewAccount("", "subscriber")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	tarif := &model.Tarif{ID: 10, GroupID: 1, Name: "Home 100", Price: 54_000, PayPeriodMonths: 1, SpeedMbit: 100, Type: "home"}
	svc, err := model.NewService(1, 1, acc, tarif, time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc
}

func doRequest(srv *Server, token, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestServiceInfoEndpoint(t *testing.T) {
	t.Run("should return the service projection", func(t *testing.T) {
		srv, token := testServer(t, &stubServiceUC{svc: testService(t)})

		rec := doRequest(srv, token, http.MethodGet, "/api/v1/services/1/", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, but got %d: %s", rec.Code, rec.Body.String())
		}
		var info model.ServiceInfo
		if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.Payday != "2026-04-05" {
			t.Errorf("expected payday 2026-04-05, but got %s", info.Payday)
		}
	})

	t.Run("should map an unknown service to 404", func(t *testing.T) {
		srv, token := testServer(t, &stubServiceUC{err: domain.ErrNotFound})

		rec := doRequest(srv, token, http.MethodGet, "/api/v1/services/1/", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected 404, but got %d", rec.Code)
		}
	})

	t.Run("should map a malformed id to 400", func(t *testing.T) {
		srv, token := testServer(t, &stubServiceUC{svc: testService(t)})

		rec := doRequest(srv, token, http.MethodGet, "/api/v1/services/abc/", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, but got %d", rec.Code)
		}
	})
}

func TestStartTarifEndpoint(t *testing.T) {
	t.Run("should map business-rule violations to 409", func(t *testing.T) {
		srv, token := testServer(t, &stubServiceUC{
			err: domain.NewDomainLogicError(1, domain.ErrTarifAlreadyActive),
		})

		rec := doRequest(srv, token, http.MethodPost, "/api/v1/services/1/tarif", `{"tarif_id":10}`)
		if rec.Code != http.StatusConflict {
			t.Errorf("expected 409, but got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("should map lock contention to 423", func(t *testing.T) {
		srv, token := testServer(t, &stubServiceUC{err: domain.ErrLockNotAcquired})

		rec := doRequest(srv, token, http.MethodPost, "/api/v1/services/1/tarif", `{"tarif_id":10}`)
		if rec.Code != http.StatusLocked {
			t.Errorf("expected 423, but got %d", rec.Code)
		}
	})

	t.Run("should reject a body without a tarif id", func(t *testing.T) {
		srv, token := testServer(t, &stubServiceUC{svc: testService(t)})

		rec := doRequest(srv, token, http.MethodPost, "/api/v1/services/1/tarif", `{}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, but got %d", rec.Code)
		}
	})

	t.Run("should return the updated service", func(t *testing.T) {
		srv, token := testServer(t, &stubServiceUC{svc: testService(t)})

		rec := doRequest(srv, token, http.MethodPost, "/api/v1/services/1/tarif", `{"tarif_id":10}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, but got %d: %s", rec.Code, rec.Body.String())
		}
		var info model.ServiceInfo
		if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if info.Tarif.ID != 10 {
			t.Errorf("expected tarif 10 in the response, but got %d", info.Tarif.ID)
		}
	})
}

func TestMetricsAndHealthAreUnauthenticated(t *testing.T) {
	srv, _ := testServer(t, &stubServiceUC{svc: testService(t)})

	for _, path := range []string{"/health", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("expected 200 for %s, but got %d", path, rec.Code)
		}
	}
}
