package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"tariff-billing-service/internal/domain"

	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors onto HTTP statuses. Business-rule
// violations are conflicts: the request was well-formed, the aggregate
// state forbids it.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrLockNotAcquired):
		writeJSON(w, http.StatusLocked, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrTarifAlreadyActive),
		errors.Is(err, domain.ErrNoActiveTarif),
		errors.Is(err, domain.ErrTarifGroupMismatch),
		errors.Is(err, domain.ErrTarifIncompatible),
		errors.Is(err, domain.ErrCreditNotAllowed):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.log.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func serviceIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "serviceID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	return id, nil
}

// ---- services ----

func (s *Server) handleServiceInfo(w http.ResponseWriter, r *http.Request) {
	id, err := serviceIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	info, err := s.serviceUC.Info(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleAvailableTarifs(w http.ResponseWriter, r *http.Request) {
	id, err := serviceIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tarifs, err := s.serviceUC.AvailableTarifs(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tarifsToDTO(tarifs))
}

type tarifChangeRequest struct {
	TarifID int64 `json:"tarif_id"`
}

func (s *Server) handleStartTarif(w http.ResponseWriter, r *http.Request) {
	id, err := serviceIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req tarifChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TarifID <= 0 {
		s.writeError(w, domain.ErrInvalidArgument)
		return
	}
	svc, err := s.serviceUC.StartTarif(r.Context(), id, req.TarifID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc.Info())
}

func (s *Server) handleChangeTarif(w http.ResponseWriter, r *http.Request) {
	id, err := serviceIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req tarifChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TarifID <= 0 {
		s.writeError(w, domain.ErrInvalidArgument)
		return
	}
	svc, err := s.serviceUC.ChangeTarif(r.Context(), id, req.TarifID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc.Info())
}

func (s *Server) handleStopTarif(w http.ResponseWriter, r *http.Request) {
	id, err := serviceIDParam(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	svc, err := s.serviceUC.StopTarif(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, svc.Info())
}

// ---- tarifs ----

func (s *Server) handleListTarifs(w http.ResponseWriter, r *http.Request) {
	if g := r.URL.Query().Get("group_id"); g != "" {
		groupID, err := strconv.Atoi(g)
		if err != nil {
			s.writeError(w, domain.ErrInvalidArgument)
			return
		}
		tarifs, err := s.tarifUC.ListByGroup(r.Context(), groupID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tarifsToDTO(tarifs))
		return
	}
	tarifs, err := s.tarifUC.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tarifsToDTO(tarifs))
}

type createTarifRequest struct {
	GroupID         int    `json:"group_id"`
	Name            string `json:"name"`
	Price           int64  `json:"price"`
	Duration        int    `json:"duration"` // months
	BasePricePerDay int64  `json:"base_price_per_day"`
	Speed           int    `json:"speed"`
	Type            string `json:"type"`
}

func (s *Server) handleCreateTarif(w http.ResponseWriter, r *http.Request) {
	var req createTarifRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.ErrInvalidArgument)
		return
	}
	t, err := s.tarifUC.Create(r.Context(), req.GroupID, req.Name, req.Price, req.Duration, req.BasePricePerDay, req.Speed, req.Type)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tarifToDTO(t))
}

// ---- accounts ----

type createAccountRequest struct {
	Name         string `json:"name"`
	NotifyChatID int64  `json:"notify_chat_id"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.ErrInvalidArgument)
		return
	}
	a, err := s.accountUC.Create(r.Context(), req.Name, req.NotifyChatID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, accountToDTO(a))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.accountUC.Get(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountToDTO(a))
}

type topUpRequest struct {
	Amount int64 `json:"amount"`
}

func (s *Server) handleTopUp(w http.ResponseWriter, r *http.Request) {
	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.ErrInvalidArgument)
		return
	}
	a, err := s.accountUC.TopUp(r.Context(), chi.URLParam(r, "accountID"), req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountToDTO(a))
}

type grantCreditRequest struct {
	Days int `json:"days"`
}

func (s *Server) handleGrantCredit(w http.ResponseWriter, r *http.Request) {
	var req grantCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, domain.ErrInvalidArgument)
		return
	}
	a, err := s.accountUC.GrantCredit(r.Context(), chi.URLParam(r, "accountID"), req.Days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accountToDTO(a))
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}
	entries, err := s.accountUC.Ledger(r.Context(), chi.URLParam(r, "accountID"), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerToDTO(entries))
}
