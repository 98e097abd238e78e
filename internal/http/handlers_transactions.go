package http

import (
	"net/http"
	"strings"

	"saldo/internal/core"
)

type createTransactionResponse struct {
	transactionResponse
	// Series lists every row of an installment plan or recurrence,
	// including the first.
	Series []transactionResponse `json:"series,omitempty"`
}

// handleListTransactions lists by month and account, or a whole series when
// group is given.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, ownerID int64) {
	ctx := r.Context()
	q := r.URL.Query()

	if group := strings.TrimSpace(q.Get("group")); group != "" {
		rows, err := s.svc.Transactions.Series(ctx, ownerID, group)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newTransactionList(rows))
		return
	}

	filter, err := parseTransactionFilter(q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rows, err := s.svc.Transactions.List(ctx, ownerID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionList(rows))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, ownerID int64) {
	ctx := r.Context()

	var p transactionPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := p.toRequest()
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := s.svc.Transactions.Create(ctx, ownerID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.svc.Transactions.Get(ctx, ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	resp := createTransactionResponse{transactionResponse: newTransactionResponse(created)}
	if created.RecurrenceGroupID != "" {
		series, err := s.svc.Transactions.Series(ctx, ownerID, created.RecurrenceGroupID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Series = newTransactionList(series)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, ownerID int64) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var p transactionPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	req, err := p.toRequest()
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.svc.Transactions.Update(ctx, ownerID, id, req); err != nil {
		writeError(w, r, err)
		return
	}
	s.respondTransaction(w, r, ownerID, id)
}

// handleToggleTransaction sets the realization flag only.
func (s *Server) handleToggleTransaction(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var p realizedPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	if p.IsRealized == nil {
		writeError(w, r, core.NewValidationError("isRealized", errRequired))
		return
	}

	if err := s.svc.Transactions.SetRealized(r.Context(), ownerID, id, *p.IsRealized); err != nil {
		writeError(w, r, err)
		return
	}
	s.respondTransaction(w, r, ownerID, id)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondTransaction(w http.ResponseWriter, r *http.Request, ownerID, id int64) {
	t, err := s.svc.Transactions.Get(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newTransactionResponse(t))
}
