package http

import "net/http"

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, ownerID int64) {
	accounts, err := s.svc.Accounts.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(accounts, newAccountResponse))
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, ownerID int64) {
	var p accountPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	a, err := p.toAccount(0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.svc.Accounts.Create(r.Context(), ownerID, a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newAccountResponse(created))
}

// handleUpdateAccount ignores any balance in the body; balances only move
// through the ledger.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, ownerID int64) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p accountPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	p.Balance = amountField{}
	a, err := p.toAccount(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Accounts.Update(ctx, ownerID, a); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.svc.Accounts.Get(ctx, ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newAccountResponse(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Accounts.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecalculateAccount(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	balance, err := s.svc.Accounts.Recalculate(r.Context(), ownerID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "balance": balance.String()})
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request, ownerID int64) {
	cards, err := s.svc.Cards.List(r.Context(), ownerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cards, newCardResponse))
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request, ownerID int64) {
	var p cardPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := p.toCard(0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.svc.Cards.Create(r.Context(), ownerID, c)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCardResponse(created))
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var p cardPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, r, err)
		return
	}
	c, err := p.toCard(id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Cards.Update(r.Context(), ownerID, c); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteCard detaches the card's transactions rather than failing.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request, ownerID int64) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.Cards.Delete(r.Context(), ownerID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
