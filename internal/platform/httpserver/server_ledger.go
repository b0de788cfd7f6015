package httpserver

import (
	"net/http"

	ledgerhttp "syndicate/contexts/collective-ownership/fraction-ledger/transport/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleCreateAsset(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.CreateAssetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.InitialHolder == "" {
		req.InitialHolder = caller
	}
	resp, err := s.ledger.Handler.CreateAssetHandler(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.GetAssetHandler(r.Context(), chi.URLParam(r, "asset_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConservation(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ConservationHandler(r.Context(), chi.URLParam(r, "asset_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.ListPositionsHandler(r.Context(), chi.URLParam(r, "asset_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.GetPositionHandler(r.Context(), chi.URLParam(r, "asset_id"), chi.URLParam(r, "holder"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ledger.Handler.TransferHandler(r.Context(), chi.URLParam(r, "asset_id"), caller, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDelegate(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.MoveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ledger.Handler.DelegateHandler(r.Context(), chi.URLParam(r, "asset_id"), caller, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDepositRoyalty(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req ledgerhttp.DepositRoyaltyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.ledger.Handler.DepositRoyaltyHandler(r.Context(), chi.URLParam(r, "asset_id"), caller, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClaimRoyalty(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.ClaimRoyaltyHandler(r.Context(), chi.URLParam(r, "asset_id"), caller)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRageQuit(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	resp, err := s.ledger.Handler.RageQuitHandler(r.Context(), caller)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVotingPower(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ledger.Handler.VotingPowerHandler(r.Context(), chi.URLParam(r, "holder"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
