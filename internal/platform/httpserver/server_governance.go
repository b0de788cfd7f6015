package httpserver

import (
	"net/http"

	governancehttp "syndicate/contexts/collective-ownership/governance-engine/transport/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetEligibility(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.GetEligibilityHandler(r.Context(), chi.URLParam(r, "asset_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetEligibility(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req governancehttp.SetEligibilityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.SetEligibilityHandler(r.Context(), caller, chi.URLParam(r, "asset_id"), req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePropose(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	var req governancehttp.ProposeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.ProposeHandler(r.Context(), caller, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	resp, err := s.governance.Handler.ListProposalsHandler(r.Context(), r.URL.Query().Get("asset_id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetProposal(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.GetProposalHandler(r.Context(), proposalID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	var req governancehttp.CastVoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := s.governance.Handler.CastVoteHandler(r.Context(), caller, proposalID, req)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListReceipts(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ListReceiptsHandler(r.Context(), proposalID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHasVoted(w http.ResponseWriter, r *http.Request) {
	proposalID, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.HasVotedHandler(r.Context(), proposalID, chi.URLParam(r, "holder"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.ExecuteHandler(r.Context(), caller, proposalID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireIdentity(w, r)
	if !ok {
		return
	}
	proposalID, ok := proposalIDParam(w, r)
	if !ok {
		return
	}
	resp, err := s.governance.Handler.CancelHandler(r.Context(), caller, proposalID)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
