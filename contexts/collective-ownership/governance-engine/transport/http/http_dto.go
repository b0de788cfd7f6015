package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SetEligibilityRequest struct {
	Eligible bool `json:"eligible"`
}

type EligibilityResponse struct {
	AssetID   string `json:"asset_id"`
	Eligible  bool   `json:"eligible"`
	UpdatedBy string `json:"updated_by,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type ProposeRequest struct {
	AssetID     string `json:"asset_id"`
	Description string `json:"description"`
}

type ProposalResponse struct {
	ProposalID   uint64 `json:"proposal_id"`
	AssetID      string `json:"asset_id"`
	Proposer     string `json:"proposer"`
	Description  string `json:"description"`
	State        string `json:"state"`
	StartAt      string `json:"start_at"`
	EndAt        string `json:"end_at"`
	Quorum       uint64 `json:"quorum"`
	ForVotes     uint64 `json:"for_votes"`
	AgainstVotes uint64 `json:"against_votes"`
	Executed     bool   `json:"executed"`
	Canceled     bool   `json:"canceled"`
	CreatedAt    string `json:"created_at"`
}

type ProposalListResponse struct {
	Items []ProposalResponse `json:"items"`
}

type CastVoteRequest struct {
	AssetID string `json:"asset_id"`
	Support bool   `json:"support"`
}

type ReceiptResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	AssetID    string `json:"asset_id"`
	Support    bool   `json:"support"`
	Weight     uint64 `json:"weight"`
	AssetVotes uint64 `json:"asset_votes"`
	CastAt     string `json:"cast_at"`
}

type CastVoteResponse struct {
	Receipt  ReceiptResponse  `json:"receipt"`
	Proposal ProposalResponse `json:"proposal"`
}

type ReceiptListResponse struct {
	Items []ReceiptResponse `json:"items"`
}

type HasVotedResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	Voter      string `json:"voter"`
	HasVoted   bool   `json:"has_voted"`
}
