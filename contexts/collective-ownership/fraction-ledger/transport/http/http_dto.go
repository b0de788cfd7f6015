package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateAssetRequest struct {
	AssetID          string `json:"asset_id"`
	InitialHolder    string `json:"initial_holder"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	URI              string `json:"uri"`
	TotalFractions   uint64 `json:"total_fractions"`
	RoyaltyBps       uint32 `json:"royalty_bps"`
	RageQuitEligible bool   `json:"rage_quit_eligible"`
}

type AssetResponse struct {
	AssetID              string `json:"asset_id"`
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	URI                  string `json:"uri"`
	RoyaltyBps           uint32 `json:"royalty_bps"`
	TotalFractions       uint64 `json:"total_fractions"`
	AvailableFractions   uint64 `json:"available_fractions"`
	AccumulatedRoyalties uint64 `json:"accumulated_royalties"`
	RageQuitEligible     bool   `json:"rage_quit_eligible"`
	CreatedAt            string `json:"created_at"`
}

type MoveRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

type PositionResponse struct {
	AssetID            string `json:"asset_id"`
	Holder             string `json:"holder"`
	Amount             uint64 `json:"amount"`
	Status             string `json:"status"`
	IsDelegateReceiver bool   `json:"is_delegate_receiver"`
	DelegatedTo        string `json:"delegated_to,omitempty"`
	RoyaltyOwed        uint64 `json:"royalty_owed"`
	LastActionAt       string `json:"last_action_at,omitempty"`
}

type MoveResponse struct {
	From PositionResponse `json:"from"`
	To   PositionResponse `json:"to"`
}

type PositionListResponse struct {
	Items []PositionResponse `json:"items"`
}

type DepositRoyaltyRequest struct {
	Amount uint64 `json:"amount"`
}

type RoyaltyClaimResponse struct {
	AssetID   string `json:"asset_id"`
	Holder    string `json:"holder"`
	Share     uint64 `json:"share"`
	Remaining uint64 `json:"remaining"`
	ClaimedAt string `json:"claimed_at"`
}

type RageQuitResponse struct {
	Holder   string   `json:"holder"`
	Assets   []string `json:"assets"`
	Burned   uint64   `json:"burned"`
	ExitedAt string   `json:"exited_at"`
}

type VotingPowerResponse struct {
	Holder      string `json:"holder"`
	Power       uint64 `json:"power"`
	HasRageQuit bool   `json:"has_rage_quit"`
}

type ConservationResponse struct {
	AssetID            string `json:"asset_id"`
	AvailableFractions uint64 `json:"available_fractions"`
	PositionSum        uint64 `json:"position_sum"`
	Holders            int    `json:"holders"`
	Balanced           bool   `json:"balanced"`
}
