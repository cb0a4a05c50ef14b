package httptransport

type CreatePacketRequest struct {
	PacketID        string `json:"packet_id"`
	Authority       string `json:"authority"`
	Count           uint32 `json:"count"`
	DurationSeconds int64  `json:"duration_seconds"`
	IsRandom        bool   `json:"is_random"`
	Amount          string `json:"amount"`
}

type PacketDTO struct {
	PacketID        string `json:"packet_id"`
	Creator         string `json:"creator"`
	Authority       string `json:"authority"`
	TotalAmount     string `json:"total_amount"`
	RemainingAmount string `json:"remaining_amount"`
	TotalCount      uint32 `json:"total_count"`
	ClaimedCount    uint32 `json:"claimed_count"`
	ExpireAt        string `json:"expire_at"`
	IsRandom        bool   `json:"is_random"`
	IsActive        bool   `json:"is_active"`
}

type CreatePacketResponse struct {
	Item PacketDTO `json:"item"`
}

type GetPacketResponse struct {
	Item PacketDTO `json:"item"`
}

type ClaimPacketRequest struct {
	Claimant  string `json:"claimant"`
	Signature string `json:"signature"`
}

type ClaimPacketResponse struct {
	PacketID string `json:"packet_id"`
	Claimant string `json:"claimant"`
	Amount   string `json:"amount"`
	Ordinal  uint32 `json:"ordinal"`
}

type RefundPacketResponse struct {
	PacketID string `json:"packet_id"`
	Creator  string `json:"creator"`
	Amount   string `json:"amount"`
}

type ClaimDTO struct {
	Claimant  string `json:"claimant"`
	Amount    string `json:"amount"`
	Ordinal   uint32 `json:"ordinal"`
	ClaimedAt string `json:"claimed_at"`
}

type ListClaimsResponse struct {
	Items []ClaimDTO `json:"items"`
}

type HasClaimedResponse struct {
	PacketID string `json:"packet_id"`
	Claimant string `json:"claimant"`
	Claimed  bool   `json:"claimed"`
}

type LimitsResponse struct {
	MinAmount          string `json:"min_amount"`
	MaxCount           uint32 `json:"max_count"`
	MaxDurationSeconds int64  `json:"max_duration_seconds"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
