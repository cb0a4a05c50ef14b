package httpadapter

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"giftledger/contexts/value-distribution/packet-ledger/application"
	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	httptransport "giftledger/contexts/value-distribution/packet-ledger/transport/http"
)

// ErrMalformedRequest marks transport-level decode failures (bad hex, bad
// decimal), as opposed to ledger rejections.
var ErrMalformedRequest = errors.New("malformed request field")

type Handler struct {
	Service *application.Service
	Logger  *slog.Logger
}

// CreatePacketHandler godoc
// @Summary Create a gift packet
// @Description Deposits funds into a new signature-gated packet.
// @Tags packet-ledger
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Creator address (0x-prefixed)"
// @Param request body httptransport.CreatePacketRequest true "Packet parameters"
// @Success 201 {object} httptransport.CreatePacketResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 502 {object} httptransport.ErrorResponse
// @Router /v1/packets [post]
func (h Handler) CreatePacketHandler(
	ctx context.Context,
	caller string,
	req httptransport.CreatePacketRequest,
) (httptransport.CreatePacketResponse, error) {
	creator, err := parseAddress(caller)
	if err != nil {
		return httptransport.CreatePacketResponse{}, err
	}
	packetID, err := parseHash(req.PacketID)
	if err != nil {
		return httptransport.CreatePacketResponse{}, err
	}
	authority, err := parseAddress(req.Authority)
	if err != nil {
		return httptransport.CreatePacketResponse{}, err
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.CreatePacketResponse{}, err
	}

	packet, err := h.Service.CreatePacket(ctx, application.CreatePacketInput{
		PacketID:      packetID,
		Creator:       creator,
		Authority:     authority,
		Count:         req.Count,
		Duration:      time.Duration(req.DurationSeconds) * time.Second,
		IsRandom:      req.IsRandom,
		DepositAmount: amount,
	})
	if err != nil {
		return httptransport.CreatePacketResponse{}, err
	}
	return httptransport.CreatePacketResponse{Item: toPacketDTO(packet)}, nil
}

// ClaimPacketHandler godoc
// @Summary Claim one share of a packet
// @Description Pays out one share if the authorization signature covers (packet_id, claimant).
// @Tags packet-ledger
// @Accept json
// @Produce json
// @Param packet_id path string true "Packet id (0x-prefixed 32-byte hex)"
// @Param request body httptransport.ClaimPacketRequest true "Claimant and authorization token"
// @Success 200 {object} httptransport.ClaimPacketResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 410 {object} httptransport.ErrorResponse
// @Router /v1/packets/{packet_id}/claim [post]
func (h Handler) ClaimPacketHandler(
	ctx context.Context,
	packetIDRaw string,
	req httptransport.ClaimPacketRequest,
) (httptransport.ClaimPacketResponse, error) {
	packetID, err := parseHash(packetIDRaw)
	if err != nil {
		return httptransport.ClaimPacketResponse{}, err
	}
	claimant, err := parseAddress(req.Claimant)
	if err != nil {
		return httptransport.ClaimPacketResponse{}, err
	}
	signature, err := hexutil.Decode(req.Signature)
	if err != nil {
		return httptransport.ClaimPacketResponse{}, ErrMalformedRequest
	}

	claim, err := h.Service.ClaimPacket(ctx, application.ClaimPacketInput{
		PacketID:  packetID,
		Claimant:  claimant,
		Signature: signature,
	})
	if err != nil {
		return httptransport.ClaimPacketResponse{}, err
	}
	return httptransport.ClaimPacketResponse{
		PacketID: claim.PacketID.Hex(),
		Claimant: claim.Claimant.Hex(),
		Amount:   claim.Amount.Dec(),
		Ordinal:  claim.Ordinal,
	}, nil
}

// RefundPacketHandler godoc
// @Summary Refund the unclaimed remainder
// @Description Returns remaining funds to the creator after expiry.
// @Tags packet-ledger
// @Accept json
// @Produce json
// @Param X-Caller-Address header string true "Caller address (0x-prefixed)"
// @Param packet_id path string true "Packet id (0x-prefixed 32-byte hex)"
// @Success 200 {object} httptransport.RefundPacketResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/packets/{packet_id}/refund [post]
func (h Handler) RefundPacketHandler(
	ctx context.Context,
	caller string,
	packetIDRaw string,
) (httptransport.RefundPacketResponse, error) {
	callerAddr, err := parseAddress(caller)
	if err != nil {
		return httptransport.RefundPacketResponse{}, err
	}
	packetID, err := parseHash(packetIDRaw)
	if err != nil {
		return httptransport.RefundPacketResponse{}, err
	}

	refunded, err := h.Service.RefundPacket(ctx, application.RefundPacketInput{
		PacketID: packetID,
		Caller:   callerAddr,
	})
	if err != nil {
		return httptransport.RefundPacketResponse{}, err
	}
	return httptransport.RefundPacketResponse{
		PacketID: packetID.Hex(),
		Creator:  callerAddr.Hex(),
		Amount:   refunded.Dec(),
	}, nil
}

// GetPacketHandler godoc
// @Summary Get a packet record
// @Tags packet-ledger
// @Produce json
// @Param packet_id path string true "Packet id (0x-prefixed 32-byte hex)"
// @Success 200 {object} httptransport.GetPacketResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/packets/{packet_id} [get]
func (h Handler) GetPacketHandler(ctx context.Context, packetIDRaw string) (httptransport.GetPacketResponse, error) {
	packetID, err := parseHash(packetIDRaw)
	if err != nil {
		return httptransport.GetPacketResponse{}, err
	}
	packet, err := h.Service.GetPacket(ctx, packetID)
	if err != nil {
		return httptransport.GetPacketResponse{}, err
	}
	return httptransport.GetPacketResponse{Item: toPacketDTO(packet)}, nil
}

// ListClaimsHandler godoc
// @Summary List the ordered claim history of a packet
// @Tags packet-ledger
// @Produce json
// @Param packet_id path string true "Packet id (0x-prefixed 32-byte hex)"
// @Success 200 {object} httptransport.ListClaimsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/packets/{packet_id}/claims [get]
func (h Handler) ListClaimsHandler(ctx context.Context, packetIDRaw string) (httptransport.ListClaimsResponse, error) {
	packetID, err := parseHash(packetIDRaw)
	if err != nil {
		return httptransport.ListClaimsResponse{}, err
	}
	claims, err := h.Service.ListClaims(ctx, packetID)
	if err != nil {
		return httptransport.ListClaimsResponse{}, err
	}

	resp := httptransport.ListClaimsResponse{
		Items: make([]httptransport.ClaimDTO, 0, len(claims)),
	}
	for _, claim := range claims {
		resp.Items = append(resp.Items, httptransport.ClaimDTO{
			Claimant:  claim.Claimant.Hex(),
			Amount:    claim.Amount.Dec(),
			Ordinal:   claim.Ordinal,
			ClaimedAt: claim.ClaimedAt.UTC().Format(time.RFC3339),
		})
	}
	return resp, nil
}

// HasClaimedHandler godoc
// @Summary Check whether an identity claimed a packet
// @Tags packet-ledger
// @Produce json
// @Param packet_id path string true "Packet id (0x-prefixed 32-byte hex)"
// @Param address path string true "Claimant address (0x-prefixed)"
// @Success 200 {object} httptransport.HasClaimedResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/packets/{packet_id}/claims/{address} [get]
func (h Handler) HasClaimedHandler(
	ctx context.Context,
	packetIDRaw string,
	addressRaw string,
) (httptransport.HasClaimedResponse, error) {
	packetID, err := parseHash(packetIDRaw)
	if err != nil {
		return httptransport.HasClaimedResponse{}, err
	}
	claimant, err := parseAddress(addressRaw)
	if err != nil {
		return httptransport.HasClaimedResponse{}, err
	}
	claimed, err := h.Service.HasClaimed(ctx, packetID, claimant)
	if err != nil {
		return httptransport.HasClaimedResponse{}, err
	}
	return httptransport.HasClaimedResponse{
		PacketID: packetID.Hex(),
		Claimant: claimant.Hex(),
		Claimed:  claimed,
	}, nil
}

// LimitsHandler godoc
// @Summary Read the fixed contract constants
// @Tags packet-ledger
// @Produce json
// @Success 200 {object} httptransport.LimitsResponse
// @Router /v1/packets/limits [get]
func (h Handler) LimitsHandler(_ context.Context) (httptransport.LimitsResponse, error) {
	return httptransport.LimitsResponse{
		MinAmount:          entities.MinAmount.Dec(),
		MaxCount:           entities.MaxCount,
		MaxDurationSeconds: int64(entities.MaxDuration / time.Second),
	}, nil
}

func toPacketDTO(packet entities.Packet) httptransport.PacketDTO {
	return httptransport.PacketDTO{
		PacketID:        packet.ID.Hex(),
		Creator:         packet.Creator.Hex(),
		Authority:       packet.Authority.Hex(),
		TotalAmount:     packet.TotalAmount.Dec(),
		RemainingAmount: packet.RemainingAmount.Dec(),
		TotalCount:      packet.TotalCount,
		ClaimedCount:    packet.ClaimedCount,
		ExpireAt:        packet.ExpireAt.UTC().Format(time.RFC3339),
		IsRandom:        packet.IsRandom,
		IsActive:        packet.IsActive,
	}
}

func parseHash(raw string) (common.Hash, error) {
	decoded, err := hexutil.Decode(raw)
	if err != nil || len(decoded) != common.HashLength {
		return common.Hash{}, ErrMalformedRequest
	}
	return common.BytesToHash(decoded), nil
}

func parseAddress(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, ErrMalformedRequest
	}
	return common.HexToAddress(raw), nil
}

func parseAmount(raw string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(raw)
	if err != nil {
		return nil, ErrMalformedRequest
	}
	return amount, nil
}
