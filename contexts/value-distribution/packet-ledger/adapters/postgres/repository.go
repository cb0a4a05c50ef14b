package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"giftledger/contexts/value-distribution/packet-ledger/domain/entities"
	domainerrors "giftledger/contexts/value-distribution/packet-ledger/domain/errors"
	"giftledger/contexts/value-distribution/packet-ledger/ports"
)

const (
	outboxStatusPending = "pending"
	outboxStatusSent    = "sent"
)

// Repository persists packets, claim history, and the event outbox in
// postgres. Amounts are stored as numeric(78,0) decimal strings so the full
// 256-bit range round-trips without loss.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetPacket(ctx context.Context, id common.Hash) (entities.Packet, error) {
	var row packetModel
	err := r.db.WithContext(ctx).
		Where("packet_id = ?", id.Hex()).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Packet{}, domainerrors.ErrPacketNotFound
		}
		return entities.Packet{}, err
	}
	return row.toEntity()
}

func (r *Repository) CreatePacket(ctx context.Context, packet entities.Packet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing packetModel
		err := tx.Where("packet_id = ?", packet.ID.Hex()).First(&existing).Error
		switch {
		case err == nil:
			if existing.IsActive {
				return domainerrors.ErrPacketExists
			}
			// A refunded predecessor is replaced in place; its claim rows
			// stay behind for audit.
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		row := packetModelFromEntity(packet)
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "packet_id"}},
			UpdateAll: true,
		}).Create(&row).Error
	})
}

func (r *Repository) ApplyClaim(ctx context.Context, packet entities.Packet, claim entities.Claim) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.updatePacket(tx, packet); err != nil {
			return err
		}

		claimRow := claimModelFromEntity(claim)
		if err := tx.Create(&claimRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyClaimed
			}
			return err
		}
		return nil
	})
}

func (r *Repository) ApplyRefund(ctx context.Context, packet entities.Packet) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.updatePacket(tx, packet)
	})
}

func (r *Repository) updatePacket(tx *gorm.DB, packet entities.Packet) error {
	result := tx.
		Model(&packetModel{}).
		Where("packet_id = ?", packet.ID.Hex()).
		Updates(map[string]any{
			"remaining_amount": packet.RemainingAmount.Dec(),
			"claimed_count":    packet.ClaimedCount,
			"is_active":        packet.IsActive,
			"updated_at":       packet.UpdatedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrPacketNotFound
	}
	return nil
}

func (r *Repository) ListClaims(ctx context.Context, id common.Hash) ([]entities.Claim, error) {
	var rows []claimModel
	if err := r.db.WithContext(ctx).
		Where("packet_id = ?", id.Hex()).
		Order("claimed_at ASC, ordinal ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]entities.Claim, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) HasClaimed(ctx context.Context, id common.Hash, claimant common.Address) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&claimModel{}).
		Where("packet_id = ? AND claimant = ?", id.Hex(), claimant.Hex()).
		Count(&count).
		Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Publish stages the envelope as a pending outbox row. The relay worker
// delivers it to the bus later; an insert failure surfaces to the caller,
// which logs and moves on.
func (r *Repository) Publish(ctx context.Context, envelope ports.EventEnvelope) error {
	payload := append([]byte(nil), envelope.Data...)
	row := outboxModel{
		OutboxID:     envelope.EventID,
		EventType:    envelope.EventType,
		PartitionKey: envelope.PartitionKey,
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toPort())
	}
	return items, nil
}

func (r *Repository) MarkOutboxSent(ctx context.Context, outboxID string, sentAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":  outboxStatusSent,
			"sent_at": sentAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("outbox row %s not found", outboxID)
	}
	return nil
}

type packetModel struct {
	PacketID        string    `gorm:"column:packet_id;primaryKey"`
	Creator         string    `gorm:"column:creator"`
	Authority       string    `gorm:"column:authority"`
	TotalAmount     string    `gorm:"column:total_amount;type:numeric(78,0)"`
	RemainingAmount string    `gorm:"column:remaining_amount;type:numeric(78,0)"`
	TotalCount      uint32    `gorm:"column:total_count"`
	ClaimedCount    uint32    `gorm:"column:claimed_count"`
	ExpireAt        time.Time `gorm:"column:expire_at"`
	IsRandom        bool      `gorm:"column:is_random"`
	IsActive        bool      `gorm:"column:is_active"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (packetModel) TableName() string {
	return "packets"
}

func packetModelFromEntity(packet entities.Packet) packetModel {
	return packetModel{
		PacketID:        packet.ID.Hex(),
		Creator:         packet.Creator.Hex(),
		Authority:       packet.Authority.Hex(),
		TotalAmount:     packet.TotalAmount.Dec(),
		RemainingAmount: packet.RemainingAmount.Dec(),
		TotalCount:      packet.TotalCount,
		ClaimedCount:    packet.ClaimedCount,
		ExpireAt:        packet.ExpireAt.UTC(),
		IsRandom:        packet.IsRandom,
		IsActive:        packet.IsActive,
		CreatedAt:       packet.CreatedAt.UTC(),
		UpdatedAt:       packet.UpdatedAt.UTC(),
	}
}

func (m packetModel) toEntity() (entities.Packet, error) {
	total, err := uint256.FromDecimal(m.TotalAmount)
	if err != nil {
		return entities.Packet{}, fmt.Errorf("decode total amount for %s: %w", m.PacketID, err)
	}
	remaining, err := uint256.FromDecimal(m.RemainingAmount)
	if err != nil {
		return entities.Packet{}, fmt.Errorf("decode remaining amount for %s: %w", m.PacketID, err)
	}
	return entities.Packet{
		ID:              common.HexToHash(m.PacketID),
		Creator:         common.HexToAddress(m.Creator),
		Authority:       common.HexToAddress(m.Authority),
		TotalAmount:     total,
		RemainingAmount: remaining,
		TotalCount:      m.TotalCount,
		ClaimedCount:    m.ClaimedCount,
		ExpireAt:        m.ExpireAt.UTC(),
		IsRandom:        m.IsRandom,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}, nil
}

type claimModel struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	PacketID  string    `gorm:"column:packet_id;uniqueIndex:packet_claims_unique_claimant"`
	Claimant  string    `gorm:"column:claimant;uniqueIndex:packet_claims_unique_claimant"`
	Amount    string    `gorm:"column:amount;type:numeric(78,0)"`
	Ordinal   uint32    `gorm:"column:ordinal"`
	ClaimedAt time.Time `gorm:"column:claimed_at"`
}

func (claimModel) TableName() string {
	return "packet_claims"
}

func claimModelFromEntity(claim entities.Claim) claimModel {
	return claimModel{
		PacketID:  claim.PacketID.Hex(),
		Claimant:  claim.Claimant.Hex(),
		Amount:    claim.Amount.Dec(),
		Ordinal:   claim.Ordinal,
		ClaimedAt: claim.ClaimedAt.UTC(),
	}
}

func (m claimModel) toEntity() (entities.Claim, error) {
	amount, err := uint256.FromDecimal(m.Amount)
	if err != nil {
		return entities.Claim{}, fmt.Errorf("decode claim amount for %s: %w", m.PacketID, err)
	}
	return entities.Claim{
		PacketID:  common.HexToHash(m.PacketID),
		Claimant:  common.HexToAddress(m.Claimant),
		Amount:    amount,
		Ordinal:   m.Ordinal,
		ClaimedAt: m.ClaimedAt.UTC(),
	}, nil
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	SentAt       *time.Time `gorm:"column:sent_at"`
}

func (outboxModel) TableName() string {
	return "packet_ledger_outbox"
}

func (m outboxModel) toPort() ports.OutboxMessage {
	return ports.OutboxMessage{
		OutboxID:     m.OutboxID,
		EventType:    m.EventType,
		PartitionKey: m.PartitionKey,
		Payload:      append([]byte(nil), m.Payload...),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

// Models lists the gorm models this adapter persists, for schema migration.
func Models() []any {
	return []any{&packetModel{}, &claimModel{}, &outboxModel{}}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock and UUIDGenerator satisfy the clock and id ports for postgres
// deployments.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
