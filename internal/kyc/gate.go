package kyc

import (
	"context"
	"strings"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ledger/internal/model"
	"ledger/internal/model/enum"
	"ledger/pkg/exception"
)

// NoticeNoPendingKyc is reported when approve finds nothing to approve. It is not an error.
const NoticeNoPendingKyc = "no pending kyc record"

// Outcome is the result of an approval. Record is nil when the user has no record.
type Outcome struct {
	Record   *model.KycRecord `json:"record,omitempty"`
	Found    bool             `json:"found"`
	Approved bool             `json:"approved"`
	Notice   string           `json:"notice,omitempty"`
}

// Gate owns the status field of KYC records.
type Gate struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGate(db *gorm.DB) *Gate {
	return &Gate{db: db, now: time.Now}
}

// Submit opens a pending record for userID. An existing record is returned unchanged.
func (g *Gate) Submit(ctx context.Context, userID string) (model.KycRecord, error) {
	userID, err := normalize(userID)
	if err != nil {
		return model.KycRecord{}, err
	}

	rec := model.KycRecord{UserID: userID, Status: enum.KycStatusPending}
	err = g.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&rec).Error
	if err != nil {
		return model.KycRecord{}, errors.Wrap(err, "create kyc record").With("user", userID)
	}

	stored, _, err := g.find(ctx, userID)
	return stored, err
}

// Status returns the record of userID, if any.
func (g *Gate) Status(ctx context.Context, userID string) (model.KycRecord, bool, error) {
	userID, err := normalize(userID)
	if err != nil {
		return model.KycRecord{}, false, err
	}
	return g.find(ctx, userID)
}

// Approve moves the pending record of userID to approved and stamps verifiedAt. Without a pending
// record nothing changes and the outcome carries NoticeNoPendingKyc.
func (g *Gate) Approve(ctx context.Context, userID string) (Outcome, error) {
	userID, err := normalize(userID)
	if err != nil {
		return Outcome{}, err
	}

	now := g.now().UTC()
	res := g.db.WithContext(ctx).
		Model(&model.KycRecord{}).
		Where("user_id = ? AND status = ?", userID, enum.KycStatusPending).
		Updates(map[string]any{
			"status":      enum.KycStatusApproved,
			"verified_at": now,
			"updated_at":  now,
		})
	if res.Error != nil {
		return Outcome{}, errors.Wrap(res.Error, "approve kyc").With("user", userID)
	}

	rec, found, err := g.find(ctx, userID)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Found: found, Approved: res.RowsAffected > 0}
	if found {
		out.Record = &rec
	}
	if !out.Approved {
		out.Notice = NoticeNoPendingKyc
		logs.Infof("kyc approve skipped, user: %s, notice: %s", userID, NoticeNoPendingKyc)
		return out, nil
	}

	logs.Infof("kyc approved, user: %s", userID)
	return out, nil
}

func (g *Gate) find(ctx context.Context, userID string) (model.KycRecord, bool, error) {
	var rec model.KycRecord
	res := g.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&rec)
	if res.Error != nil {
		return model.KycRecord{}, false, errors.Wrap(res.Error, "find kyc record").With("user", userID)
	}
	return rec, res.RowsAffected > 0, nil
}

func normalize(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.Wrap(exception.ErrInvalidArgument, "user is empty")
	}
	return userID, nil
}
