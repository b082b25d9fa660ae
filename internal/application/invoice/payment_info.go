package invoice

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// PaymentInfoService manages the per-user payment info singleton.
// Reads go through an optional cache; users without a saved row get the
// configured defaults.
type PaymentInfoService struct {
	repo     invoice.PaymentInfoRepository
	cache    invoice.PaymentInfoCache
	defaults invoice.PaymentInfo
	logger   *zap.Logger
}

// NewPaymentInfoService creates a PaymentInfoService. cache may be nil.
func NewPaymentInfoService(
	repo invoice.PaymentInfoRepository,
	cache invoice.PaymentInfoCache,
	defaults invoice.PaymentInfo,
	logger *zap.Logger,
) *PaymentInfoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentInfoService{
		repo:     repo,
		cache:    cache,
		defaults: defaults,
		logger:   logger,
	}
}

// Defaults returns the configured payment info
func (s *PaymentInfoService) Defaults() invoice.PaymentInfo {
	return s.defaults
}

// Get returns the user's payment info or the defaults
func (s *PaymentInfoService) Get(ctx context.Context, userID uuid.UUID) (*PaymentInfoResponse, error) {
	info, isDefault, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toPaymentInfoResponse(info, isDefault)
	return &resp, nil
}

// Current resolves the payment info to snapshot onto invoices.
// isDefault is set when the user has no saved row.
func (s *PaymentInfoService) Current(ctx context.Context, userID uuid.UUID) (info invoice.PaymentInfo, isDefault bool, err error) {
	if userID == uuid.Nil {
		return invoice.PaymentInfo{}, false, shared.ErrNoSession.WithMessage("Please sign in to view payment info")
	}
	log := logger.WithFallback(ctx, s.logger)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, userID)
		if err != nil {
			log.Warn("Payment info cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached, false, nil
		}
	}

	stored, err := s.repo.Find(ctx, userID)
	if errors.Is(err, shared.ErrNotFound) {
		return s.defaults, true, nil
	}
	if err != nil {
		return invoice.PaymentInfo{}, false, errors.Wrap(err, "load payment info")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, *stored); err != nil {
			log.Warn("Payment info cache write failed", zap.Error(err))
		}
	}
	return *stored, false, nil
}

// Update saves the user's payment info; all three fields are required
func (s *PaymentInfoService) Update(ctx context.Context, userID uuid.UUID, req PaymentInfoRequest) (*PaymentInfoResponse, error) {
	if userID == uuid.Nil {
		return nil, shared.ErrNoSession.WithMessage("Please sign in to update payment info")
	}

	info := invoice.PaymentInfo{
		AccountName:   strings.TrimSpace(req.AccountName),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		IFSC:          strings.ToUpper(strings.TrimSpace(req.IFSC)),
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, userID, info); err != nil {
		return nil, errors.Wrap(err, "save payment info")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, userID); err != nil {
			logger.WithFallback(ctx, s.logger).Warn("Payment info cache invalidation failed", zap.Error(err))
		}
	}

	s.logger.Info("Payment info updated", zap.String("user_id", userID.String()))
	resp := toPaymentInfoResponse(info, false)
	return &resp, nil
}

// fillSnapshot completes blank snapshot fields of an invoice from the
// current payment info, field by field
func fillSnapshot(snapshot, current invoice.PaymentInfo) invoice.PaymentInfo {
	if snapshot.AccountName == "" {
		snapshot.AccountName = current.AccountName
	}
	if snapshot.AccountNumber == "" {
		snapshot.AccountNumber = current.AccountNumber
	}
	if snapshot.IFSC == "" {
		snapshot.IFSC = current.IFSC
	}
	return snapshot
}
