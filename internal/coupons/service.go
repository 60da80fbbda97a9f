package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/internal/cart"
	dbpkg "github.com/amanagarwal0602/randomcafe-sub001/pkg/db"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Check results, also used as metric labels.
const (
	ResultValid      = "valid"
	ResultNotFound   = "not_found"
	ResultInactive   = "inactive"
	ResultNotStarted = "not_started"
	ResultExpired    = "expired"
	ResultExhausted  = "exhausted"
	ResultMinOrder   = "min_order"
)

const invalidCodeMessage = "Invalid coupon code"

// Rejection is why a coupon cannot be applied right now.
type Rejection struct {
	Result  string
	Message string
}

// Evaluate checks a stored coupon against the clock, its usage limit and an optional order amount.
func Evaluate(c *models.Coupon, now time.Time, orderAmount decimal.NullDecimal) *Rejection {
	switch {
	case c == nil:
		return &Rejection{Result: ResultNotFound, Message: invalidCodeMessage}
	case !c.IsActive:
		return &Rejection{Result: ResultInactive, Message: "Coupon is not active"}
	case c.ValidFrom != nil && now.Before(*c.ValidFrom):
		return &Rejection{Result: ResultNotStarted, Message: "Coupon is not valid yet"}
	case c.ValidUntil != nil && now.After(*c.ValidUntil):
		return &Rejection{Result: ResultExpired, Message: "Coupon has expired"}
	case c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit:
		return &Rejection{Result: ResultExhausted, Message: "Coupon usage limit reached"}
	}
	if orderAmount.Valid {
		if err := cart.CheckMinimum(orderAmount.Decimal, *PricingView(c)); err != nil {
			var rejected *cart.RejectedError
			if errors.As(err, &rejected) {
				return &Rejection{Result: ResultMinOrder, Message: "Coupon " + rejected.Reason}
			}
			return &Rejection{Result: ResultMinOrder, Message: err.Error()}
		}
	}
	return nil
}

type couponRepository interface {
	Create(ctx context.Context, c *models.Coupon) error
	FindByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
}

type checkRecorder interface {
	IncCouponCheck(result string)
}

// Service exposes coupon validation and administration.
type Service interface {
	Validate(ctx context.Context, req ValidateRequest) (*cart.Coupon, error)
	List(ctx context.Context) ([]CouponDTO, error)
	Create(ctx context.Context, req CreateCouponRequest) (*CouponDTO, error)
}

type service struct {
	repo    couponRepository
	metrics checkRecorder
	now     func() time.Time
}

// NewService builds the coupon service. metrics may be nil.
func NewService(repo couponRepository, metrics checkRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{
		repo:    repo,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Validate(ctx context.Context, req ValidateRequest) (*cart.Coupon, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	c, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load coupon")
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = nil
	}
	if rejection := Evaluate(c, s.now(), req.OrderAmount); rejection != nil {
		s.record(rejection.Result)
		errCode := pkgerrors.CodeValidation
		if rejection.Result == ResultNotFound {
			errCode = pkgerrors.CodeNotFound
		}
		return nil, pkgerrors.New(errCode, rejection.Message).WithDetails(map[string]any{"reason": rejection.Result})
	}
	s.record(ResultValid)
	return PricingView(c), nil
}

func (s *service) List(ctx context.Context) ([]CouponDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list coupons")
	}
	out := make([]CouponDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, req CreateCouponRequest) (*CouponDTO, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	c := req.toModel()
	if err := s.repo.Create(ctx, c); err != nil {
		if dbpkg.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "coupon %s already exists", c.Code)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create coupon")
	}
	return FromModel(c), nil
}

func validateCreate(req CreateCouponRequest) error {
	if NormalizeCode(req.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if !req.DiscountType.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discountType must be percentage or fixed")
	}
	if !req.DiscountValue.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "discountValue must be positive")
	}
	if req.DiscountType == enums.DiscountTypePercentage && req.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "percentage discount cannot exceed 100")
	}
	for name, v := range map[string]decimal.NullDecimal{
		"minOrderAmount":    req.MinOrderAmount,
		"maxDiscountAmount": req.MaxDiscountAmount,
	} {
		if v.Valid && v.Decimal.IsNegative() {
			return pkgerrors.Newf(pkgerrors.CodeValidation, "%s cannot be negative", name)
		}
	}
	if req.ValidFrom != nil && req.ValidUntil != nil && req.ValidUntil.Before(*req.ValidFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "validUntil must be after validFrom")
	}
	return nil
}

func (s *service) record(result string) {
	if s.metrics != nil {
		s.metrics.IncCouponCheck(result)
	}
}
