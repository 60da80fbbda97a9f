package users

import (
	"context"
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists accounts. Lookups return gorm.ErrRecordNotFound
// unwrapped so callers can branch on it.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to db, which may be a transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create stores a new account. Emails are kept lowercase.
func (r *Repository) Create(ctx context.Context, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	user.Email = normalizeEmail(user.Email)
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.first(ctx, "email = ?", normalizeEmail(email))
}

func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.setColumn(ctx, id, "last_login_at", at.UTC())
}

func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role enums.Role) error {
	return r.setColumn(ctx, id, "role", role)
}

func (r *Repository) first(ctx context.Context, where string, arg any) (*models.User, error) {
	user := &models.User{}
	if err := r.db.WithContext(ctx).Where(where, arg).Take(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// setColumn writes one column without touching updated_at hooks and reports
// gorm.ErrRecordNotFound when no account has the id.
func (r *Repository) setColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
