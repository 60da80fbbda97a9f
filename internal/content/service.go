package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/db/models"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/redis"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Actor is the authenticated user performing a write.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// Service exposes the content store.
type Service interface {
	Get(ctx context.Context, resource string) (Record, error)
	GetItem(ctx context.Context, resource, id string) (Record, error)
	List(ctx context.Context, resource string, viewer Viewer, all bool) ([]Record, error)
	Put(ctx context.Context, actor Actor, resource, id string, body Record) (Record, error)
	Create(ctx context.Context, actor Actor, resource string, body Record) (Record, error)
	Delete(ctx context.Context, actor Actor, resource, id string) error
}

type repository interface {
	FindOne(ctx context.Context, resourceType, resourceID string) (*models.ContentRecord, error)
	List(ctx context.Context, resourceType string) ([]models.ContentRecord, error)
	Upsert(ctx context.Context, rec *models.ContentRecord) error
	Replace(ctx context.Context, resourceType, resourceID string, payload map[string]any, updatedBy *uuid.UUID) (*models.ContentRecord, error)
	Append(ctx context.Context, rec *models.ContentRecord) error
	Delete(ctx context.Context, resourceType, resourceID string) (bool, error)
}

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	ContentCacheKey(resource string) string
}

type writeRecorder interface {
	IncContentWrite(resource, op string)
}

// ServiceParams bundles the content service dependencies. Cache and Metrics are optional.
type ServiceParams struct {
	Repo     repository
	Cache    cacheStore
	CacheTTL time.Duration
	Metrics  writeRecorder
	Logger   *logger.Logger
}

type service struct {
	repo     repository
	cache    cacheStore
	cacheTTL time.Duration
	metrics  writeRecorder
	logg     *logger.Logger
}

// NewService builds the content service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("content repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		cache:    params.Cache,
		cacheTTL: params.CacheTTL,
		metrics:  params.Metrics,
		logg:     params.Logger,
	}, nil
}

func (s *service) Get(ctx context.Context, resource string) (Record, error) {
	res, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	if res.Collection {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is a collection", res.Name)
	}

	var cached Record
	if s.readCache(ctx, res.Name, &cached) {
		return cached, nil
	}

	rec, err := s.repo.FindOne(ctx, res.Name, "")
	if errors.Is(err, gorm.ErrRecordNotFound) {
		out := Record{}
		s.writeCache(ctx, res.Name, out)
		return out, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content")
	}
	out := present(rec.Payload, "", rec.CreatedAt, rec.UpdatedAt)
	s.writeCache(ctx, res.Name, out)
	return out, nil
}

func (s *service) GetItem(ctx context.Context, resource, id string) (Record, error) {
	res, err := lookupCollection(resource)
	if err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	rec, err := s.repo.FindOne(ctx, res.Name, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%s %s not found", res.Name, id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content")
	}
	return present(rec.Payload, rec.ResourceID, rec.CreatedAt, rec.UpdatedAt), nil
}

func (s *service) List(ctx context.Context, resource string, viewer Viewer, all bool) ([]Record, error) {
	res, err := lookupCollection(resource)
	if err != nil {
		return nil, err
	}

	var records []Record
	if !s.readCache(ctx, res.Name, &records) {
		rows, err := s.repo.List(ctx, res.Name)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list content")
		}
		records = make([]Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, present(row.Payload, row.ResourceID, row.CreatedAt, row.UpdatedAt))
		}
		s.writeCache(ctx, res.Name, records)
	}

	// all lifts the filter for staff only; everyone else gets the public view.
	if all && viewer.Staff() {
		return records, nil
	}
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if res.visible(rec, viewer) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *service) Put(ctx context.Context, actor Actor, resource, id string, body Record) (Record, error) {
	res, err := lookup(resource)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanEditContent() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "content editing requires staff access")
	}
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	payload := clean(body)
	updatedBy := actorID(actor)
	id = strings.TrimSpace(id)

	var out Record
	if res.Collection {
		if id == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "id is required")
		}
		rec, err := s.repo.Replace(ctx, res.Name, id, payload, updatedBy)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "%s %s not found", res.Name, id)
		}
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content")
		}
		out = present(rec.Payload, rec.ResourceID, rec.CreatedAt, rec.UpdatedAt)
	} else {
		if id != "" {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s does not take an id", res.Name)
		}
		if res.Merge {
			existing, err := s.repo.FindOne(ctx, res.Name, "")
			switch {
			case err == nil:
				payload = merge(existing.Payload, payload)
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load content")
			}
		}
		if err := s.repo.Upsert(ctx, &models.ContentRecord{
			ResourceType: res.Name,
			Payload:      payload,
			UpdatedBy:    updatedBy,
		}); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update content")
		}
		rec, err := s.repo.FindOne(ctx, res.Name, "")
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload content")
		}
		out = present(rec.Payload, "", rec.CreatedAt, rec.UpdatedAt)
	}

	s.afterWrite(ctx, res.Name, "update")
	return out, nil
}

func (s *service) Create(ctx context.Context, actor Actor, resource string, body Record) (Record, error) {
	res, err := lookupCollection(resource)
	if err != nil {
		return nil, err
	}
	if actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "creating content requires admin access")
	}
	if body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	rec := &models.ContentRecord{
		ResourceType: res.Name,
		ResourceID:   uuid.NewString(),
		Payload:      clean(body),
		UpdatedBy:    actorID(actor),
	}
	if err := s.repo.Append(ctx, rec); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create content")
	}
	s.afterWrite(ctx, res.Name, "create")
	return present(rec.Payload, rec.ResourceID, rec.CreatedAt, rec.UpdatedAt), nil
}

func (s *service) Delete(ctx context.Context, actor Actor, resource, id string) error {
	res, err := lookupCollection(resource)
	if err != nil {
		return err
	}
	if actor.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "deleting content requires admin access")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	found, err := s.repo.Delete(ctx, res.Name, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete content")
	}
	if !found {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s %s not found", res.Name, id)
	}
	s.afterWrite(ctx, res.Name, "delete")
	return nil
}

func (s *service) afterWrite(ctx context.Context, resource, op string) {
	if s.cache != nil {
		if err := s.cache.Del(ctx, s.cache.ContentCacheKey(resource)); err != nil {
			s.logg.Warn(s.logg.WithResource(ctx, resource), "content.cache_invalidate_failed")
		}
	}
	if s.metrics != nil {
		s.metrics.IncContentWrite(resource, op)
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"resource": resource, "op": op}), "content.write")
}

func (s *service) readCache(ctx context.Context, resource string, dest any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, s.cache.ContentCacheKey(resource))
	if err != nil {
		if !redis.IsMiss(err) {
			s.logg.Warn(s.logg.WithResource(ctx, resource), "content.cache_read_failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false
	}
	return true
}

func (s *service) writeCache(ctx context.Context, resource string, value any) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.ContentCacheKey(resource), string(raw), s.cacheTTL); err != nil {
		s.logg.Warn(s.logg.WithResource(ctx, resource), "content.cache_write_failed")
	}
}

func lookup(resource string) (Resource, error) {
	res, ok := LookupResource(resource)
	if !ok {
		return Resource{}, pkgerrors.Newf(pkgerrors.CodeNotFound, "unknown content resource %q", resource)
	}
	return res, nil
}

func lookupCollection(resource string) (Resource, error) {
	res, err := lookup(resource)
	if err != nil {
		return Resource{}, err
	}
	if !res.Collection {
		return Resource{}, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is not a collection", res.Name)
	}
	return res, nil
}

func actorID(actor Actor) *uuid.UUID {
	if actor.UserID == uuid.Nil {
		return nil
	}
	id := actor.UserID
	return &id
}
