package content

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amanagarwal0602/randomcafe-sub001/pkg/enums"
	pkgerrors "github.com/amanagarwal0602/randomcafe-sub001/pkg/errors"
	"github.com/amanagarwal0602/randomcafe-sub001/pkg/logger"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.Exec(`CREATE TABLE content_records (
		id TEXT PRIMARY KEY,
		resource_type TEXT NOT NULL,
		resource_id TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		payload TEXT NOT NULL,
		updated_by TEXT,
		created_at DATETIME,
		updated_at DATETIME,
		UNIQUE (resource_type, resource_id)
	)`).Error)
	return conn
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.data[key] = fmt.Sprint(value)
	return nil
}

func (c *fakeCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *fakeCache) ContentCacheKey(resource string) string {
	return "content:" + resource
}

type writeCounter struct {
	counts map[string]int
}

func (w *writeCounter) IncContentWrite(resource, op string) {
	if w.counts == nil {
		w.counts = map[string]int{}
	}
	w.counts[resource+":"+op]++
}

type fixture struct {
	svc     Service
	repo    *Repository
	cache   *fakeCache
	metrics *writeCounter
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	repo := NewRepository(openTestDB(t))
	cache := newFakeCache()
	metrics := &writeCounter{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Cache:    cache,
		CacheTTL: time.Minute,
		Metrics:  metrics,
		Logger:   logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard}),
	})
	require.NoError(t, err)
	return fixture{svc: svc, repo: repo, cache: cache, metrics: metrics}
}

var (
	admin    = Actor{UserID: uuid.New(), Role: enums.RoleAdmin}
	staff    = Actor{UserID: uuid.New(), Role: enums.RoleStaff}
	customer = Actor{UserID: uuid.New(), Role: enums.RoleCustomer}
)

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestGetMissingSingletonReturnsEmptyRecord(t *testing.T) {
	f := newFixture(t)
	rec, err := f.svc.Get(context.Background(), ResourceHero)
	require.NoError(t, err)
	assert.Empty(t, rec)
}

func TestPutSingletonReplacesDocument(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Put(ctx, staff, ResourceHero, "", Record{"title": "Fresh roast", "subtitle": "Daily", "ctaText": "Order"})
	require.NoError(t, err)

	out, err := f.svc.Put(ctx, staff, ResourceHero, "", Record{"title": "Cold brew", "subtitle": "All summer"})
	require.NoError(t, err)
	assert.Equal(t, "Cold brew", out["title"])
	assert.NotContains(t, out, "ctaText")

	stored, err := f.svc.Get(ctx, ResourceHero)
	require.NoError(t, err)
	assert.Equal(t, "All summer", stored["subtitle"])
	assert.Equal(t, 2, f.metrics.counts["hero:update"])
}

func TestPutIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	body := Record{"siteName": "Random Cafe", "tagline": "Since 2024"}

	_, err := f.svc.Put(ctx, admin, ResourceSiteSettings, "", body)
	require.NoError(t, err)
	first, err := f.repo.FindOne(ctx, ResourceSiteSettings, "")
	require.NoError(t, err)

	_, err = f.svc.Put(ctx, admin, ResourceSiteSettings, "", body)
	require.NoError(t, err)
	second, err := f.repo.FindOne(ctx, ResourceSiteSettings, "")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Payload, second.Payload)
}

func TestPutContactInfoMergesOpeningHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Put(ctx, staff, ResourceContactInfo, "", Record{"phone": "555-0100", "addressCity": "Springfield"})
	require.NoError(t, err)
	out, err := f.svc.Put(ctx, staff, ResourceContactInfo, "", Record{"openingHours": map[string]any{"monday": "8-17"}})
	require.NoError(t, err)

	assert.Equal(t, "555-0100", out["phone"])
	assert.Equal(t, map[string]any{"monday": "8-17"}, out["openingHours"])
}

func TestPutCollectionRequiresExistingRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Put(ctx, staff, ResourceMenu, "missing", Record{"name": "Latte"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = f.svc.Put(ctx, staff, ResourceMenu, "", Record{"name": "Latte"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	created, err := f.svc.Create(ctx, admin, ResourceMenu, Record{"name": "Latte", "price": 4.5})
	require.NoError(t, err)
	id := created["id"].(string)

	updated, err := f.svc.Put(ctx, staff, ResourceMenu, id, Record{"id": id, "name": "Oat Latte", "price": 5.0, "updatedAt": "stale"})
	require.NoError(t, err)
	assert.Equal(t, "Oat Latte", updated["name"])
	assert.Equal(t, id, updated["id"])

	row, err := f.repo.FindOne(ctx, ResourceMenu, id)
	require.NoError(t, err)
	assert.NotContains(t, row.Payload, "id")
	assert.NotContains(t, row.Payload, "updatedAt")
	require.NotNil(t, row.UpdatedBy)
	assert.Equal(t, staff.UserID, *row.UpdatedBy)
}

func TestPutRequiresEditorRole(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Put(context.Background(), customer, ResourceHero, "", Record{"title": "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestPutUnknownResource(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Put(context.Background(), admin, "blog", "", Record{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestPutSanitizesMarkup(t *testing.T) {
	f := newFixture(t)
	out, err := f.svc.Put(context.Background(), admin, ResourceAbout, "", Record{
		"title":   "Our <b>story</b>",
		"content": `Hello<script>alert(1)</script>`,
		"plain":   "5 > 3 is not markup-free",
	})
	require.NoError(t, err)
	assert.Equal(t, "Our <b>story</b>", out["title"])
	assert.Equal(t, "Hello", out["content"])
	assert.Equal(t, "5 &gt; 3 is not markup-free", out["plain"])
}

func TestListOrdersAndFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, admin, ResourceReviews, Record{"userName": "Ann", "rating": 5, "isApproved": true})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, admin, ResourceReviews, Record{"userName": "Bob", "rating": 2})
	require.NoError(t, err)

	public, err := f.svc.List(ctx, ResourceReviews, Viewer{Role: enums.RoleNone}, false)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Ann", public[0]["userName"])

	staffView, err := f.svc.List(ctx, ResourceReviews, Viewer{Role: enums.RoleStaff}, false)
	require.NoError(t, err)
	require.Len(t, staffView, 2)
	assert.Equal(t, "Ann", staffView[0]["userName"])
	assert.Equal(t, "Bob", staffView[1]["userName"])
}

func TestListFeaturesActiveAndAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, admin, ResourceFeatures, Record{"title": "Wifi"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, admin, ResourceFeatures, Record{"title": "Patio", "isActive": false})
	require.NoError(t, err)

	active, err := f.svc.List(ctx, ResourceFeatures, Viewer{}, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	anonymous, err := f.svc.List(ctx, ResourceFeatures, Viewer{}, true)
	require.NoError(t, err)
	assert.Len(t, anonymous, 1, "all must not reveal inactive features to the public")

	customer, err := f.svc.List(ctx, ResourceFeatures, Viewer{Role: enums.RoleCustomer}, true)
	require.NoError(t, err)
	assert.Len(t, customer, 1)

	all, err := f.svc.List(ctx, ResourceFeatures, Viewer{Role: enums.RoleStaff}, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListAllReviewsHidesUnapprovedFromPublic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, admin, ResourceReviews, Record{"userName": "Ann", "rating": 5, "isApproved": true})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, admin, ResourceReviews, Record{"userName": "Bob", "rating": 2, "isApproved": false})
	require.NoError(t, err)

	for _, viewer := range []Viewer{{}, {Role: enums.RoleCustomer}} {
		got, err := f.svc.List(ctx, ResourceReviews, viewer, true)
		require.NoError(t, err)
		require.Len(t, got, 1, "role %q", viewer.Role)
		assert.Equal(t, "Ann", got[0]["userName"])
	}

	got, err := f.svc.List(ctx, ResourceReviews, Viewer{Role: enums.RoleAdmin}, true)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestListUsesCacheUntilWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.svc.Create(ctx, admin, ResourceTeam, Record{"name": "Kim", "role": "Barista"})
	require.NoError(t, err)

	_, err = f.svc.List(ctx, ResourceTeam, Viewer{}, false)
	require.NoError(t, err)
	_, cached := f.cache.data[f.cache.ContentCacheKey(ResourceTeam)]
	require.True(t, cached)

	// A row written behind the service stays invisible while cached.
	require.NoError(t, f.repo.db.Exec(`DELETE FROM content_records WHERE resource_type = ?`, ResourceTeam).Error)
	stale, err := f.svc.List(ctx, ResourceTeam, Viewer{}, false)
	require.NoError(t, err)
	assert.Len(t, stale, 1)

	err = f.svc.Delete(ctx, admin, ResourceTeam, created["id"].(string))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, cached = f.cache.data[f.cache.ContentCacheKey(ResourceTeam)]
	assert.True(t, cached, "failed delete must not invalidate")

	_, err = f.svc.Create(ctx, admin, ResourceTeam, Record{"name": "Lee", "role": "Baker"})
	require.NoError(t, err)
	fresh, err := f.svc.List(ctx, ResourceTeam, Viewer{}, false)
	require.NoError(t, err)
	require.Len(t, fresh, 1)
	assert.Equal(t, "Lee", fresh[0]["name"])
}

func TestCreateAndDeleteRequireAdmin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, staff, ResourceGallery, Record{"title": "Mural"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = f.svc.Create(ctx, admin, ResourceHero, Record{"title": "x"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	created, err := f.svc.Create(ctx, admin, ResourceGallery, Record{"title": "Mural"})
	require.NoError(t, err)
	id := created["id"].(string)

	assert.True(t, pkgerrors.IsCode(f.svc.Delete(ctx, staff, ResourceGallery, id), pkgerrors.CodeForbidden))
	require.NoError(t, f.svc.Delete(ctx, admin, ResourceGallery, id))

	_, err = f.svc.GetItem(ctx, ResourceGallery, id)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, 1, f.metrics.counts["gallery:delete"])
}

func TestAppendAssignsIncreasingPositions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		_, err := f.svc.Create(ctx, admin, ResourceMenu, Record{"name": name})
		require.NoError(t, err)
	}
	rows, err := f.repo.List(ctx, ResourceMenu)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i, row := range rows {
		assert.Equal(t, i, row.Position)
	}
}
