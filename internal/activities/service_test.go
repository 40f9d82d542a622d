package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tourly/internal/shared/middleware"
	"tourly/pkg/cache"
	"tourly/pkg/logger"
	"tourly/pkg/media"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepository struct {
	activities map[string]*Activity
	images     map[string]*ActivityImage
	listCalls  int
}

func newMemRepository() *memRepository {
	return &memRepository{activities: map[string]*Activity{}, images: map[string]*ActivityImage{}}
}

func (m *memRepository) Create(_ context.Context, a *Activity) error {
	for _, existing := range m.activities {
		if existing.Slug == a.Slug {
			return ErrSlugTaken
		}
	}
	copied := *a
	m.activities[a.ID] = &copied
	return nil
}

func (m *memRepository) withImages(a *Activity) *Activity {
	out := *a
	out.Images = nil
	for _, img := range m.images {
		if img.ActivityID == a.ID {
			out.Images = append(out.Images, *img)
		}
	}
	return &out
}

func (m *memRepository) GetByID(_ context.Context, id string) (*Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, ErrActivityNotFound
	}
	return m.withImages(a), nil
}

func (m *memRepository) GetBySlug(_ context.Context, slug string) (*Activity, error) {
	for _, a := range m.activities {
		if a.Slug == slug {
			return m.withImages(a), nil
		}
	}
	return nil, ErrActivityNotFound
}

func (m *memRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	_, err := m.GetBySlug(ctx, slug)
	return err == nil, nil
}

func (m *memRepository) Update(ctx context.Context, id string, updates map[string]interface{}) (*Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, ErrActivityNotFound
	}
	if v, ok := updates["title"]; ok {
		a.Title = v.(string)
	}
	if v, ok := updates["is_active"]; ok {
		a.IsActive = v.(bool)
	}
	return m.GetByID(ctx, id)
}

func (m *memRepository) Delete(_ context.Context, id string) error {
	if _, ok := m.activities[id]; !ok {
		return ErrActivityNotFound
	}
	delete(m.activities, id)
	for k, img := range m.images {
		if img.ActivityID == id {
			delete(m.images, k)
		}
	}
	return nil
}

func (m *memRepository) List(_ context.Context, q ListQuery) ([]Activity, int64, error) {
	m.listCalls++
	var out []Activity
	for _, a := range m.activities {
		if !q.IncludeInactive && !a.IsActive {
			continue
		}
		if q.Category != "" && a.Category != q.Category {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (m *memRepository) AddImage(_ context.Context, img *ActivityImage) error {
	copied := *img
	m.images[img.ID] = &copied
	return nil
}

func (m *memRepository) GetImage(_ context.Context, activityID, imageID string) (*ActivityImage, error) {
	img, ok := m.images[imageID]
	if !ok || img.ActivityID != activityID {
		return nil, ErrImageNotFound
	}
	return img, nil
}

func (m *memRepository) DeleteImage(_ context.Context, imageID string) error {
	delete(m.images, imageID)
	return nil
}

func (m *memRepository) NextImagePosition(_ context.Context, activityID string) (int, error) {
	n := 0
	for _, img := range m.images {
		if img.ActivityID == activityID {
			n++
		}
	}
	return n, nil
}

type fakeImageStore struct {
	uploaded []string
	deleted  []string
	err      error
}

func (f *fakeImageStore) Upload(_ context.Context, key string, _ []byte, _ string) (*media.Object, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploaded = append(f.uploaded, key)
	return &media.Object{URL: "https://cdn.test/" + key, Provider: media.ProviderS3, Key: key}, nil
}

func (f *fakeImageStore) DeleteFrom(_ context.Context, _ string, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

// countingCache keeps values in memory so cache hits can be observed
type countingCache struct {
	cache.Noop
	entries     map[string][]byte
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{entries: map[string][]byte{}}
}

func (c *countingCache) GetOrSet(_ context.Context, key string, _ time.Duration, fetch func() (interface{}, error), dest interface{}) error {
	if raw, ok := c.entries[key]; ok {
		return json.Unmarshal(raw, dest)
	}
	v, err := fetch()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return json.Unmarshal(raw, dest)
}

func (c *countingCache) DeletePattern(context.Context, string) error {
	c.invalidated++
	c.entries = map[string][]byte{}
	return nil
}

func newTestService() (Service, *memRepository, *fakeImageStore) {
	repo := newMemRepository()
	store := &fakeImageStore{}
	svc := NewService(repo, "EUR", logger.Discard())
	svc.SetImageStore(store)
	return svc, repo, store
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "sunset-boat-tour-mallorca", Slugify("  Sunset Boat Tour: Mallorca! "))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestCreateActivityDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	a, err := svc.CreateActivity(context.Background(), CreateActivityRequest{
		Title:      "Jet Ski Safari",
		Category:   "jet_ski",
		PriceAdult: 75,
	})

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.ID, IDPrefix))
	assert.Equal(t, "jet-ski-safari", a.Slug)
	assert.Equal(t, "EUR", a.Currency)
	assert.True(t, a.IsActive)
}

func TestCreateActivityGeneratedSlugCollision(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Quad Biking", Category: "quad_biking"})
	require.NoError(t, err)
	second, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Quad Biking", Category: "quad_biking"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Slug, second.Slug)
	assert.True(t, strings.HasPrefix(second.Slug, "quad-biking-"))
}

func TestCreateActivityExplicitSlugTaken(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Boat", Slug: "boat", Category: "boat_tour"})
	require.NoError(t, err)
	_, err = svc.CreateActivity(ctx, CreateActivityRequest{Title: "Boat 2", Slug: "boat", Category: "boat_tour"})

	assert.ErrorIs(t, err, ErrSlugTaken)
}

func TestGetActivityByIDOrSlug(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	created, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Kayak Caves", Category: "kayak"})
	require.NoError(t, err)

	byID, err := svc.GetActivity(ctx, created.ID)
	require.NoError(t, err)
	bySlug, err := svc.GetActivity(ctx, "kayak-caves")
	require.NoError(t, err)

	assert.Equal(t, created.ID, byID.ID)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = svc.GetActivity(ctx, "act_missing")
	assert.ErrorIs(t, err, ErrActivityNotFound)
}

func TestListActivitiesIsCachedAndInvalidatedOnWrite(t *testing.T) {
	svc, repo, _ := newTestService()
	c := newCountingCache()
	svc.SetCacheService(c)
	ctx := context.Background()

	_, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Snorkel", Category: "water"})
	require.NoError(t, err)

	first, err := svc.ListActivities(ctx, ListQuery{})
	require.NoError(t, err)
	_, err = svc.ListActivities(ctx, ListQuery{})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, 12, first.Limit)
	assert.EqualValues(t, 1, first.TotalCount)

	_, err = svc.CreateActivity(ctx, CreateActivityRequest{Title: "Paddle", Category: "water"})
	require.NoError(t, err)
	after, err := svc.ListActivities(ctx, ListQuery{})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
	assert.EqualValues(t, 2, after.TotalCount)
	assert.Equal(t, 2, c.invalidated)
}

func TestListActivitiesHidesInactive(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	inactive := false

	_, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Draft Tour", Category: "boat_tour", IsActive: &inactive})
	require.NoError(t, err)

	public, err := svc.ListActivities(ctx, ListQuery{})
	require.NoError(t, err)
	admin, err := svc.ListActivities(ctx, ListQuery{IncludeInactive: true})
	require.NoError(t, err)

	assert.EqualValues(t, 0, public.TotalCount)
	assert.EqualValues(t, 1, admin.TotalCount)
}

func TestAddAndDeleteImage(t *testing.T) {
	svc, repo, store := newTestService()
	ctx := context.Background()
	a, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Cliff Jump", Category: "adventure"})
	require.NoError(t, err)

	img, err := svc.AddImage(ctx, a.ID, ImageUpload{Filename: "cliff.PNG", ContentType: "image/png", Data: []byte("x")})
	require.NoError(t, err)

	assert.Equal(t, media.ProviderS3, img.Provider)
	assert.Equal(t, 0, img.Position)
	assert.True(t, strings.HasPrefix(img.ObjectKey, "activities/"+a.ID+"/"))
	assert.Len(t, repo.images, 1)

	require.NoError(t, svc.DeleteImage(ctx, a.ID, img.ID))
	assert.Empty(t, repo.images)
	assert.Equal(t, []string{img.ObjectKey}, store.deleted)

	assert.ErrorIs(t, svc.DeleteImage(ctx, a.ID, img.ID), ErrImageNotFound)
}

func TestAddImageUploadFailureStoresNothing(t *testing.T) {
	svc, repo, store := newTestService()
	store.err = errors.New("all providers down")
	ctx := context.Background()
	a, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Cliff Jump", Category: "adventure"})
	require.NoError(t, err)

	_, err = svc.AddImage(ctx, a.ID, ImageUpload{Filename: "a.png", Data: []byte("x")})

	assert.Error(t, err)
	assert.Empty(t, repo.images)
}

func TestDeleteActivityRemovesStoredImages(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()
	a, err := svc.CreateActivity(ctx, CreateActivityRequest{Title: "Parasail", Category: "water"})
	require.NoError(t, err)
	img, err := svc.AddImage(ctx, a.ID, ImageUpload{Filename: "p.jpg", Data: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteActivity(ctx, a.ID))

	assert.Equal(t, []string{img.ObjectKey}, store.deleted)
	assert.ErrorIs(t, svc.DeleteActivity(ctx, a.ID), ErrActivityNotFound)
}

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	admin := api.Group("/admin", func(c *gin.Context) {
		c.Set(middleware.ContextUserRole, middleware.RoleAdmin)
		c.Next()
	})
	SetupActivityRoutes(api, admin, NewController(svc, 1024))
	return r
}

func TestPublicGetHidesInactiveActivity(t *testing.T) {
	svc, _, _ := newTestService()
	inactive := false
	a, err := svc.CreateActivity(context.Background(), CreateActivityRequest{Title: "Hidden", Category: "x", IsActive: &inactive})
	require.NoError(t, err)
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/activities/"+a.ID, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/activities/"+a.ID, nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateActivityValidation(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/activities", strings.NewReader(`{"title":"ab"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "category")
}

func multipartImage(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text", "view from the boat"))
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadImageEndpoint(t *testing.T) {
	svc, _, _ := newTestService()
	a, err := svc.CreateActivity(context.Background(), CreateActivityRequest{Title: "Boat Trip", Category: "boat_tour"})
	require.NoError(t, err)
	r := setupRouter(svc)

	png := []byte("\x89PNG\r\n\x1a\n0000000000")
	body, contentType := multipartImage(t, "boat.png", png)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/activities/"+a.ID+"/images", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "view from the boat")
}

func TestUploadImageRejectsNonImage(t *testing.T) {
	svc, _, _ := newTestService()
	a, err := svc.CreateActivity(context.Background(), CreateActivityRequest{Title: "Boat Trip", Category: "boat_tour"})
	require.NoError(t, err)
	r := setupRouter(svc)

	body, contentType := multipartImage(t, "notes.png", []byte("plain text pretending to be a png"))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/activities/"+a.ID+"/images", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestUploadImageTooLarge(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	body, contentType := multipartImage(t, "big.png", bytes.Repeat([]byte("a"), 2048))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/activities/act_x/images", body)
	req.Header.Set("Content-Type", contentType)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
