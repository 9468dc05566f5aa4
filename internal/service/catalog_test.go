package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"closetube/internal/model"
	"closetube/internal/repository"

	"gorm.io/gorm"
)

// fakeVideoRepo is an in-memory stand-in for the MySQL adapter. It mirrors
// the store's contract: unique (group, provider, externalID) insertion,
// atomic counter bumps under a lock, created_at DESC / id ASC ordering.
type fakeVideoRepo struct {
	mu     sync.Mutex
	videos map[string]*model.Video

	// hideNextFindBySource makes the dedup pre-check miss once, forcing
	// the create path into the duplicate-key branch like a lost race.
	hideNextFindBySource bool
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]*model.Video)}
}

func (f *fakeVideoRepo) Create(_ context.Context, video *model.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.videos {
		if v.GroupID == video.GroupID && v.Provider == video.Provider && v.ExternalID == video.ExternalID {
			return repository.ErrDuplicateSource
		}
	}
	copied := *video
	f.videos[video.ID] = &copied
	return nil
}

func (f *fakeVideoRepo) FindByID(_ context.Context, id string) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *v
	return &copied, nil
}

func (f *fakeVideoRepo) FindBySource(_ context.Context, groupID string, provider model.Provider, externalID string) (*model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hideNextFindBySource {
		f.hideNextFindBySource = false
		return nil, gorm.ErrRecordNotFound
	}
	for _, v := range f.videos {
		if v.GroupID == groupID && v.Provider == provider && v.ExternalID == externalID {
			copied := *v
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeVideoRepo) List(_ context.Context, groupID string, limit, offset int) ([]model.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []model.Video
	for _, v := range f.videos {
		if groupID == "" || v.GroupID == groupID {
			all = append(all, *v)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeVideoRepo) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.videos[id]; !ok {
		return false, nil
	}
	delete(f.videos, id)
	return true, nil
}

func (f *fakeVideoRepo) IncrementLikeCount(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.videos[id]
	if !ok {
		return false, nil
	}
	v.LikeCount++
	return true, nil
}

func (f *fakeVideoRepo) UpdateMetadata(_ context.Context, id, title, thumbnailURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.videos[id]; ok {
		if title != "" {
			v.Title = title
		}
		if thumbnailURL != "" {
			v.ThumbnailURL = thumbnailURL
		}
	}
	return nil
}

func (f *fakeVideoRepo) GetVideoCache(context.Context, string) (*model.Video, error) { return nil, nil }
func (f *fakeVideoRepo) SetVideoCache(context.Context, *model.Video) error          { return nil }
func (f *fakeVideoRepo) InvalidateVideoCache(context.Context, string) error         { return nil }

type fakeGroupRepo struct {
	groups map[string]model.Group
}

func newFakeGroupRepo(ids ...string) *fakeGroupRepo {
	f := &fakeGroupRepo{groups: make(map[string]model.Group)}
	for _, id := range ids {
		f.groups[id] = model.Group{ID: id, Name: id}
	}
	return f
}

func (f *fakeGroupRepo) Exists(_ context.Context, id string) (bool, error) {
	_, ok := f.groups[id]
	return ok, nil
}

func (f *fakeGroupRepo) List(_ context.Context) ([]model.Group, error) {
	var out []model.Group
	for _, g := range f.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeGroupRepo) Create(_ context.Context, group *model.Group) error {
	f.groups[group.ID] = *group
	return nil
}

func newTestCatalog(videoRepo repository.VideoRepository, groups ...string) CatalogService {
	return NewCatalogService(videoRepo, newFakeGroupRepo(groups...), nil)
}

func TestCreateVideo_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestCatalog(newFakeVideoRepo(), "g1", "g2")

	first, err := svc.CreateVideo(ctx, "g1", "https://youtu.be/abc123", "")
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	if first.Provider != model.ProviderYouTube || first.ExternalID != "abc123" {
		t.Fatalf("normalized to (%s, %s), want (youtube, abc123)", first.Provider, first.ExternalID)
	}
	if first.LikeCount != 0 {
		t.Errorf("new record LikeCount = %d, want 0", first.LikeCount)
	}

	// Same external video, different URL shape: must return the same record.
	second, err := svc.CreateVideo(ctx, "g1", "https://www.youtube.com/watch?v=abc123", "")
	if err != nil {
		t.Fatalf("repeat CreateVideo failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeat submission created a new record: %s vs %s", second.ID, first.ID)
	}

	// Another group is a separate dedup scope.
	other, err := svc.CreateVideo(ctx, "g2", "https://youtu.be/abc123", "")
	if err != nil {
		t.Fatalf("CreateVideo in g2 failed: %v", err)
	}
	if other.ID == first.ID {
		t.Error("record leaked across group dedup boundary")
	}
}

func TestCreateVideo_DuplicateRaceReturnsWinner(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepo()
	svc := newTestCatalog(repo, "g1")

	first, err := svc.CreateVideo(ctx, "g1", "https://youtu.be/race01", "")
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	// Simulate losing the check-then-create race: the pre-check misses,
	// the insert collides with the unique index.
	repo.hideNextFindBySource = true
	second, err := svc.CreateVideo(ctx, "g1", "https://youtu.be/race01", "")
	if err != nil {
		t.Fatalf("CreateVideo after race failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("race produced a second record: %s vs %s", second.ID, first.ID)
	}
}

func TestCreateVideo_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestCatalog(newFakeVideoRepo(), "g1")

	if _, err := svc.CreateVideo(ctx, "missing-group", "https://youtu.be/abc123", ""); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("unknown group error = %v, want ErrGroupNotFound", err)
	}
	if _, err := svc.CreateVideo(ctx, "g1", "not a url", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad URL error = %v, want ErrInvalidInput", err)
	}
}

func TestGetVideo(t *testing.T) {
	ctx := context.Background()
	svc := newTestCatalog(newFakeVideoRepo(), "g1")

	created, err := svc.CreateVideo(ctx, "g1", "https://youtu.be/getme1", "uploader-1")
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	got, err := svc.GetVideo(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if got.ID != created.ID || got.UploaderID != "uploader-1" {
		t.Errorf("GetVideo returned wrong record: %+v", got)
	}

	if _, err := svc.GetVideo(ctx, "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id error = %v, want ErrNotFound", err)
	}
}

func TestLikeVideo_ConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepo()
	svc := newTestCatalog(repo, "g1")

	video, err := svc.CreateVideo(ctx, "g1", "https://youtu.be/likes1", "")
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	const n = 100
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			ok, err := svc.LikeVideo(ctx, video.ID)
			if err != nil || !ok {
				t.Errorf("LikeVideo = (%v, %v), want (true, nil)", ok, err)
			}
		}()
	}
	wg.Wait()

	got, err := svc.GetVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetVideo failed: %v", err)
	}
	if got.LikeCount != n {
		t.Errorf("LikeCount = %d after %d concurrent likes, want %d", got.LikeCount, n, n)
	}
}

func TestLikeVideo_MissingAndExisting(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepo()
	svc := newTestCatalog(repo, "g1")

	ok, err := svc.LikeVideo(ctx, "missing")
	if err != nil {
		t.Fatalf("LikeVideo on missing id errored: %v", err)
	}
	if ok {
		t.Error("LikeVideo on missing id = true, want false")
	}

	video, err := svc.CreateVideo(ctx, "g1", "https://youtu.be/like5to6", "")
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := svc.LikeVideo(ctx, video.ID); err != nil {
			t.Fatalf("LikeVideo failed: %v", err)
		}
	}

	ok, err = svc.LikeVideo(ctx, video.ID)
	if err != nil || !ok {
		t.Fatalf("LikeVideo = (%v, %v), want (true, nil)", ok, err)
	}
	got, _ := svc.GetVideo(ctx, video.ID)
	if got.LikeCount != 6 {
		t.Errorf("LikeCount = %d, want 6", got.LikeCount)
	}
}

func TestDeleteVideo_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestCatalog(newFakeVideoRepo(), "g1")

	ok, err := svc.DeleteVideo(ctx, "never-existed")
	if err != nil {
		t.Fatalf("DeleteVideo on missing id errored: %v", err)
	}
	if ok {
		t.Error("DeleteVideo on missing id = true, want false")
	}

	video, err := svc.CreateVideo(ctx, "g1", "https://youtu.be/delme1", "")
	if err != nil {
		t.Fatalf("CreateVideo failed: %v", err)
	}

	ok, err = svc.DeleteVideo(ctx, video.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteVideo = (%v, %v), want (true, nil)", ok, err)
	}

	// Terminal: the id stays gone.
	if _, err := svc.GetVideo(ctx, video.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetVideo after delete error = %v, want ErrNotFound", err)
	}
	ok, err = svc.DeleteVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("second DeleteVideo errored: %v", err)
	}
	if ok {
		t.Error("second DeleteVideo = true, want false")
	}
}

func TestListVideos_Pagination(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepo()
	svc := newTestCatalog(repo, "g1", "g2")

	// Seed directly so created_at is strictly decreasing and deterministic.
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	seeded := []string{"v1", "v2", "v3", "v4", "v5"}
	for i, id := range seeded {
		repo.videos[id] = &model.Video{
			ID:         id,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			GroupID:    "g1",
			Provider:   model.ProviderYouTube,
			ExternalID: id,
			SourceURL:  "https://youtu.be/" + id,
		}
	}
	repo.videos["other"] = &model.Video{
		ID: "other", CreatedAt: base.Add(time.Hour), GroupID: "g2",
		Provider: model.ProviderYouTube, ExternalID: "other",
	}

	page1, err := svc.ListVideos(ctx, "g1", 2, 0)
	if err != nil {
		t.Fatalf("ListVideos page 1 failed: %v", err)
	}
	page2, err := svc.ListVideos(ctx, "g1", 2, 2)
	if err != nil {
		t.Fatalf("ListVideos page 2 failed: %v", err)
	}

	wantPage1 := []string{"v5", "v4"}
	wantPage2 := []string{"v3", "v2"}
	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("window sizes = %d, %d, want 2, 2", len(page1), len(page2))
	}
	for i, v := range page1 {
		if v.ID != wantPage1[i] {
			t.Errorf("page1[%d] = %s, want %s", i, v.ID, wantPage1[i])
		}
		if v.GroupID != "g1" {
			t.Errorf("page1[%d] leaked group %s", i, v.GroupID)
		}
	}
	for i, v := range page2 {
		if v.ID != wantPage2[i] {
			t.Errorf("page2[%d] = %s, want %s", i, v.ID, wantPage2[i])
		}
	}

	// A window past the end is empty, not an error.
	tail, err := svc.ListVideos(ctx, "g1", 10, 50)
	if err != nil {
		t.Fatalf("ListVideos past end failed: %v", err)
	}
	if len(tail) != 0 {
		t.Errorf("past-end window returned %d records", len(tail))
	}

	// Omitted group spans all groups.
	all, err := svc.ListVideos(ctx, "", 100, 0)
	if err != nil {
		t.Fatalf("ListVideos all groups failed: %v", err)
	}
	if len(all) != 6 {
		t.Errorf("all-groups list length = %d, want 6", len(all))
	}
}

func TestListVideos_LimitClamping(t *testing.T) {
	ctx := context.Background()
	repo := newFakeVideoRepo()
	svc := newTestCatalog(repo, "g1")

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 150; i++ {
		id := uuidLike(i)
		repo.videos[id] = &model.Video{
			ID: id, CreatedAt: base.Add(time.Duration(i) * time.Second),
			GroupID: "g1", Provider: model.ProviderGeneric, ExternalID: id,
		}
	}

	defaulted, err := svc.ListVideos(ctx, "g1", 0, 0)
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(defaulted) != 20 {
		t.Errorf("limit 0 returned %d records, want default 20", len(defaulted))
	}

	clamped, err := svc.ListVideos(ctx, "g1", 1000, 0)
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(clamped) != 100 {
		t.Errorf("limit 1000 returned %d records, want clamp 100", len(clamped))
	}

	negOffset, err := svc.ListVideos(ctx, "g1", 5, -3)
	if err != nil {
		t.Fatalf("ListVideos failed: %v", err)
	}
	if len(negOffset) != 5 {
		t.Errorf("negative offset returned %d records, want 5", len(negOffset))
	}
}

// uuidLike keeps seeded IDs fixed-width so id ordering is stable.
func uuidLike(i int) string {
	const digits = "0123456789"
	return "seed-" + string(digits[(i/100)%10]) + string(digits[(i/10)%10]) + string(digits[i%10])
}
