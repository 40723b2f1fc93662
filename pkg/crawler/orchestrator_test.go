package crawler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "likeswatch/pkg/errors"
	"likeswatch/pkg/logger"
	"likeswatch/pkg/models"
)

type memoryStore struct {
	mu      sync.Mutex
	targets []models.Target
	mutes   []models.MuteRule
	items   map[string]bool
	saveErr error
}

func newMemoryStore(targets ...models.Target) *memoryStore {
	return &memoryStore{targets: targets, items: make(map[string]bool)}
}

func (m *memoryStore) ListTargets(context.Context) ([]models.Target, error) {
	return m.targets, nil
}

func (m *memoryStore) ListMuteRules(context.Context) ([]models.MuteRule, error) {
	return m.mutes, nil
}

func (m *memoryStore) Exists(_ context.Context, targetID, postID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[targetID+"/"+postID], nil
}

func (m *memoryStore) CountSeen(_ context.Context, targetID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for key := range m.items {
		if len(key) > len(targetID) && key[:len(targetID)+1] == targetID+"/" {
			count++
		}
	}
	return count, nil
}

func (m *memoryStore) Save(_ context.Context, targetID string, post models.Post) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[targetID+"/"+post.PostID] = true
	return nil
}

func (m *memoryStore) GetPost(context.Context, string) (*models.Post, error) { return nil, nil }
func (m *memoryStore) Close() error                                          { return nil }

type fakeSource struct {
	likes map[string][]models.Post
	errs  map[string]error
}

func (f *fakeSource) FetchLikes(_ context.Context, accountID string, _ int) ([]models.Post, error) {
	if err := f.errs[accountID]; err != nil {
		return nil, err
	}
	return f.likes[accountID], nil
}

type notification struct {
	targetID string
	postID   string
}

type fakeNotifier struct {
	sent      []notification
	notifyErr error
}

func (f *fakeNotifier) Notify(_ context.Context, target models.Target, post models.Post) error {
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.sent = append(f.sent, notification{targetID: target.AccountID, postID: post.PostID})
	return nil
}

func photoPost(id string) models.Post {
	return models.Post{
		PostID: id,
		Media:  []models.MediaRef{{MediaID: "m" + id, Kind: models.MediaPhoto}},
	}
}

func testOrchestrator(t *testing.T, source *fakeSource, store *memoryStore, notifier *fakeNotifier) *Orchestrator {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "disabled"})
	require.NoError(t, err)
	return New(source, store, notifier, Config{Interval: time.Minute, FetchLimit: 100}, log)
}

func seedTarget(store *memoryStore, targetID string, postIDs ...string) {
	for _, id := range postIDs {
		store.items[targetID+"/"+id] = true
	}
}

func TestSweepNotifiesNewPostsInFetchOrder(t *testing.T) {
	store := newMemoryStore(models.Target{AccountID: "t1", NotifyChannelID: "c1"})
	seedTarget(store, "t1", "0")
	source := &fakeSource{likes: map[string][]models.Post{
		"t1": {photoPost("3"), photoPost("2"), photoPost("1")},
	}}
	notifier := &fakeNotifier{}

	testOrchestrator(t, source, store, notifier).Sweep(context.Background())

	require.Len(t, notifier.sent, 3)
	assert.Equal(t, "3", notifier.sent[0].postID)
	assert.Equal(t, "2", notifier.sent[1].postID)
	assert.Equal(t, "1", notifier.sent[2].postID)
	assert.True(t, store.items["t1/3"])
}

func TestSweepIsIdempotent(t *testing.T) {
	store := newMemoryStore(models.Target{AccountID: "t1", NotifyChannelID: "c1"})
	seedTarget(store, "t1", "0")
	source := &fakeSource{likes: map[string][]models.Post{
		"t1": {photoPost("1"), photoPost("2")},
	}}
	notifier := &fakeNotifier{}
	o := testOrchestrator(t, source, store, notifier)

	o.Sweep(context.Background())
	o.Sweep(context.Background())

	// Already-recorded posts are never notified again
	assert.Len(t, notifier.sent, 2)
}

func TestSweepFirstRunSeedsWithoutNotifying(t *testing.T) {
	store := newMemoryStore(models.Target{AccountID: "t1", NotifyChannelID: "c1"})
	source := &fakeSource{likes: map[string][]models.Post{
		"t1": {photoPost("1"), photoPost("2")},
	}}
	notifier := &fakeNotifier{}
	o := testOrchestrator(t, source, store, notifier)

	o.Sweep(context.Background())

	assert.Empty(t, notifier.sent)
	assert.True(t, store.items["t1/1"])
	assert.True(t, store.items["t1/2"])

	// The next sweep only relays what arrived since the seed
	source.likes["t1"] = []models.Post{photoPost("3"), photoPost("1")}
	o.Sweep(context.Background())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "3", notifier.sent[0].postID)
}

func TestSweepIsolatesFailingTarget(t *testing.T) {
	store := newMemoryStore(
		models.Target{AccountID: "broken", NotifyChannelID: "c1"},
		models.Target{AccountID: "t2", NotifyChannelID: "c2"},
	)
	seedTarget(store, "t2", "0")
	source := &fakeSource{
		likes: map[string][]models.Post{"t2": {photoPost("1")}},
		errs:  map[string]error{"broken": errs.New(errs.ErrorTypeResolutionTimeout, "no redirect")},
	}
	notifier := &fakeNotifier{}

	testOrchestrator(t, source, store, notifier).Sweep(context.Background())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "t2", notifier.sent[0].targetID)
}

func TestSweepNotifyFailureKeepsPostRecorded(t *testing.T) {
	store := newMemoryStore(models.Target{AccountID: "t1", NotifyChannelID: "c1"})
	seedTarget(store, "t1", "0")
	source := &fakeSource{likes: map[string][]models.Post{"t1": {photoPost("1")}}}
	notifier := &fakeNotifier{notifyErr: errors.New("gateway down")}

	testOrchestrator(t, source, store, notifier).Sweep(context.Background())

	// The dedup record wins over redelivery
	assert.True(t, store.items["t1/1"])
}

func TestSweepSaveFailureSkipsNotification(t *testing.T) {
	store := newMemoryStore(models.Target{AccountID: "t1", NotifyChannelID: "c1"})
	seedTarget(store, "t1", "0")
	store.saveErr = errs.New(errs.ErrorTypeStorage, "disk full")
	source := &fakeSource{likes: map[string][]models.Post{"t1": {photoPost("1")}}}
	notifier := &fakeNotifier{}

	testOrchestrator(t, source, store, notifier).Sweep(context.Background())

	assert.Empty(t, notifier.sent)
}

func TestSweepAppliesMuteRules(t *testing.T) {
	store := newMemoryStore(models.Target{AccountID: "t1", NotifyChannelID: "c1"})
	seedTarget(store, "t1", "0")
	store.mutes = []models.MuteRule{{Pattern: "commission"}}
	muted := photoPost("1")
	muted.Text = "Commissions open!"
	source := &fakeSource{likes: map[string][]models.Post{"t1": {muted, photoPost("2")}}}
	notifier := &fakeNotifier{}

	testOrchestrator(t, source, store, notifier).Sweep(context.Background())

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "2", notifier.sent[0].postID)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := newMemoryStore()
	o := testOrchestrator(t, &fakeSource{}, store, &fakeNotifier{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("run loop did not stop")
	}
}
