package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"likeswatch/pkg/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func samplePost(id string) models.Post {
	return models.Post{
		PostID:          id,
		AuthorID:        "900",
		AuthorHandle:    "someone",
		AuthorName:      "Some One",
		AuthorAvatarURL: "https://pbs.example/a.jpg",
		Text:            "post " + id,
		Hashtags:        []string{"go", "news"},
		Media: []models.MediaRef{{
			MediaID: "m" + id,
			Kind:    models.MediaPhoto,
			URL:     "https://pbs.example/" + id + ".jpg",
			URLType: "https",
			Sizes:   []models.MediaSize{{Name: "large", Width: 2048, Height: 1536}},
		}},
		CreatedAt:    time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		LikeCount:    7,
		RetweetCount: 2,
	}
}

func TestSaveAndExists(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	exists, err := store.Exists(ctx, "t1", "1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Save(ctx, "t1", samplePost("1")))

	exists, err = store.Exists(ctx, "t1", "1")
	require.NoError(t, err)
	assert.True(t, exists)

	// Same post under another target is a distinct item
	exists, err = store.Exists(ctx, "t2", "1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSaveIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "t1", samplePost("1")))
	require.NoError(t, store.Save(ctx, "t1", samplePost("1")))

	count, err := store.CountSeen(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCountSeenPerTarget(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "t1", samplePost("1")))
	require.NoError(t, store.Save(ctx, "t1", samplePost("2")))
	require.NoError(t, store.Save(ctx, "t2", samplePost("3")))

	count, err := store.CountSeen(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountSeen(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGetPostRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := samplePost("42")
	require.NoError(t, store.Save(ctx, "t1", want))

	got, err := store.GetPost(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)

	missing, err := store.GetPost(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTargetAdminRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddTarget(ctx, models.Target{AccountID: "100", DisplayName: "first"}))
	require.NoError(t, store.AddTarget(ctx, models.Target{AccountID: "200", DisplayName: "second", NotifyChannelID: "chan-2"}))

	// Re-adding updates in place
	require.NoError(t, store.AddTarget(ctx, models.Target{AccountID: "100", DisplayName: "renamed"}))

	targets, err := store.ListTargets(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 2)
	assert.Equal(t, "renamed", targets[0].DisplayName)
	assert.Equal(t, "chan-2", targets[1].NotifyChannelID)

	require.NoError(t, store.RemoveTarget(ctx, "100"))
	targets, err = store.ListTargets(ctx)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "200", targets[0].AccountID)
}

func TestMuteRuleAdminRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddMuteRule(ctx, models.MuteRule{Pattern: "spoiler"}))
	require.NoError(t, store.AddMuteRule(ctx, models.MuteRule{Pattern: "spoiler"}))
	require.NoError(t, store.AddMuteRule(ctx, models.MuteRule{Pattern: "ad"}))

	rules, err := store.ListMuteRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "ad", rules[0].Pattern)
	assert.Equal(t, "spoiler", rules[1].Pattern)

	require.NoError(t, store.RemoveMuteRule(ctx, "ad"))
	rules, err = store.ListMuteRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "data.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), "t1", samplePost("1")))
}
