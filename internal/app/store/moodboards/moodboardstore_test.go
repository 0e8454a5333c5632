package moodboardstore_test

import (
	"sync"
	"testing"
	"time"

	moodboardstore "github.com/dalemusser/planora/internal/app/store/moodboards"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/planora/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func strPtr(s string) *string { return &s }

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	b, err := store.Create(ctx, models.MoodBoard{OwnerID: owner, Title: "Açores Spring"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if b.Version != 1 {
		t.Errorf("Version: got %d, want 1", b.Version)
	}
	if b.TitleCI != text.Fold("Açores Spring") {
		t.Errorf("TitleCI: got %q", b.TitleCI)
	}
	if b.Themes == nil || b.Elements == nil {
		t.Error("expected empty slices, not nil")
	}

	got, err := store.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.OwnerID != owner {
		t.Errorf("OwnerID: got %v, want %v", got.OwnerID, owner)
	}
}

func TestStore_Update_BumpsVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.MoodBoard{OwnerID: primitive.NewObjectID(), Title: "Old"})

	themes := []string{"beach", "food"}
	up, err := store.Update(ctx, b.ID, nil, moodboardstore.Content{
		Title:  strPtr("New"),
		Themes: &themes,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if up.Version != 2 {
		t.Errorf("Version: got %d, want 2", up.Version)
	}
	if up.Title != "New" || len(up.Themes) != 2 {
		t.Errorf("unexpected board %+v", up)
	}
	if up.OwnerID != b.OwnerID {
		t.Error("owner must not change on update")
	}
}

func TestStore_Update_StaleVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.MoodBoard{OwnerID: primitive.NewObjectID(), Title: "T"})

	v := b.Version
	if _, err := store.Update(ctx, b.ID, &v, moodboardstore.Content{Vibe: strPtr("calm")}); err != nil {
		t.Fatalf("first Update failed: %v", err)
	}
	// same version again is now stale
	_, err := store.Update(ctx, b.ID, &v, moodboardstore.Content{Vibe: strPtr("loud")})
	if err != moodboardstore.ErrVersionConflict {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	got, _ := store.GetByID(ctx, b.ID)
	if got.Vibe != "calm" {
		t.Errorf("stale update must not apply, vibe=%q", got.Vibe)
	}
}

func TestStore_Update_Missing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	v := int64(1)
	_, err := store.Update(ctx, primitive.NewObjectID(), &v, moodboardstore.Content{})
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_Update_ConcurrentSameVersion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.MoodBoard{OwnerID: primitive.NewObjectID(), Title: "Race"})

	const writers = 8
	var wg sync.WaitGroup
	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := b.Version
			_, err := store.Update(ctx, b.ID, &v, moodboardstore.Content{Vibe: strPtr("x")})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	ok, conflicts := 0, 0
	for err := range results {
		switch err {
		case nil:
			ok++
		case moodboardstore.ErrVersionConflict:
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != writers-1 {
		t.Errorf("got %d ok and %d conflicts, want 1 and %d", ok, conflicts, writers-1)
	}
}

func TestStore_ListPublic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fixtures.CreateUser(ctx, "Owner", "owner@example.com")
	for i := 0; i < 3; i++ {
		fixtures.CreateBoard(ctx, owner, "public", true)
		time.Sleep(2 * time.Millisecond)
	}
	fixtures.CreateBoard(ctx, owner, "private", false)

	got, err := store.ListPublic(ctx, 2)
	if err != nil {
		t.Fatalf("ListPublic failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 boards, got %d", len(got))
	}
	for _, b := range got {
		if !b.IsPublic {
			t.Error("expected only public boards")
		}
	}
	if got[0].CreatedAt.Before(got[1].CreatedAt) {
		t.Error("expected newest first")
	}
}

func TestStore_ListForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a := fixtures.CreateUser(ctx, "A", "a@example.com")
	b := fixtures.CreateUser(ctx, "B", "b@example.com")
	own := fixtures.CreateBoard(ctx, a, "mine", false)
	shared := fixtures.CreateBoard(ctx, b, "shared", false)
	fixtures.CreateBoard(ctx, b, "other", false)

	got, err := store.ListForUser(ctx, a.ID, []primitive.ObjectID{shared.ID})
	if err != nil {
		t.Fatalf("ListForUser failed: %v", err)
	}
	ids := map[primitive.ObjectID]bool{}
	for _, x := range got {
		ids[x.ID] = true
	}
	if len(got) != 2 || !ids[own.ID] || !ids[shared.ID] {
		t.Errorf("unexpected boards: %v", ids)
	}
}

func TestStore_NextSeq(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.MoodBoard{OwnerID: primitive.NewObjectID(), Title: "Seq"})

	var prev int64
	for i := 0; i < 5; i++ {
		seq, err := store.NextSeq(ctx, b.ID)
		if err != nil {
			t.Fatalf("NextSeq failed: %v", err)
		}
		if seq <= prev {
			t.Errorf("seq %d not greater than %d", seq, prev)
		}
		prev = seq
	}

	if _, err := store.NextSeq(ctx, primitive.NewObjectID()); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for missing board, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := moodboardstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	b, _ := store.Create(ctx, models.MoodBoard{OwnerID: primitive.NewObjectID(), Title: "Gone"})
	n, err := store.Delete(ctx, b.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := store.GetByID(ctx, b.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected board gone, got %v", err)
	}
}
