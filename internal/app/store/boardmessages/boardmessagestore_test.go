package boardmessagestore_test

import (
	"testing"

	boardmessagestore "github.com/dalemusser/planora/internal/app/store/boardmessages"
	"github.com/dalemusser/planora/internal/domain/models"
	"github.com/dalemusser/planora/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func appendN(t *testing.T, store *boardmessagestore.Store, board primitive.ObjectID, n int) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()
	for i := 1; i <= n; i++ {
		_, err := store.Append(ctx, models.BoardMessage{
			BoardID:    board,
			Seq:        int64(i),
			SenderName: "Tester",
			Text:       "hello",
			Type:       models.MessageText,
		})
		if err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
	}
}

func TestStore_Append_SetsCreatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardmessagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	m, err := store.Append(ctx, models.BoardMessage{BoardID: primitive.NewObjectID(), Seq: 1, Text: "hi", Type: models.MessageText})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if m.CreatedAt.IsZero() || m.ID.IsZero() {
		t.Error("expected ID and CreatedAt to be set")
	}
}

func TestStore_Append_DuplicateSeq(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardmessagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	board := primitive.NewObjectID()
	appendN(t, store, board, 1)

	_, err := store.Append(ctx, models.BoardMessage{BoardID: board, Seq: 1, Text: "again", Type: models.MessageText})
	if !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key error, got %v", err)
	}
}

func TestStore_List_AfterAndLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardmessagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	board := primitive.NewObjectID()
	appendN(t, store, board, 5)
	appendN(t, store, primitive.NewObjectID(), 2)

	got, err := store.List(ctx, board, 2, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if got[0].Seq != 3 || got[1].Seq != 4 {
		t.Errorf("seqs: got %d,%d want 3,4", got[0].Seq, got[1].Seq)
	}
}

func TestStore_Recent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardmessagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	board := primitive.NewObjectID()
	appendN(t, store, board, 5)

	got, err := store.Recent(ctx, board, 3)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0].Seq != 3 || got[2].Seq != 5 {
		t.Errorf("expected seqs 3..5 ascending, got %d..%d", got[0].Seq, got[2].Seq)
	}
}

func TestStore_DeleteByBoard(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := boardmessagestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	board := primitive.NewObjectID()
	appendN(t, store, board, 3)

	n, err := store.DeleteByBoard(ctx, board)
	if err != nil {
		t.Fatalf("DeleteByBoard failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 deleted, got %d", n)
	}
	left, err := store.List(ctx, board, 0, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("expected 0 remaining, got %d", len(left))
	}
}
