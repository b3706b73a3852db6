package records

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-bot/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestCreateAndGetRecord(t *testing.T) {
	store := newTestStore(t)

	record := model.Record{
		ID:        "1001",
		AuthorID:  "42",
		UserID:    156,
		Reason:    "spamming",
		Action:    model.ActionWarning,
		CreatedAt: time.Now().Unix(),
	}
	require.NoError(t, store.CreateRecord(record))

	got, err := store.GetRecord("1001")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, record.Reason, got.Reason)
	assert.Equal(t, record.Action, got.Action)
	assert.Empty(t, got.EditorList())

	missing, err := store.GetRecord("9999")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCountWarnings(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().Unix()

	for i, action := range []model.Action{model.ActionWarning, model.ActionWarning, model.ActionKick} {
		require.NoError(t, store.CreateRecord(model.Record{
			ID:        string(rune('a' + i)),
			AuthorID:  "42",
			UserID:    156,
			Reason:    "x",
			Action:    action,
			CreatedAt: now,
		}))
	}

	count, err := store.CountWarnings(156)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = store.CountWarnings(999)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecordsBySubjectOrderingAndCutoff(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().Add(-48 * time.Hour)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.CreateRecord(model.Record{
			ID:        string(rune('a' + i)),
			AuthorID:  "42",
			UserID:    156,
			Reason:    "x",
			Action:    model.ActionKick,
			CreatedAt: base.Add(time.Duration(i) * 24 * time.Hour).Unix(),
		}))
	}

	all, err := store.RecordsBySubject(156, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")

	cutoff := base.Add(36 * time.Hour)
	older, err := store.RecordsBySubject(156, &cutoff)
	require.NoError(t, err)
	assert.Len(t, older, 2)
}

func TestUpdateRecordAppendsEditors(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateRecord(model.Record{
		ID: "1001", AuthorID: "42", UserID: 156, Reason: "old",
		Action: model.ActionKick, CreatedAt: time.Now().Unix(),
	}))

	require.NoError(t, store.UpdateRecordReason("1001", "new reason", "editor-1"))
	require.NoError(t, store.UpdateRecordAction("1001", model.ActionWarning, "editor-2"))

	got, err := store.GetRecord("1001")
	require.NoError(t, err)
	assert.Equal(t, "new reason", got.Reason)
	assert.Equal(t, model.ActionWarning, got.Action)
	assert.Equal(t, []string{"editor-1", "editor-2"}, got.EditorList())
}

func TestDeleteRecord(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.CreateRecord(model.Record{
		ID: "1001", AuthorID: "42", UserID: 156, Reason: "x",
		Action: model.ActionBan, CreatedAt: time.Now().Unix(),
	}))

	require.NoError(t, store.DeleteRecord("1001"))
	got, err := store.GetRecord("1001")
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Error(t, store.DeleteRecord("1001"), "deleting a missing record reports it")
}

func TestPendingBanRequestUniqueness(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().Unix()

	first := model.BanRequest{
		ID: "2001", AuthorID: "42", UserID: 156, Reason: "exploiting",
		State: model.BanRequestPending, CreatedAt: now,
	}
	require.NoError(t, store.CreateBanRequest(first))

	dup := model.BanRequest{
		ID: "2002", AuthorID: "43", UserID: 156, Reason: "also exploiting",
		State: model.BanRequestPending, CreatedAt: now,
	}
	err := store.CreateBanRequest(dup)
	require.ErrorIs(t, err, model.ErrPendingBanRequestExists)

	// A resolved request does not block a new pending one.
	resolved := model.BanRequest{
		ID: "2003", AuthorID: "42", UserID: 157, Reason: "x",
		State: model.BanRequestRejected, CreatedAt: now,
	}
	require.NoError(t, store.CreateBanRequest(resolved))
	require.NoError(t, store.CreateBanRequest(model.BanRequest{
		ID: "2004", AuthorID: "42", UserID: 157, Reason: "y",
		State: model.BanRequestPending, CreatedAt: now,
	}))

	pending, err := store.PendingBanRequest(156)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "2001", pending.ID)

	none, err := store.PendingBanRequest(158)
	require.NoError(t, err)
	assert.Nil(t, none)
}
