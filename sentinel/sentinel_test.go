package sentinel

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-bot/model"
	"sentinel-bot/roblox"
	"sentinel-bot/utils"
)

type fakeStore struct {
	records     map[string]*model.Record
	banRequests map[string]*model.BanRequest
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records:     make(map[string]*model.Record),
		banRequests: make(map[string]*model.BanRequest),
	}
}

func (f *fakeStore) CreateRecord(record model.Record) error {
	f.records[record.ID] = &record
	return nil
}

func (f *fakeStore) GetRecord(id string) (*model.Record, error) {
	record, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (f *fakeStore) RecordsBySubject(userID int64, before *time.Time) ([]model.Record, error) {
	var out []model.Record
	for _, record := range f.records {
		if record.UserID != userID {
			continue
		}
		if before != nil && record.CreatedAt >= before.Unix() {
			continue
		}
		out = append(out, *record)
	}
	return out, nil
}

func (f *fakeStore) CountWarnings(userID int64) (int, error) {
	count := 0
	for _, record := range f.records {
		if record.UserID == userID && record.Action == model.ActionWarning {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountWarningsSince(userID int64, since time.Time) (int, error) {
	count := 0
	for _, record := range f.records {
		if record.UserID == userID && record.Action == model.ActionWarning && record.CreatedAt >= since.Unix() {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) UpdateRecordReason(id, reason, editorID string) error {
	record, ok := f.records[id]
	if !ok {
		return fmt.Errorf("no record %s", id)
	}
	record.Reason = reason
	return nil
}

func (f *fakeStore) UpdateRecordAction(id string, action model.Action, editorID string) error {
	record, ok := f.records[id]
	if !ok {
		return fmt.Errorf("no record %s", id)
	}
	record.Action = action
	return nil
}

func (f *fakeStore) DeleteRecord(id string) error {
	if _, ok := f.records[id]; !ok {
		return fmt.Errorf("no record %s", id)
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) CreateBanRequest(request model.BanRequest) error {
	for _, existing := range f.banRequests {
		if existing.UserID == request.UserID && existing.State == model.BanRequestPending {
			return model.ErrPendingBanRequestExists
		}
	}
	f.banRequests[request.ID] = &request
	return nil
}

func (f *fakeStore) PendingBanRequest(userID int64) (*model.BanRequest, error) {
	for _, request := range f.banRequests {
		if request.UserID == userID && request.State == model.BanRequestPending {
			clone := *request
			return &clone, nil
		}
	}
	return nil, nil
}

type fakeLookup struct {
	users       map[int64]*roblox.User
	byName      map[string]*roblox.User
	avatarQueue []roblox.Avatar

	userCalls   int
	nameCalls   int
	avatarCalls int
}

func newFakeLookup() *fakeLookup {
	return &fakeLookup{
		users:  make(map[int64]*roblox.User),
		byName: make(map[string]*roblox.User),
	}
}

func (f *fakeLookup) add(user roblox.User) {
	f.users[user.ID] = &user
	f.byName[user.Name] = &user
}

func (f *fakeLookup) User(_ context.Context, id int64) (*roblox.User, error) {
	f.userCalls++
	user, ok := f.users[id]
	if !ok {
		return nil, roblox.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeLookup) UserByName(_ context.Context, name string) (*roblox.User, error) {
	f.nameCalls++
	user, ok := f.byName[name]
	if !ok {
		return nil, roblox.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeLookup) Avatars(_ context.Context, ids []int64, size string) ([]roblox.Avatar, error) {
	f.avatarCalls++
	if len(f.avatarQueue) == 0 {
		return []roblox.Avatar{{TargetID: ids[0], State: roblox.AvatarCompleted, ImageURL: "https://cdn.example/avatar.png"}}, nil
	}
	next := f.avatarQueue[0]
	f.avatarQueue = f.avatarQueue[1:]
	next.TargetID = ids[0]
	return []roblox.Avatar{next}, nil
}

type sentMessage struct {
	channelID string
	data      *discordgo.MessageSend
}

type fakeSink struct {
	nextID  int
	sent    []sentMessage
	edits   []*discordgo.MessageEdit
	deletes []string
}

func (f *fakeSink) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.nextID++
	f.sent = append(f.sent, sentMessage{channelID: channelID, data: data})
	return &discordgo.Message{ID: fmt.Sprintf("msg-%d", f.nextID), ChannelID: channelID}, nil
}

func (f *fakeSink) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.edits = append(f.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel}, nil
}

func (f *fakeSink) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	f.deletes = append(f.deletes, messageID)
	return nil
}

// fakeCache round-trips values through JSON so tag handling on cached types
// is exercised the same way the real codec exercises it.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = raw
	return nil
}

func (f *fakeCache) Get(_ context.Context, key string, dest any, del bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	if del {
		delete(f.entries, key)
	}
	return true, json.Unmarshal(raw, dest)
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

type fixture struct {
	store  *fakeStore
	lookup *fakeLookup
	sink   *fakeSink
	cache  *fakeCache
	system *System
}

func newFixture() *fixture {
	store := newFakeStore()
	lookup := newFakeLookup()
	sink := &fakeSink{}
	cache := newFakeCache()
	system := New(store, lookup, sink, cache, Config{
		RecordChannelID:     "records",
		BanRequestChannelID: "ban-requests",
	})
	return &fixture{store: store, lookup: lookup, sink: sink, cache: cache, system: system}
}

var exploiter = roblox.User{ID: 261, Name: "Shedletsky", DisplayName: "Shedletsky"}

func TestBeginTooShortQueryMakesNoLookupCalls(t *testing.T) {
	f := newFixture()

	_, err := f.system.Begin(context.Background(), "ab", "spam", model.ActionWarning, Actor{ID: "mod"}, false)

	var sysErr *utils.SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, utils.LevelUser, sysErr.Level)
	assert.Zero(t, f.lookup.userCalls)
	assert.Zero(t, f.lookup.nameCalls)
}

func TestBeginDowngradesBanForUnprivilegedActor(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)

	result, err := f.system.Begin(context.Background(), "Shedletsky", "exploiting", model.ActionBan, Actor{ID: "mod"}, false)
	require.NoError(t, err)
	assert.Equal(t, model.ActionBanRequest, result.Draft.Action)

	privileged, err := f.system.Begin(context.Background(), "Shedletsky", "exploiting", model.ActionBan, Actor{ID: "admin"}, true)
	require.NoError(t, err)
	assert.Equal(t, model.ActionBan, privileged.Draft.Action)
}

func TestBeginFailsFastOnPendingBanRequest(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	require.NoError(t, f.store.CreateBanRequest(model.BanRequest{
		ID: "msg-0", UserID: exploiter.ID, State: model.BanRequestPending,
	}))

	_, err := f.system.Begin(context.Background(), "Shedletsky", "exploiting", model.ActionBan, Actor{ID: "mod"}, false)

	var sysErr *utils.SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, utils.CodeDuplicateResource, sysErr.Code)
	assert.Equal(t, utils.LevelUser, sysErr.Level)
}

func TestConfirmConsumesDraftExactlyOnce(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()
	actor := Actor{ID: "mod"}

	result, err := f.system.Begin(ctx, "Shedletsky", "exploiting", model.ActionKick, actor, false)
	require.NoError(t, err)
	require.NoError(t, f.system.StageDraft(ctx, actor, "prompt-1", result.Draft))

	first, err := f.system.Confirm(ctx, actor, "prompt-1")
	require.NoError(t, err)
	require.True(t, first.Consumed)
	assert.Len(t, f.store.records, 1)

	second, err := f.system.Confirm(ctx, actor, "prompt-1")
	require.NoError(t, err)
	assert.False(t, second.Consumed, "second confirmation is a silent no-op")
	assert.Len(t, f.store.records, 1)
}

func TestConfirmRecordKeyedByAnnouncementMessage(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()
	actor := Actor{ID: "mod"}

	result, err := f.system.Begin(ctx, "Shedletsky", "exploiting", model.ActionKick, actor, false)
	require.NoError(t, err)
	require.NoError(t, f.system.StageDraft(ctx, actor, "prompt-1", result.Draft))

	confirmed, err := f.system.Confirm(ctx, actor, "prompt-1")
	require.NoError(t, err)

	require.Len(t, f.sink.sent, 1)
	assert.Equal(t, "records", f.sink.sent[0].channelID)
	record, err := f.store.GetRecord(confirmed.AnnouncementID)
	require.NoError(t, err)
	require.NotNil(t, record, "record id is the announcement message id")
	assert.Equal(t, exploiter.ID, record.UserID)
	assert.Equal(t, "mod", record.AuthorID)
}

func TestConfirmWarningUsesStagedSnapshot(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()
	actor := Actor{ID: "mod"}

	result, err := f.system.Begin(ctx, "Shedletsky", "spamming", model.ActionWarning, actor, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Draft.WarningCount)
	require.NoError(t, f.system.StageDraft(ctx, actor, "prompt-1", result.Draft))

	_, err = f.system.Confirm(ctx, actor, "prompt-1")
	require.NoError(t, err)

	require.Len(t, f.sink.sent, 1)
	embeds := f.sink.sent[0].data.Embeds
	require.Len(t, embeds, 1)
	assert.Equal(t, "Warning #1", embeds[0].Title)
}

func TestConfirmBanRequestSentinel(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()
	actor := Actor{ID: "mod"}

	result, err := f.system.Begin(ctx, "Shedletsky", "exploiting", model.ActionBan, actor, false)
	require.NoError(t, err)
	require.NoError(t, f.system.StageDraft(ctx, actor, "prompt-1", result.Draft))

	confirmed, err := f.system.Confirm(ctx, actor, "prompt-1")
	require.NoError(t, err)
	require.True(t, confirmed.Consumed)

	require.Len(t, f.sink.sent, 1)
	assert.Equal(t, "ban-requests", f.sink.sent[0].channelID)
	assert.Empty(t, f.store.records, "a ban request is not a record")
	pending, err := f.store.PendingBanRequest(exploiter.ID)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, confirmed.AnnouncementID, pending.ID)
}

func TestConfirmBanRequestRejectsSecondPending(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()

	first, err := f.system.Begin(ctx, "Shedletsky", "exploiting", model.ActionBan, Actor{ID: "mod-a"}, false)
	require.NoError(t, err)
	second := first.Draft

	require.NoError(t, f.system.StageDraft(ctx, Actor{ID: "mod-a"}, "prompt-a", first.Draft))
	require.NoError(t, f.system.StageDraft(ctx, Actor{ID: "mod-b"}, "prompt-b", second))

	_, err = f.system.Confirm(ctx, Actor{ID: "mod-a"}, "prompt-a")
	require.NoError(t, err)

	_, err = f.system.Confirm(ctx, Actor{ID: "mod-b"}, "prompt-b")
	var sysErr *utils.SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, utils.CodeDuplicateResource, sysErr.Code)
	assert.Len(t, f.sink.sent, 1, "no second announcement goes out")
}

func TestCancelDiscardsDraft(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()
	actor := Actor{ID: "mod"}

	result, err := f.system.Begin(ctx, "Shedletsky", "exploiting", model.ActionKick, actor, false)
	require.NoError(t, err)
	require.NoError(t, f.system.StageDraft(ctx, actor, "prompt-1", result.Draft))
	require.NoError(t, f.system.Cancel(ctx, actor, "prompt-1"))

	confirmed, err := f.system.Confirm(ctx, actor, "prompt-1")
	require.NoError(t, err)
	assert.False(t, confirmed.Consumed)
	assert.Empty(t, f.store.records)
}

func TestAvatarRetriesOnceOnTransientState(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	f.lookup.avatarQueue = []roblox.Avatar{
		{State: roblox.AvatarPending},
		{State: roblox.AvatarCompleted, ImageURL: "https://cdn.example/retry.png"},
	}

	result, err := f.system.Begin(context.Background(), "Shedletsky", "spam", model.ActionWarning, Actor{ID: "mod"}, false)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/retry.png", result.Draft.SubjectAvatarURL)
	assert.Equal(t, 2, f.lookup.avatarCalls)
}

func TestAvatarGivesUpAfterSecondTransientState(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	f.lookup.avatarQueue = []roblox.Avatar{
		{State: roblox.AvatarPending},
		{State: roblox.AvatarTemporarilyUnavailable},
	}

	result, err := f.system.Begin(context.Background(), "Shedletsky", "spam", model.ActionWarning, Actor{ID: "mod"}, false)
	require.NoError(t, err)
	assert.Empty(t, result.Draft.SubjectAvatarURL)
	assert.Equal(t, 2, f.lookup.avatarCalls)
}

func TestManageRejectsForeignActor(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-1", AuthorID: "owner", UserID: exploiter.ID,
		Reason: "spam", Action: model.ActionWarning,
	}))

	_, err := f.system.Manage(context.Background(), "msg-1", ManageDelete, Actor{ID: "intruder"}, false)

	var sysErr *utils.SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, utils.CodeUnauthorized, sysErr.Code)
	assert.Empty(t, f.cache.entries, "no draft is staged for an unauthorized actor")
	assert.Len(t, f.store.records, 1)
}

func TestManagePrivilegedActorBypassesOwnership(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-1", AuthorID: "owner", UserID: exploiter.ID,
		Reason: "spam", Action: model.ActionWarning,
	}))

	record, err := f.system.Manage(context.Background(), "msg-1", ManageDelete, Actor{ID: "admin"}, true)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", record.ID)
}

func TestEditReasonUpdatesRecordAndAnnouncement(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()
	actor := Actor{ID: "owner"}
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-1", AuthorID: "owner", UserID: exploiter.ID,
		Reason: "spam", Action: model.ActionWarning,
	}))

	_, err := f.system.Manage(ctx, "msg-1", ManageEditReason, actor, false)
	require.NoError(t, err)

	result, err := f.system.EditReason(ctx, actor, "repeated spam")
	require.NoError(t, err)
	require.True(t, result.Consumed)
	assert.Equal(t, "repeated spam", result.Record.Reason)
	require.Len(t, f.sink.edits, 1)
	assert.Equal(t, "msg-1", f.sink.edits[0].ID)

	again, err := f.system.EditReason(ctx, actor, "tampering")
	require.NoError(t, err)
	assert.False(t, again.Consumed, "the edit draft is consumed on first use")
}

func TestEditActionRecountsWarnings(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	ctx := context.Background()
	actor := Actor{ID: "owner"}
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-1", AuthorID: "owner", UserID: exploiter.ID,
		Reason: "spam", Action: model.ActionKick,
	}))

	_, err := f.system.Manage(ctx, "msg-1", ManageEditAction, actor, false)
	require.NoError(t, err)

	result, err := f.system.EditAction(ctx, actor, model.ActionWarning)
	require.NoError(t, err)
	require.True(t, result.Consumed)
	assert.Equal(t, model.ActionWarning, result.Record.Action)

	require.Len(t, f.sink.edits, 1)
	embeds := *f.sink.edits[0].Embeds
	require.Len(t, embeds, 1)
	assert.Equal(t, "Warning #1", embeds[0].Title, "count reflects the reclassified record")
}

func TestEditActionRejectsSentinelValue(t *testing.T) {
	f := newFixture()

	_, err := f.system.EditAction(context.Background(), Actor{ID: "owner"}, model.ActionBanRequest)

	var sysErr *utils.SystemError
	require.ErrorAs(t, err, &sysErr)
	assert.Equal(t, utils.CodeInvalid, sysErr.Code)
}

func TestConfirmDeleteRemovesRowAndAnnouncement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	actor := Actor{ID: "owner"}
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-1", AuthorID: "owner", UserID: exploiter.ID,
		Reason: "spam", Action: model.ActionWarning,
	}))

	_, err := f.system.Manage(ctx, "msg-1", ManageDelete, actor, false)
	require.NoError(t, err)

	result, err := f.system.ConfirmDelete(ctx, actor)
	require.NoError(t, err)
	require.True(t, result.Consumed)
	assert.Empty(t, f.store.records)
	assert.Equal(t, []string{"msg-1"}, f.sink.deletes)

	again, err := f.system.ConfirmDelete(ctx, actor)
	require.NoError(t, err)
	assert.False(t, again.Consumed)
}

func TestHistoryAggregatesCounters(t *testing.T) {
	f := newFixture()
	f.lookup.add(exploiter)
	now := time.Now().Unix()
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-1", AuthorID: "mod", UserID: exploiter.ID,
		Action: model.ActionWarning, CreatedAt: now,
	}))
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-2", AuthorID: "mod", UserID: exploiter.ID,
		Action: model.ActionWarning, CreatedAt: time.Now().AddDate(0, 0, -14).Unix(),
	}))
	require.NoError(t, f.store.CreateRecord(model.Record{
		ID: "msg-3", AuthorID: "mod", UserID: exploiter.ID,
		Action: model.ActionWarning, CreatedAt: time.Now().AddDate(0, 0, -60).Unix(),
	}))

	result, err := f.system.History(context.Background(), "Shedletsky", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.WarningsWeek)
	assert.Equal(t, 2, result.WarningsMonth)
	assert.Equal(t, 3, result.WarningsTotal)
	assert.Len(t, result.Records, 3)

	older, err := f.system.History(context.Background(), "Shedletsky", 30)
	require.NoError(t, err)
	assert.Len(t, older.Records, 1, "the cutoff trims the record list")
	assert.Equal(t, 3, older.WarningsTotal, "counters ignore the cutoff")
}

func TestConfirmPromptChoosesSubmitButtonPerAction(t *testing.T) {
	_, components := ConfirmPrompt(model.Draft{Action: model.ActionBanRequest, Reason: "x"}, nil)
	row := components[0].(discordgo.ActionsRow)
	submit := row.Components[0].(discordgo.Button)
	assert.Equal(t, CustomIDConfirmBanRequest, submit.CustomID)

	_, components = ConfirmPrompt(model.Draft{Action: model.ActionKick, Reason: "x"}, nil)
	row = components[0].(discordgo.ActionsRow)
	submit = row.Components[0].(discordgo.Button)
	assert.Equal(t, CustomIDConfirmRecord, submit.CustomID)
}
