package sqlstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillshare/database"
	"skillshare/models"
	"skillshare/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenSQL("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	st, err := New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func mustUser(t *testing.T, st *Store, email string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           email,
		Email:        email,
		AuthProvider: models.AuthProviderEmail,
		Role:         models.RoleCustomer,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

func send(t *testing.T, st *Store, from, to, content string, at time.Time) *models.Message {
	t.Helper()
	m := &models.Message{SenderID: from, ReceiverID: to, Content: content, CreatedAt: at}
	require.NoError(t, st.InsertMessage(context.Background(), m))
	return m
}

func TestCreateUserDuplicate(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustUser(t, st, "a@x.com")

	err := st.CreateUser(ctx, &models.User{ID: "a@x.com", Email: "a@x.com", Role: models.RoleCustomer})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	_, err = st.GetUser(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestInsertMessageDefaults(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	m := &models.Message{SenderID: "a@x.com", ReceiverID: "b@x.com", Content: "hi", IsRead: true}
	require.NoError(t, st.InsertMessage(ctx, m))

	assert.NotEmpty(t, m.ID)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, models.MessageTypeText, m.Type)

	msgs, err := st.ListMessagesBetween(ctx, "b@x.com", "a@x.com")
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.False(t, msgs[0].IsRead)
	assert.Equal(t, m.ID, msgs[0].ID)
	assert.True(t, m.CreatedAt.Equal(msgs[0].CreatedAt))
}

func TestListMessagesBetweenOrdersByTimeThenID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	m3 := send(t, st, "a@x.com", "b@x.com", "third", base.Add(2*time.Second))
	m1 := send(t, st, "b@x.com", "a@x.com", "first", base)
	m2 := send(t, st, "a@x.com", "b@x.com", "second", base)
	send(t, st, "a@x.com", "c@x.com", "other thread", base)

	msgs, err := st.ListMessagesBetween(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{m1.ID, m2.ID, m3.ID}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})
}

func TestMarkReadIsDirectionalAndIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := store.Now()

	send(t, st, "b@x.com", "a@x.com", "1", now)
	send(t, st, "b@x.com", "a@x.com", "2", now.Add(time.Millisecond))
	send(t, st, "a@x.com", "b@x.com", "3", now.Add(2*time.Millisecond))

	n, err := st.MarkRead(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = st.MarkRead(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	unread, err := st.CountUnread(ctx, "a@x.com", "b@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 0, unread)

	unread, err = st.CountUnread(ctx, "b@x.com", "a@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)
}

func TestCounterpartsAndLatest(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := store.Now()

	send(t, st, "a@x.com", "b@x.com", "to b", now)
	send(t, st, "c@x.com", "a@x.com", "from c", now)
	send(t, st, "b@x.com", "a@x.com", "from b", now.Add(time.Second))
	send(t, st, "b@x.com", "c@x.com", "unrelated", now)

	ids, err := st.Counterparts(ctx, "a@x.com")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b@x.com", "c@x.com"}, ids)

	latest, err := st.LatestMessage(ctx, "b@x.com", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "from b", latest.Content)

	_, err = st.LatestMessage(ctx, "a@x.com", "c@x.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpgradeToCreator(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustUser(t, st, "a@x.com")

	u, err := st.UpgradeToCreator(ctx, "a@x.com", models.CreatorProfile{
		University: "MIT",
		Major:      "CS",
		Skills:     []string{"Go", "Design"},
		Approved:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCreator, u.Role)
	require.NotNil(t, u.Creator)
	assert.Equal(t, []string{"Go", "Design"}, u.Creator.Skills)

	// resubmission replaces the profile
	u, err = st.UpgradeToCreator(ctx, "a@x.com", models.CreatorProfile{University: "ETH", Major: "Math", Skills: []string{"Proofs"}})
	require.NoError(t, err)
	assert.Equal(t, "ETH", u.Creator.University)

	_, err = st.UpgradeToCreator(ctx, "ghost@x.com", models.CreatorProfile{University: "x", Major: "y", Skills: []string{"z"}})
	assert.ErrorIs(t, err, store.ErrNotFound)

	creators, err := st.ListCreators(ctx, models.CreatorFilter{Skill: "proofs"})
	require.NoError(t, err)
	require.Len(t, creators, 1)
	assert.Equal(t, "a@x.com", creators[0].ID)

	creators, err = st.ListCreators(ctx, models.CreatorFilter{Skill: "go"})
	require.NoError(t, err)
	assert.Empty(t, creators)
}

func TestUpdateProfileAndGetUsers(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	mustUser(t, st, "a@x.com")
	mustUser(t, st, "b@x.com")

	name := "Ada"
	u, err := st.UpdateProfile(ctx, "a@x.com", models.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)

	_, err = st.UpdateProfile(ctx, "ghost@x.com", models.ProfileUpdate{Name: &name})
	assert.ErrorIs(t, err, store.ErrNotFound)

	users, err := st.GetUsers(ctx, []string{"a@x.com", "b@x.com", "ghost@x.com"})
	require.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, "Ada", users["a@x.com"].Name)

	require.NoError(t, st.MarkEmailVerified(ctx, "b@x.com"))
	b, err := st.GetUser(ctx, "b@x.com")
	require.NoError(t, err)
	assert.True(t, b.EmailVerified)
}

func TestCartAndCheckout(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	p := &models.Project{CreatorID: "c@x.com", Title: "Logo design", PriceCents: 2500}
	require.NoError(t, st.CreateProject(ctx, p))

	first := &models.CartItem{UserID: "a@x.com", ProjectID: p.ID, Quantity: 1}
	require.NoError(t, st.UpsertCartItem(ctx, first))
	again := &models.CartItem{UserID: "a@x.com", ProjectID: p.ID, Quantity: 3}
	require.NoError(t, st.UpsertCartItem(ctx, again))
	assert.Equal(t, first.ID, again.ID)

	items, err := st.ListCart(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	order := &models.Order{
		UserID:     "a@x.com",
		Status:     models.OrderStatusPlaced,
		TotalCents: 7500,
		Items:      []models.OrderItem{{ProjectID: p.ID, Title: p.Title, PriceCents: 2500, Quantity: 3}},
	}
	require.NoError(t, st.PlaceOrder(ctx, order))

	items, err = st.ListCart(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, items)

	orders, err := st.ListOrders(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(7500), orders[0].TotalCents)
	require.Len(t, orders[0].Items, 1)
	assert.Equal(t, "Logo design", orders[0].Items[0].Title)

	assert.ErrorIs(t, st.RemoveCartItem(ctx, "a@x.com", p.ID), store.ErrNotFound)
}

func TestProjects(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	now := store.Now()

	older := &models.Project{CreatorID: "c@x.com", Title: "Portrait", Category: "art", CreatedAt: now}
	newer := &models.Project{CreatorID: "c@x.com", Title: "Go tutoring", Category: "code", CreatedAt: now.Add(time.Second)}
	require.NoError(t, st.CreateProject(ctx, older))
	require.NoError(t, st.CreateProject(ctx, newer))

	all, err := st.ListProjects(ctx, models.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	found, err := st.ListProjects(ctx, models.ProjectFilter{Query: "TUTOR"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, newer.ID, found[0].ID)

	assert.ErrorIs(t, st.DeleteProject(ctx, older.ID, "someone@x.com"), store.ErrNotFound)
	require.NoError(t, st.DeleteProject(ctx, older.ID, "c@x.com"))
	_, err = st.GetProject(ctx, older.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOTPAndPush(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	otp := &models.OTP{Email: "a@x.com", Purpose: models.OTPPurposeVerifyEmail, CodeHash: "h1", ExpiresAt: time.Now().Add(time.Minute)}
	require.NoError(t, st.SaveOTP(ctx, otp))
	n, err := st.IncrementOTPAttempts(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	otp.CodeHash = "h2"
	otp.Attempts = 0
	require.NoError(t, st.SaveOTP(ctx, otp))
	got, err := st.GetOTP(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.CodeHash)
	assert.Equal(t, 0, got.Attempts)

	require.NoError(t, st.DeleteOTP(ctx, "a@x.com", models.OTPPurposeVerifyEmail))
	_, err = st.GetOTP(ctx, "a@x.com", models.OTPPurposeVerifyEmail)
	assert.ErrorIs(t, err, store.ErrNotFound)

	sub := &models.PushSubscription{UserID: "a@x.com", Endpoint: "https://push.example/1", P256dh: "k", Auth: "a"}
	require.NoError(t, st.SavePushSubscription(ctx, sub))
	sub.Auth = "b"
	require.NoError(t, st.SavePushSubscription(ctx, sub))
	subs, err := st.ListPushSubscriptions(ctx, "a@x.com")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "b", subs[0].Auth)

	require.NoError(t, st.DeletePushSubscription(ctx, "a@x.com", sub.Endpoint))
	subs, err = st.ListPushSubscriptions(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Empty(t, subs)
}
