package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"skillshare/database"
	"skillshare/models"
	"skillshare/notify"
	"skillshare/store/sqlstore"
)

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	db, err := database.OpenSQL("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	st, err := sqlstore.New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}

func createUser(t *testing.T, st *sqlstore.Store, email, name string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           email,
		Email:        email,
		Name:         name,
		AuthProvider: models.AuthProviderEmail,
		Role:         models.RoleCustomer,
	}
	require.NoError(t, st.CreateUser(context.Background(), u))
	return u
}

type published struct {
	UserID string
	Event  notify.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (r *recordingPublisher) Publish(userID string, ev notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, published{UserID: userID, Event: ev})
}

func (r *recordingPublisher) types(userID string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, p := range r.events {
		if p.UserID == userID {
			out = append(out, p.Event.Type)
		}
	}
	return out
}

type sentMail struct {
	To, Subject, Body string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *recordingMailer) Send(_ context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

const testCost = bcrypt.MinCost
