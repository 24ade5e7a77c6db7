package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"skillshare/database"
	"skillshare/handlers"
	"skillshare/mailer"
	"skillshare/middleware"
	"skillshare/models"
	"skillshare/services"
	"skillshare/storage"
	"skillshare/store/sqlstore"
	"skillshare/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	tokens *middleware.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenSQL("sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	st, err := sqlstore.New(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	hub := websocket.NewHub()
	otp := services.NewOTPService(st, st, mailer.Log{}, bcrypt.MinCost)
	tokens := middleware.NewTokens("test-secret", time.Hour)
	h := handlers.New(handlers.Deps{
		Users:    services.NewUserService(st, otp, bcrypt.MinCost),
		OTP:      otp,
		Messages: services.NewMessageService(st, st, hub),
		Catalog:  services.NewCatalogService(st, st),
		Cart:     services.NewCartService(st, st, st),
		Tokens:   tokens,
		Uploader: storage.NewLocal(t.TempDir(), "http://test"),
		Push:     st,
	})
	return &testServer{
		router: SetupRouter(h, hub, Options{CORSOrigins: []string{"http://localhost:3000"}}),
		tokens: tokens,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "text/plain; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w, out
}

func (s *testServer) signup(t *testing.T, email, name string) string {
	t.Helper()
	w, out := s.do(t, http.MethodPost, "/api/signup", "", gin.H{"email": email, "password": "secret1", "name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return out["token"].(string)
}

func TestMessagingOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tokA := s.signup(t, "a@x.com", "Ada")
	tokB := s.signup(t, "b@x.com", "Bob")

	w, _ := s.do(t, http.MethodPost, "/api/messages", "", gin.H{"receiverId": "b@x.com", "content": "hi"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, out := s.do(t, http.MethodPost, "/api/messages", tokA, gin.H{"receiverId": "b@x.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, out["success"])

	w, out = s.do(t, http.MethodPost, "/api/messages", tokA, gin.H{"receiverId": "b@x.com", "content": "hi"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	msg := out["message"].(map[string]interface{})
	assert.Equal(t, false, msg["isRead"])
	assert.Equal(t, "a@x.com", msg["senderId"])

	w, out = s.do(t, http.MethodGet, "/api/messages", tokB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	convs := out["conversations"].([]interface{})
	require.Len(t, convs, 1)
	conv := convs[0].(map[string]interface{})
	assert.Equal(t, "a@x.com", conv["otherUserId"])
	assert.Equal(t, "Ada", conv["otherUserName"])
	assert.Equal(t, "hi", conv["lastMessage"])
	assert.EqualValues(t, 1, conv["unreadCount"])

	w, out = s.do(t, http.MethodGet, "/api/messages?otherUserId=a@x.com", tokB, nil)
	require.Equal(t, http.StatusOK, w.Code)
	thread := out["messages"].([]interface{})
	require.Len(t, thread, 1)
	first := thread[0].(map[string]interface{})
	assert.Equal(t, "Ada", first["senderName"])
	assert.Equal(t, "hi", first["content"])
	assert.Equal(t, true, first["isRead"])

	_, out = s.do(t, http.MethodGet, "/api/messages", tokB, nil)
	conv = out["conversations"].([]interface{})[0].(map[string]interface{})
	assert.EqualValues(t, 0, conv["unreadCount"])

	w, out = s.do(t, http.MethodPost, "/api/messages/read", tokB, gin.H{"otherUserId": "a@x.com"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, out["updated"])

	w, out = s.do(t, http.MethodGet, "/api/messages", s.signup(t, "c@x.com", ""), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []interface{}{}, out["conversations"])
}

func TestUpgradeRoleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	tok := s.signup(t, "a@x.com", "Ada")

	w, _ := s.do(t, http.MethodPost, "/api/user/upgrade-role", "", gin.H{"creatorData": gin.H{}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/user/upgrade-role", tok, gin.H{
		"creatorData": gin.H{"university": "MIT", "major": "CS"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, out := s.do(t, http.MethodGet, "/api/me", tok, nil)
	assert.Equal(t, string(models.RoleCustomer), out["user"].(map[string]interface{})["role"])

	w, out = s.do(t, http.MethodPost, "/api/projects", tok, gin.H{"title": "Logo", "priceCents": 500})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, out = s.do(t, http.MethodPost, "/api/user/upgrade-role", tok, gin.H{
		"creatorData": gin.H{"university": "MIT", "major": "CS", "skills": "design, go"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := out["user"].(map[string]interface{})
	assert.Equal(t, string(models.RoleCreator), user["role"])
	profile := user["creatorProfile"].(map[string]interface{})
	assert.Equal(t, []interface{}{"design", "go"}, profile["skills"])

	claims, err := s.tokens.Parse(out["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, models.RoleCreator, claims.Role)

	w, out = s.do(t, http.MethodPost, "/api/projects", out["token"].(string), gin.H{"title": "Logo", "priceCents": 500})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	projectID := out["project"].(map[string]interface{})["id"].(string)

	w, out = s.do(t, http.MethodGet, "/api/creators?skill=go", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, out["creators"], 1)

	buyer := s.signup(t, "b@x.com", "")
	w, _ = s.do(t, http.MethodPost, "/api/cart", buyer, gin.H{"projectId": projectID, "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, out = s.do(t, http.MethodPost, "/api/checkout", buyer, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.EqualValues(t, 1000, out["order"].(map[string]interface{})["totalCents"])
}

func TestUploadSniffsContent(t *testing.T) {
	s := newTestServer(t)
	tok := s.signup(t, "a@x.com", "")

	upload := func(data []byte) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", "upload.bin")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+tok)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := upload([]byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "application/pdf", out["mime"])
	assert.Contains(t, out["url"], "http://test/uploads/attachments/")

	w = upload(append([]byte("\x7fELF\x02\x01\x01\x00"), make([]byte, 64)...))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	s := newTestServer(t)

	w, out := s.do(t, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", out["status"])

	w, out = s.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, out["success"])

	w, _ = s.do(t, http.MethodGet, "/api/messages", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
