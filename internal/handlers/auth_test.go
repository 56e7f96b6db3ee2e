package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/serialpm/serialpm-api/internal/dto"
	"github.com/serialpm/serialpm-api/internal/models"
	"github.com/serialpm/serialpm-api/internal/realtime"
	"github.com/serialpm/serialpm-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Signup(t *testing.T) {
	env := setupHandlerTestEnv(t)
	// The first user created in a fresh database gets id 1.
	conn := env.connect(1)

	w := env.do(t, http.MethodPost, "/api/users/add", "", map[string]string{
		"name":     "Ada Lovelace",
		"email":    "Ada@Example.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp dto.SignupResponse
	decode(t, w, &resp)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, models.RoleClient, resp.User.Role)
	assert.Nil(t, resp.User.OrganizationID)

	claims, err := env.issuer.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.ID)

	events := conn.Events()
	require.Len(t, events, 1)
	assert.Equal(t, realtime.EventReceiveNotification, events[0].Name)
	assert.Equal(t, "Welcome", events[0].Data.(realtime.Notification).Title)
}

func TestAuthHandler_SignupRejectsBadInput(t *testing.T) {
	env := setupHandlerTestEnv(t)
	testutil.CreateUser(t, env.db, "Taken", "taken@example.com")

	tests := []struct {
		name   string
		body   map[string]string
		status int
		code   string
	}{
		{"duplicate email", map[string]string{"name": "X", "email": "taken@example.com", "password": "supersecret"}, http.StatusConflict, "CONFLICT"},
		{"short password", map[string]string{"name": "X", "email": "x@example.com", "password": "abc"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"missing name", map[string]string{"email": "y@example.com", "password": "supersecret"}, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad email", map[string]string{"name": "Z", "email": "nope", "password": "supersecret"}, http.StatusBadRequest, "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/users/add", "", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())

			var body errorBody
			decode(t, w, &body)
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	org := testutil.CreateOrganization(t, env.db, admin, "Acme")

	w := env.do(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": testutil.TestPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.LoginResponse
	decode(t, w, &resp)
	require.NotNil(t, resp.User.OrganizationName)
	assert.Equal(t, "Acme", *resp.User.OrganizationName)
	assert.Equal(t, "alice@example.com", *resp.User.AdminEmail)

	claims, err := env.issuer.Verify(resp.Token)
	require.NoError(t, err)
	require.True(t, claims.HasOrganization())
	assert.Equal(t, org.ID, *claims.OrganizationID)
}

func TestAuthHandler_LoginInvalidCredentials(t *testing.T) {
	env := setupHandlerTestEnv(t)
	testutil.CreateUser(t, env.db, "Alice", "alice@example.com")

	for _, body := range []map[string]string{
		{"email": "alice@example.com", "password": "wrong-password"},
		{"email": "nobody@example.com", "password": testutil.TestPassword},
	} {
		w := env.do(t, http.MethodPost, "/api/users/login", "", body)
		require.Equal(t, http.StatusUnauthorized, w.Code)

		var resp errorBody
		decode(t, w, &resp)
		assert.Equal(t, "INVALID_CREDENTIALS", resp.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	env := setupHandlerTestEnv(t)
	alice := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	aliceConn := env.connect(alice.ID)
	bobConn := env.connect(bob.ID)
	token := env.token(t, alice)

	w := env.do(t, http.MethodPost, "/api/users/logout", token, map[string]interface{}{"user_id": bob.ID})
	require.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, bobConn.Closed())

	w = env.do(t, http.MethodPost, "/api/users/logout", token, map[string]interface{}{"user_id": fmt.Sprint(alice.ID)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, aliceConn.Closed())
}

func TestAuthHandler_RequiresBearer(t *testing.T) {
	env := setupHandlerTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/users", "not-a-jwt", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthHandler_SearchAndGetUser(t *testing.T) {
	env := setupHandlerTestEnv(t)
	caller := testutil.CreateUser(t, env.db, "Caller", "caller@example.com")
	anna := testutil.CreateUser(t, env.db, "Anna", "anna@example.com")
	testutil.CreateUser(t, env.db, "Marianne", "marianne@example.com")
	token := env.token(t, caller)

	w := env.do(t, http.MethodGet, "/api/users?query=ann&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list dto.UserListResponse
	decode(t, w, &list)
	require.Len(t, list.Users, 2)
	assert.Equal(t, "Anna", list.Users[0].Name)
	assert.Equal(t, "Marianne", list.Users[1].Name)
	assert.EqualValues(t, 2, list.Pagination.Total)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", anna.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user dto.UserDTO
	decode(t, w, &user)
	assert.Equal(t, anna.ID, user.ID)

	w = env.do(t, http.MethodGet, "/api/users/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_GetUserOrganization(t *testing.T) {
	env := setupHandlerTestEnv(t)
	admin := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	org := testutil.CreateOrganization(t, env.db, admin, "Acme")
	member := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	testutil.AddMember(t, env.db, member, org)

	w := env.do(t, http.MethodPost, "/api/users/get-organization", env.token(t, member), map[string]interface{}{"user_id": member.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.UserOrganizationResponse
	decode(t, w, &resp)
	assert.Equal(t, org.ID, resp.Organization.ID)
	assert.Equal(t, org.InviteKey, resp.Organization.InviteKey)
	require.NotNil(t, resp.Admin)
	assert.Equal(t, admin.ID, resp.Admin.ID)
	assert.Len(t, resp.Members, 2)

	loner := testutil.CreateUser(t, env.db, "Carol", "carol@example.com")
	w = env.do(t, http.MethodPost, "/api/users/get-organization", env.token(t, loner), map[string]interface{}{"user_id": loner.ID})
	require.Equal(t, http.StatusBadRequest, w.Code)
	var body errorBody
	decode(t, w, &body)
	assert.Equal(t, "NO_ORGANIZATION", body.Code)
}

func TestAuthHandler_UploadProfilePicture(t *testing.T) {
	env := setupHandlerTestEnv(t)
	user := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	other := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	token := env.token(t, user)

	upload := func(userID uint64, filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("profilePicture", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake image"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/users/%d/profile-picture", userID), &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		env.engine.ServeHTTP(w, req)
		return w
	}

	w := upload(user.ID, "me.png")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.ProfilePictureResponse
	decode(t, w, &resp)
	assert.Regexp(t, `^/uploads/\d+-.+\.png$`, resp.ProfilePicture)

	var stored models.User
	require.NoError(t, env.db.First(&stored, user.ID).Error)
	require.NotNil(t, stored.ProfilePicture)
	assert.Equal(t, resp.ProfilePicture, *stored.ProfilePicture)

	w = upload(other.ID, "me.png")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = upload(user.ID, "script.sh")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
