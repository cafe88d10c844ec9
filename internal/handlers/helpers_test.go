package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/middleware"
	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestContext(t *testing.T, method, target string, body interface{}, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	e := echo.New()
	c := e.NewContext(req, rec)
	if user != nil {
		c.Set(middleware.ContextUserKey, user)
	}
	return c, rec
}

func seedUser(t *testing.T, repo *fakeUserRepo, username, password string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		FullName: username + " Test",
		Email:    username + "@example.com",
		Password: string(hashed),
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func currentUserOf(t *testing.T, repo *fakeUserRepo, id string) *models.User {
	t.Helper()

	user, err := repo.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	user.Password = ""
	return user
}

func httpStatus(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return http.StatusOK
}
