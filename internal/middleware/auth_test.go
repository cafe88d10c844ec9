package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/nahid-hossain/flocknet/backend/internal/models"
	"github.com/nahid-hossain/flocknet/backend/internal/repositories"
	"github.com/nahid-hossain/flocknet/backend/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

// stubUserRepo serves a single user, or a fixed error.
type stubUserRepo struct {
	user *models.User
	err  error
}

func (s *stubUserRepo) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.user != nil && s.user.ID.Hex() == id {
		copied := *s.user
		return &copied, nil
	}
	return nil, repositories.ErrNotFound
}

func (s *stubUserRepo) CreateUser(context.Context, *models.User) error { return nil }
func (s *stubUserRepo) GetUserByUsername(context.Context, string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (s *stubUserRepo) GetUserByEmail(context.Context, string) (*models.User, error) {
	return nil, repositories.ErrNotFound
}
func (s *stubUserRepo) UpdateUser(context.Context, *models.User) error { return nil }
func (s *stubUserRepo) Follow(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}
func (s *stubUserRepo) Unfollow(context.Context, primitive.ObjectID, primitive.ObjectID) error {
	return nil
}
func (s *stubUserRepo) SampleUsers(context.Context, primitive.ObjectID, int) ([]models.User, error) {
	return nil, nil
}

func invoke(t *testing.T, repo repositories.UserRepository, cookie *http.Cookie) (error, echo.Context) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	err := RequireAuth(repo, testSecret)(next)(c)
	return err, c
}

func statusOf(err error) int {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusOK
}

func TestRequireAuth_NoCookie(t *testing.T) {
	err, _ := invoke(t, &stubUserRepo{}, nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	err, _ := invoke(t, &stubUserRepo{}, &http.Cookie{Name: token.CookieName, Value: "not-a-token"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(err))
}

func TestRequireAuth_UserGone(t *testing.T) {
	signed, err := token.Generate(primitive.NewObjectID().Hex(), testSecret)
	require.NoError(t, err)

	mwErr, _ := invoke(t, &stubUserRepo{}, &http.Cookie{Name: token.CookieName, Value: signed})
	assert.Equal(t, http.StatusNotFound, statusOf(mwErr))
}

func TestRequireAuth_RepoFailure(t *testing.T) {
	signed, err := token.Generate(primitive.NewObjectID().Hex(), testSecret)
	require.NoError(t, err)

	repo := &stubUserRepo{err: errors.New("directory unavailable")}
	mwErr, _ := invoke(t, repo, &http.Cookie{Name: token.CookieName, Value: signed})
	assert.Equal(t, http.StatusInternalServerError, statusOf(mwErr))
}

func TestRequireAuth_AttachesUser(t *testing.T) {
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "alice",
		Password: "hashed-secret",
	}
	signed, err := token.Generate(user.ID.Hex(), testSecret)
	require.NoError(t, err)

	mwErr, c := invoke(t, &stubUserRepo{user: user}, &http.Cookie{Name: token.CookieName, Value: signed})
	require.NoError(t, mwErr)

	attached := CurrentUser(c)
	require.NotNil(t, attached)
	assert.Equal(t, user.ID, attached.ID)
	assert.Equal(t, "alice", attached.Username)
	assert.Empty(t, attached.Password)
}
