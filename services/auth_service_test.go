package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Mayank561/ECOMMERCE-API/common/errors"
	"github.com/Mayank561/ECOMMERCE-API/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockTokenIssuer struct{ mock.Mock }

func (m *MockTokenIssuer) Issue(userID string, isAdmin bool) (string, error) {
	args := m.Called(userID, isAdmin)
	return args.String(0), args.Error(1)
}

func seedUser(t *testing.T, s *memStore, email, password string, admin bool) models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := models.User{Name: "Ann", Email: email, PasswordHash: string(hash), IsAdmin: admin}
	require.NoError(t, fakeUserRepo{s}.Create(context.Background(), &u))
	return u
}

func TestLogin(t *testing.T) {
	s := newMemStore()
	user := seedUser(t, s, "ann@example.com", "correct horse", true)

	t.Run("success", func(t *testing.T) {
		tokens := new(MockTokenIssuer)
		tokens.On("Issue", user.ID.Hex(), true).Return("signed.jwt.token", nil).Once()
		svc := NewAuthService(fakeUserRepo{s}, NewBcryptHasher(bcrypt.MinCost), tokens)

		res, err := svc.Login(context.Background(), "ann@example.com", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", res.User)
		assert.Equal(t, "signed.jwt.token", res.Token)
		tokens.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		tokens := new(MockTokenIssuer)
		svc := NewAuthService(fakeUserRepo{s}, NewBcryptHasher(bcrypt.MinCost), tokens)

		res, err := svc.Login(context.Background(), "ann@example.com", "wrong")
		assert.Nil(t, res)
		assertKind(t, err, apperrors.KindAuth)
		tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		tokens := new(MockTokenIssuer)
		svc := NewAuthService(fakeUserRepo{s}, NewBcryptHasher(bcrypt.MinCost), tokens)

		_, err := svc.Login(context.Background(), "nobody@example.com", "correct horse")
		assertKind(t, err, apperrors.KindAuth)
		assert.Equal(t, invalidCredentials, err.Error())
		tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	})

	t.Run("signing failure", func(t *testing.T) {
		tokens := new(MockTokenIssuer)
		tokens.On("Issue", mock.Anything, mock.Anything).Return("", errors.New("no key"))
		svc := NewAuthService(fakeUserRepo{s}, NewBcryptHasher(bcrypt.MinCost), tokens)

		_, err := svc.Login(context.Background(), "ann@example.com", "correct horse")
		assertKind(t, err, apperrors.KindInternal)
	})
}

func TestTokenServiceIssueAndValidate(t *testing.T) {
	issuedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService("test-secret")
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("user-1", true)
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil },
		jwt.WithoutClaimsValidation())
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-1", claims["userId"])
	assert.Equal(t, true, claims["isAdmin"])
	assert.Equal(t, float64(issuedAt.Add(24*time.Hour).Unix()), claims["exp"])
	assert.Equal(t, "HS256", parsed.Method.Alg())
}

func TestTokenServiceValidate(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.Issue("user-1", false)
	require.NoError(t, err)
	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, &Claims{UserID: "user-1", IsAdmin: false}, claims)

	other := NewTokenService("other-secret")
	_, err = other.Validate(token)
	assert.Error(t, err)

	expired := NewTokenService("test-secret")
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := expired.Issue("user-1", false)
	require.NoError(t, err)
	_, err = svc.Validate(old)
	assert.Error(t, err)

	_, err = svc.Validate("not-a-token")
	assert.Error(t, err)
}

func TestUserService(t *testing.T) {
	ctx := context.Background()
	s := newMemStore()
	svc := NewUserService(fakeUserRepo{s}, NewBcryptHasher(bcrypt.MinCost))

	t.Run("create hashes password and hides it", func(t *testing.T) {
		user, err := svc.Create(ctx, UserInput{Name: "Ann", Email: "Ann@Example.com", Password: "pw-123456"})
		require.NoError(t, err)
		assert.Equal(t, "ann@example.com", user.Email)
		assert.NotEqual(t, "pw-123456", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw-123456")))

		body, err := json.Marshal(user)
		require.NoError(t, err)
		assert.NotContains(t, string(body), "passwordHash")
		assert.NotContains(t, string(body), user.PasswordHash)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Create(ctx, UserInput{Name: "Ann 2", Email: "ann@example.com", Password: "x"})
		assertKind(t, err, apperrors.KindValidation)
	})

	t.Run("password required", func(t *testing.T) {
		_, err := svc.Create(ctx, UserInput{Name: "Bob", Email: "bob@example.com"})
		assertKind(t, err, apperrors.KindValidation)
	})

	t.Run("register never grants admin", func(t *testing.T) {
		user, err := svc.Register(ctx, UserInput{Name: "Eve", Email: "eve@example.com", Password: "pw", IsAdmin: true})
		require.NoError(t, err)
		assert.False(t, user.IsAdmin)
	})

	t.Run("update without password keeps hash", func(t *testing.T) {
		user, err := svc.Create(ctx, UserInput{Name: "Cid", Email: "cid@example.com", Password: "first"})
		require.NoError(t, err)
		before := user.PasswordHash

		updated, err := svc.Update(ctx, user.ID.Hex(), UserInput{Name: "Cid B", Email: "cid@example.com", City: "Oslo"})
		require.NoError(t, err)
		assert.Equal(t, before, updated.PasswordHash)
		assert.Equal(t, "Oslo", updated.City)

		updated, err = svc.Update(ctx, user.ID.Hex(), UserInput{Name: "Cid B", Email: "cid@example.com", Password: "second"})
		require.NoError(t, err)
		assert.NotEqual(t, before, updated.PasswordHash)
	})

	t.Run("delete and count", func(t *testing.T) {
		before, err := svc.Count(ctx)
		require.NoError(t, err)

		users, err := svc.List(ctx)
		require.NoError(t, err)
		require.NoError(t, svc.Delete(ctx, users[0].ID.Hex()))

		after, err := svc.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, before-1, after)

		err = svc.Delete(ctx, users[0].ID.Hex())
		assertKind(t, err, apperrors.KindNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.Get(ctx, "xyz")
		assertKind(t, err, apperrors.KindValidation)
	})
}
