package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kot-system/internal/auth"
	"kot-system/internal/models"
)

func testUser() *models.StaffUser {
	return &models.StaffUser{ID: 7, Username: "ravi", Email: "ravi@example.com", Role: models.RoleCashier}
}

func TestIssueAndVerify(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(testUser())
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := issuer.Verify(token)
	assert.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "ravi", claims.Username)
	assert.Equal(t, models.RoleCashier, claims.Role)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	_, err := issuer.Verify("not-a-token")
	assert.Error(t, err)

	// Signed with a different secret.
	other := auth.NewTokenIssuer("other-secret", time.Hour)
	token, err := other.Issue(testUser())
	assert.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// Expired.
	expired := auth.NewTokenIssuer("test-secret", -time.Hour)
	token, err = expired.Issue(testUser())
	assert.NoError(t, err)
	_, err = issuer.Verify(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := auth.ExtractTokenFromRequest(r)
	assert.ErrorIs(t, err, auth.ErrMissingAuthHeader)

	r.Header.Set("Authorization", "Token abc")
	_, err = auth.ExtractTokenFromRequest(r)
	assert.ErrorIs(t, err, auth.ErrBadAuthHeader)

	r.Header.Set("Authorization", "Bearer abc")
	token, err := auth.ExtractTokenFromRequest(r)
	assert.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestMiddleware(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)

	var gotUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = auth.UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	protected := auth.Middleware(issuer)(next)

	// No token.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token.
	token, _ := issuer.Issue(testUser())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "7", gotUserID)
}

func TestRequireRole(t *testing.T) {
	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	adminOnly := auth.Middleware(issuer)(auth.RequireRole(models.RoleAdmin)(next))

	// A cashier is refused.
	token, _ := issuer.Issue(testUser())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// An admin passes.
	admin := testUser()
	admin.Role = models.RoleAdmin
	token, _ = issuer.Issue(admin)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	adminOnly.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
