package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-backoffice/pkg/errors"
)

func TestManager_IssueAndParse(t *testing.T) {
	m := NewManager("secret", "bookstore", time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID, "clerk@example.com")
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "clerk@example.com", claims.Email)
}

func TestManager_Parse_Expired(t *testing.T) {
	m := NewManager("secret", "bookstore", -time.Minute)
	token, err := m.Issue(uuid.New(), "")
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestManager_Parse_Invalid(t *testing.T) {
	m := NewManager("secret", "bookstore", time.Hour)

	_, err := m.Parse("not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	other, err := NewManager("other-secret", "bookstore", time.Hour).Issue(uuid.New(), "")
	require.NoError(t, err)
	_, err = m.Parse(other)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "签名密钥不同")

	foreign, err := NewManager("secret", "someone-else", time.Hour).Issue(uuid.New(), "")
	require.NoError(t, err)
	_, err = m.Parse(foreign)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken, "签发方不同")
}
