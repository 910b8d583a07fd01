package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-shell/domain"
	"chat-shell/errors"
)

func TestHashAndComparePassword(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("Sup3r$ecretPass!")
	req.NoError(err)
	req.Contains(hash, "$argon2id$")

	match, err := ComparePassword("Sup3r$ecretPass!", hash)
	req.NoError(err)
	req.True(match)

	match, err = ComparePassword("wrong-password", hash)
	req.NoError(err)
	req.False(match)
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	req := require.New(t)

	first, err := HashPassword("Sup3r$ecretPass!")
	req.NoError(err)
	second, err := HashPassword("Sup3r$ecretPass!")
	req.NoError(err)
	req.NotEqual(first, second)
}

func TestComparePassword_MalformedHash(t *testing.T) {
	req := require.New(t)

	_, err := ComparePassword("whatever", "not-an-encoded-hash")
	req.Error(err)
}

func TestGenerateAndValidateToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-1", "alice", time.Hour)
	req.NoError(err)

	claims, err := ValidateToken(token)
	req.NoError(err)
	req.Equal("user-1", claims.UserID)
	req.Equal("alice", claims.Username)
	req.Equal("chat-shell", claims.Issuer)
}

func TestValidateToken_Expired(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken("user-1", "alice", -time.Minute)
	req.NoError(err)

	_, err = ValidateToken(token)
	req.Error(err)
}

func TestValidateToken_Garbage(t *testing.T) {
	req := require.New(t)

	_, err := ValidateToken("definitely.not.a.jwt")
	req.Error(err)
}

func TestValidateRegister(t *testing.T) {
	tests := []struct {
		name    string
		request RegisterRequest
		wantErr bool
	}{
		{
			name:    "Valid registration",
			request: RegisterRequest{Username: "alice42", Password: "Sup3r$ecretPass!"},
			wantErr: false,
		},
		{
			name:    "Username too short",
			request: RegisterRequest{Username: "al", Password: "Sup3r$ecretPass!"},
			wantErr: true,
		},
		{
			name:    "Username not alphanumeric",
			request: RegisterRequest{Username: "alice!", Password: "Sup3r$ecretPass!"},
			wantErr: true,
		},
		{
			name:    "Password too short",
			request: RegisterRequest{Username: "alice42", Password: "Ab1!"},
			wantErr: true,
		},
		{
			name:    "Password without special character",
			request: RegisterRequest{Username: "alice42", Password: "Sup3rSecretPass0"},
			wantErr: true,
		},
		{
			name:    "Password without uppercase",
			request: RegisterRequest{Username: "alice42", Password: "sup3r$ecretpass!"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegister(tt.request)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestPasswordComplexityError(t *testing.T) {
	req := require.New(t)

	err := ValidateRegister(RegisterRequest{Username: "alice42", Password: "onlylowercaseletters"})
	req.ErrorIs(err, errors.ErrInvalidPassword)
}

func TestSession_BeginEndCurrent(t *testing.T) {
	req := require.New(t)
	session := NewSession()
	req.Nil(session.Current())
	req.Empty(session.Token())

	session.Begin(domain.UserIdentity{ID: "user-1", Username: "alice"}, "token-abc")
	current := session.Current()
	req.NotNil(current)
	req.Equal("user-1", current.ID)
	req.Equal("token-abc", session.Token())

	session.End()
	req.Nil(session.Current())
	req.Empty(session.Token())
}

func TestSession_ObserversNotified(t *testing.T) {
	req := require.New(t)
	session := NewSession()

	var seen []*domain.UserIdentity
	session.OnChange(func(user *domain.UserIdentity) {
		seen = append(seen, user)
	})

	session.Begin(domain.UserIdentity{ID: "user-1", Username: "alice"}, "token")
	session.End()

	req.Len(seen, 2)
	req.NotNil(seen[0])
	req.Equal("user-1", seen[0].ID)
	req.Nil(seen[1])
}

func TestSession_CurrentReturnsCopy(t *testing.T) {
	req := require.New(t)
	session := NewSession()
	session.Begin(domain.UserIdentity{ID: "user-1", Username: "alice"}, "token")

	first := session.Current()
	first.Username = "mallory"
	req.Equal("alice", session.Current().Username)
}
