package jwt_test

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/internal/errors"
	"github.com/jrsteele09/go-oauth-simulator/token/jwt"
	"github.com/stretchr/testify/require"
)

func TestCreateAndDecode(t *testing.T) {
	c := jwt.NewCreator("https://auth.example", "https://resource.example", 16)
	issued := time.Unix(1_700_000_000, 0)
	expires := issued.Add(15 * time.Second)

	raw, err := c.CreateAccessToken("alice", "toy-client", "profile:read", issued, expires)
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	require.Len(t, parts[2], 16)

	header, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	var h map[string]any
	require.NoError(t, json.Unmarshal(header, &h))
	require.Equal(t, "none", h["alg"])
	require.Equal(t, "JWT", h["typ"])

	claims, err := jwt.Decode(raw)
	require.NoError(t, err)
	require.Equal(t, "https://auth.example", claims.Issuer)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, []string{"https://resource.example"}, []string(claims.Audience))
	require.Equal(t, "profile:read", claims.Scope)
	require.Equal(t, "toy-client", claims.ClientID)
	require.Equal(t, expires.Unix(), claims.ExpiresAt.Unix())
	require.NotEmpty(t, claims.ID)

	exp := jwt.ExpiryUnix(raw)
	require.NotNil(t, exp)
	require.Equal(t, expires.Unix(), *exp)
}

func TestCreate_DistinctForSamePayload(t *testing.T) {
	c := jwt.NewCreator("iss", "aud", 16)
	now := time.Now()
	a, err := c.CreateAccessToken("alice", "toy-client", "profile:read", now, now.Add(time.Second))
	require.NoError(t, err)
	b, err := c.CreateAccessToken("alice", "toy-client", "profile:read", now, now.Add(time.Second))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "not-a-token", "a.b", "!!.??.x"} {
		_, err := jwt.Decode(raw)
		require.True(t, errors.Is(err, errors.ErrMalformedToken), raw)
		require.Nil(t, jwt.ExpiryUnix(raw))
	}
}
