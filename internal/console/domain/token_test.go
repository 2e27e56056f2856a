package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/specter/pkg/entra"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	require.Equal(t, ClassFOCI, Classify(entra.BrokerClientID, false))
	require.Equal(t, ClassPRTBound, Classify(entra.BrokerClientID, true))
	require.Equal(t, ClassStandalone, Classify("0c1307d4-29d6-4389-a11c-5cbe7f65d7fa", false))
}

func TestTokenHelpers(t *testing.T) {
	t.Parallel()

	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	require.False(t, Token{}.IsExpired(now), "no expiry never expires")
	require.True(t, Token{ExpiresAt: &past}.IsExpired(now))
	require.True(t, Token{ExpiresAt: &now}.IsExpired(now))
	require.False(t, Token{ExpiresAt: &future}.IsExpired(now))

	require.True(t, Token{Secret: "eyJ0eXAi..."}.IsPlaceholder())
	require.True(t, Token{}.IsPlaceholder())
	require.False(t, Token{Secret: "eyJ0eXAi.x.y"}.IsPlaceholder())
}

func TestTruncateSecret(t *testing.T) {
	t.Parallel()

	short := "abc"
	require.Equal(t, short, TruncateSecret(short))

	long := strings.Repeat("x", 80)
	got := TruncateSecret(long)
	require.Len(t, got, 53)
	require.True(t, strings.HasSuffix(got, TruncationMarker))

	tok := Token{Secret: long, EmbeddedRefresh: long}
	tr := tok.Truncated()
	require.Equal(t, got, tr.Secret)
	require.Equal(t, got, tr.EmbeddedRefresh)
	require.Equal(t, long, tok.Secret, "original untouched")
}
