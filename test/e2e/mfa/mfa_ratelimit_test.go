package mfa_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/nexosupport/nexomfa/pkg/mfasdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitVerifyEndpoint verifies code submission for one session is
// capped at 10 requests per minute whatever the outcome of each request.
func TestRateLimitVerifyEndpoint(t *testing.T) {
	client := setupMFAContainerWithDefaultRateLimits(t)
	ctx := t.Context()

	enrollBackupCodes(t, client, "e2e-ratelimit")
	sess, err := client.StartSession(ctx, mfasdk.StartSessionRequest{UserID: "e2e-ratelimit"})
	require.NoError(t, err)

	for i := range 10 {
		_, err := client.Verify(ctx, sess.ID, mfasdk.VerifyRequest{Factor: "backupcodes", Code: "AAAA-AAAA"})
		require.False(t, errors.Is(err, mfasdk.ErrRateLimited), "request %d should not be rate limited", i+1)
	}

	_, err = client.Verify(ctx, sess.ID, mfasdk.VerifyRequest{Factor: "backupcodes", Code: "AAAA-AAAA"})
	require.ErrorIs(t, err, mfasdk.ErrRateLimited)

	var apiErr *mfasdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)

	// Other sessions are limited separately.
	other, err := client.StartSession(ctx, mfasdk.StartSessionRequest{UserID: "e2e-ratelimit-2"})
	require.NoError(t, err)
	_, err = client.NextFactor(ctx, other.ID)
	require.NoError(t, err)
}

// TestServiceTokenRequired verifies the API rejects callers without the token.
func TestServiceTokenRequired(t *testing.T) {
	client := setupMFAContainer(t)
	anonymous := mfasdk.NewClient(client.BaseURL, "wrong-token")

	_, err := anonymous.ListFactors(t.Context())
	require.ErrorIs(t, err, mfasdk.ErrInvalidToken)

	_, err = client.ListFactors(t.Context())
	require.NoError(t, err)
}
