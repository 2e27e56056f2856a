/*
Package consolesdk provides a client for the specter token console API.

# Overview

The console keeps a pool of captured Entra ID tokens, mints new access tokens
from refresh tokens (including across the Family of Client IDs), and refreshes
access tokens before they expire. This package wraps its HTTP API.

Every /v1 operation authenticates with an operator API key:

	client := consolesdk.NewClient("http://localhost:8080", os.Getenv("SPECTER_API_KEY"))

	// Check service health (unauthenticated)
	health, err := client.GetLiveness(ctx)

	// Import a broker cache export
	f, _ := os.Open("broker_tokens.json")
	res, err := client.ImportBroker(ctx, f, "broker_tokens.json")

	// Get an ARM token for the active identity
	tok, err := client.Resolve(ctx, consolesdk.ResolveRequest{
		Audience: "https://management.azure.com",
		Reveal:   true,
	})

Operators with TOTP enabled send a current code with each request:

	client = client.WithOTP(code)

# Errors

Non-2xx responses are returned as *APIError. Compare against the predefined
errors with errors.Is, which matches on the error code:

	_, err := client.Resolve(ctx, req)
	if errors.Is(err, consolesdk.ErrNoActiveContext) {
		// activate a token or pass a UPN
	}

When the requested identity has nothing for an audience but others do, the
error code is cross_identity_tokens_available and Candidates lists them:

	var apiErr *consolesdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == consolesdk.ErrorCodeCrossIdentity {
		for _, c := range apiErr.Candidates {
			fmt.Println(c.UPN, c.TokenID)
		}
	}

Identity provider rejections keep the provider's own error, description and
AADSTS codes in ProviderError, ProviderErrorDescription and ErrorCodes.
*/
package consolesdk
