/*
Package mfasdk is the Go client for the nexomfa second-factor service.

The portal calls the service after the password check succeeded. A login is a
session: start it, ask for the next factor, submit what the user typed, and
repeat until the session is satisfied or failed.

	client := mfasdk.NewClient("http://mfa:8080", serviceToken)

	sess, err := client.StartSession(ctx, mfasdk.StartSessionRequest{
		UserID:     userID,
		RemoteAddr: remoteAddr,
	})

	next, err := client.NextFactor(ctx, sess.ID)
	for !next.Done {
		code := promptUser(next.Factor, next.Delivery)
		res, err := client.Verify(ctx, sess.ID, mfasdk.VerifyRequest{
			Factor: next.Factor.Name,
			Code:   code,
		})
		...
		next, err = client.NextFactor(ctx, sess.ID)
	}

When the session is satisfied the response carries an EdDSA signed
assertion. Verify it against GetJWKS before trusting the login.

# Errors

Every non-2xx response is returned as *APIError. The predefined values can be
matched with errors.Is:

	if errors.Is(err, mfasdk.ErrSessionExpired) {
		// restart the login
	}

Wrong or expired codes are not errors. They come back as a VerifyResponse
with Outcome "fail", "expired" or "locked".
*/
package mfasdk
