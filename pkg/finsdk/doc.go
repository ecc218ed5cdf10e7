/*
Package finsdk provides a client for the personal-finance REST backend.

# Overview

The backend authenticates with cookies: POST /user/login (or a successful
wallet verification) answers with Set-Cookie headers for the accessToken and
refreshToken cookies, and every later request is authenticated by replaying
them. The Client therefore takes an http.CookieJar and never handles tokens
itself:

	jar := ... // any http.CookieJar, e.g. the persistent store.Jar
	client := finsdk.NewClient("http://localhost:5001/api/v1", jar)

	if _, err := client.Login(ctx, finsdk.LoginRequest{Email: email, Password: pw}); err != nil {
		return err
	}

	user, err := client.GetCurrentUser(ctx)

# Results

Every call returns a typed value and an error; callers never inspect the
backend's envelope. The backend wraps most payloads as

	{"status": true, "message": "...", "data": ...}

(the wallet endpoints use "success" instead of "status"). A non-2xx response
or an envelope with status/success false becomes an *APIError carrying the
HTTP status code and the backend's message. A 2xx response without the
promised payload becomes ErrMalformedResponse. Transport failures are
returned wrapped.

	user, err := client.GetCurrentUser(ctx)
	switch {
	case finsdk.IsUnauthorized(err):
		// cookies missing or expired
	case err != nil:
		// network or malformed payload
	}

# Logging

NewClient installs slogx.Transport, which stamps each request with an
X-Request-ID and logs it through the logger carried by the request context.
*/
package finsdk
