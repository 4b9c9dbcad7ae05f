// Package auth acquires and caches Bullhorn platform sessions.
//
// Authenticator performs the three-hop login: the authorize request yields
// an authorization code on its redirect, the code is exchanged for an access
// token, and the access token is used once against the login endpoint to
// obtain the REST URL and BhRestToken.
//
// SessionManager caches the resulting session and decides when it must be
// replaced. A session is stale eight minutes after it was acquired. Callers
// that find no session, or a stale one, share a single in-flight login.
package auth
