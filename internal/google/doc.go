// Package google handles OAuth2 authentication against the Google APIs.
//
// Credentials are read from a user-supplied credentials.json (an OAuth
// client of type "Desktop app" downloaded from the Google Cloud console).
// The exchanged token is cached as JSON in the user cache directory and
// refreshed transparently by the oauth2 token source. If the refresh
// token has been revoked the cached file is deleted so the next run can
// re-authenticate cleanly.
//
// The token lifecycle lives entirely in this package; the gmail and
// calendar clients only ever see a ready *http.Client.
package google
