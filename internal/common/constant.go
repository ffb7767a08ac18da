package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in AuthorizationHeaderName.
const BearerPrefix = "Bearer "

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// DayLayout formats activity buckets on the wire.
const DayLayout = "2006-01-02"
