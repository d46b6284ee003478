// Package httpapi exposes the rental engine as a JSON HTTP API on echo.
//
// All routes below /v1 except the payment webhook and the health check require a bearer token
// signed with HS256. The token's sub claim is the user id, its is_staff claim grants staff rights.
// Handlers map domain errors to status codes in one place, see statusOf.
package httpapi
