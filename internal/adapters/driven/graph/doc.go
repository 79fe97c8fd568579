// Package graph implements the workbook client against the Microsoft Graph
// workbook API: item lookup by path, editing sessions, range reads and
// writes, and application recalculation.
//
// Every request carries a bearer token from the token provider. Once a
// session is open the workbook-session-id header ties requests to it.
// Requests are paced by a token bucket; a 429 pushes the next request past
// its Retry-After. Failed cell operations are not retried.
package graph
