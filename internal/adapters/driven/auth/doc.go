// Package auth provides the token provider for the Microsoft identity
// platform. Tokens come from the serialized credential cache when they are
// still valid, from a refresh grant when refresh material may be persisted,
// and from an interactive device authorization grant otherwise.
package auth
