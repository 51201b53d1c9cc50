// Package comparison fans out one to four independent single-turn
// generation requests concurrently and aggregates their outcomes.
//
// Each slot is validated and executed in isolation: a bad provider
// name, a missing credential, or an adapter failure turns into an
// error entry for that slot only and never disturbs its siblings. The
// result list preserves input order.
package comparison
