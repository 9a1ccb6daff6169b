// Package domain contains the core business entities for casefind.
//
// The domain layer has no dependencies on infrastructure - it defines
// fragments, cases, query results and the similarity rule that every
// retrieval path shares.
package domain
