// Package services contains domain services that work across aggregates or
// carry domain rules without owning state.
//
// The package includes:
//   - HeuristicSlotRanker: deterministic local scoring of delivery slots used
//     when the external prediction service is unavailable
package services
