// Package order provides the Order aggregate as seen by slot accounting:
// identity, sender, the address hints used for slot matching and ranking,
// lifecycle status, and the single order-to-slot binding.
//
// Key business rules:
//   - An order holds at most one slot; rebinding to the same slot is a no-op
//   - Binding to a different slot while one is held fails with ErrOrderAlreadyBound
//   - Only Pending and Confirmed orders change their binding
//   - Cancelling an order does not release capacity by itself
package order
