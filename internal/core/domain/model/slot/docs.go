// Package slot models bookable delivery windows and the capacity counter
// that admission control protects.
//
// Key business rules:
//   - 0 <= available <= capacity at all times
//   - reserve takes one unit only from an active slot with room left
//   - release gives one unit back and never overshoots capacity
//   - reducing capacity clamps availability but keeps existing bookings
//   - priority is display metadata and never affects admission
package slot
