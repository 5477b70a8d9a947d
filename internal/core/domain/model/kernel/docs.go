// Package kernel holds the value objects shared by every aggregate of the
// slot admission domain.
//
// The package includes:
//   - UUID: identifier wrapper that rejects the nil UUID
//   - GeoPoint: validated WGS84 coordinate of a delivery destination
//   - Clock: source of "now" and calendar-day arithmetic in a reference timezone
//
// Value objects here are immutable and safe for concurrent use. Zero values
// fail Validate; use the constructors.
package kernel
