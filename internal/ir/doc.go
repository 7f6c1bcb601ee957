// Package ir provides the declarative model types for interaction timelines.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - The model is immutable once imported; the engine never writes to it
//   - Render types are resolved at import time and carried on each ActionItem
//   - Times are milliseconds as float64; positions are fractions in [0, 1]
//   - Keyframes are positions in [0, 100] along a driving parameter
package ir
