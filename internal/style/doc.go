// Package style flattens interpolated value maps into style strings and
// parses style strings back into value maps.
//
// Each property family has its own rules:
//   - transforms compose move, scale, rotate, and skew into one string, each
//     axis defaulting independently when unset
//   - colors parse and emit r/g/b triplets plus alpha
//   - filters join per-filter-type entries with per-type default units
//   - sizes pair a value with a unit, where AUTO resolves to "auto"
package style
