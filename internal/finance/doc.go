// Package finance implements the recurrence and money calculations behind
// Subscriptio: next-occurrence dates, cost splitting, payment schedule
// generation, per-person balance aggregation and spend reports.
//
// Every function in this package is pure and synchronous: no I/O, no clocks
// (callers pass "now" explicitly), no mutation of inputs. Functions degrade to
// safe defaults (empty slice, zero balance, no-next-occurrence) for malformed
// or missing data; errors are reserved for programmer misuse such as a
// negative horizon.
package finance
