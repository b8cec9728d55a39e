// Package models defines the core domain models for Subscriptio.
//
// # Model Overview
//
//   - Subscription: a recurring expense with a recurrence descriptor and an
//     optional list of participant shares
//   - Payment: one concrete occurrence of a subscription's cost, with per-person
//     splits
//   - Person: someone who shares costs with the account owner
//   - PersonBalance: a derived per-person aggregate (never persisted)
//   - User: a registered account (authentication)
//   - Settings, Notification: per-user preferences and renewal reminders
//
// # Design Principles
//
//  1. **Ownership by value**: subscriptions embed their recurrence descriptor and
//     participant list; payments embed their splits. No cross-model pointers.
//  2. **Derived data stays derived**: PersonBalance and every report type are
//     recomputed from source records on demand and never persisted.
//  3. **Avoid circular references**: relationships use ID strings.
//  4. **Stable JSON shape**: field names match the records the web client already
//     stores, so existing data round-trips unchanged.
package models
