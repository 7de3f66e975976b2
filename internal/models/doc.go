// Package models defines the core domain models for the back-office API.
//
// # Models
//
//   - User: a registered account with a role reference
//   - Role: reference data mapping a role name to an access level
//   - Bill: a billable obligation with a target amount and a paid flag
//   - Payment: an append-only record of funds received against a bill
//
// # Design Principles
//
// 1. **Avoid circular references**: relationships use ID strings, never pointers
// 2. **Append-only payments**: corrections are new Payment rows, old rows are never edited
// 3. **Derived state stays derived**: Bill.Paid is only written by the billing engine
//
// Money fields use decimal.Decimal so that amounts stay exact at two
// decimal places; float64 is never used for money.
package models
