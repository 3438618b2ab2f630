// Package dynamock provides test doubles and integration helpers for
// dynamodel.
//
// Three levels of fidelity are available:
//
//   - Server: an in-memory single-table fake with working conditional
//     writes, sort-key ordering, lookup-index queries, and segmented scans.
//     Most unit tests want this.
//   - MockClient: an expectation-based mock with one func field per
//     operation, for injecting failures and asserting on raw requests.
//   - LocalDynamoDB: helpers for running against DynamoDB Local, including
//     table provisioning with the dynamodel schema and cleanup.
//
// Seed and SeedJSON load entity fixtures through a store regardless of which
// client backs it.
package dynamock
