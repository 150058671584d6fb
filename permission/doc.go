// Package permission implements the path-prefix capability model shared by
// the session store and its middleware.
//
// A permission is a slash-delimited path prefix: "employees" grants access to
// "employees" and everything nested under it ("employees/workload"), but not
// to lexical near-misses ("employeesx"). The wildcard marker "*" grants
// everything.
//
// The package also provides the sorted set-equality comparison used by the
// store's tamper detection; it has no dependencies and performs no I/O.
package permission
