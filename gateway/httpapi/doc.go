// Package httpapi implements the sessauth Gateway against the university
// REST backend. Endpoints are kind-scoped: staff and student flows live under
// /staff/auth/... and /student/auth/... respectively, with the permission
// feed shared at /auth/permissions.
package httpapi
