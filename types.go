package sessauth

import (
	"context"
	"io"

	"github.com/univcore/sessauth/jwt"
)

// PrincipalKind discriminates the two authentication flows offered by the
// backend: staff members identified by a login, students identified by a
// student ID.
type PrincipalKind string

const (
	// KindStaff is the principal kind for university employees.
	KindStaff PrincipalKind = "staff"
	// KindStudent is the principal kind for enrolled students.
	KindStudent PrincipalKind = "student"
)

// Valid reports whether k is one of the two known principal kinds.
func (k PrincipalKind) Valid() bool {
	return k == KindStaff || k == KindStudent
}

// Role is the canonical role code a raw backend role maps onto. The set is
// closed; unknown raw roles map to [RoleRestricted], the least-privilege
// member.
type Role string

const (
	// RoleAdmin bypasses all path-permission checks.
	RoleAdmin Role = "admin"
	// RoleDean covers faculty leadership accounts.
	RoleDean Role = "dean"
	// RoleTeacher covers teaching staff accounts.
	RoleTeacher Role = "teacher"
	// RoleStaff covers administrative employees without a dedicated role.
	RoleStaff Role = "staff"
	// RoleStudent is assigned to every student principal regardless of the
	// raw role field.
	RoleStudent Role = "student"
	// RoleRestricted is the least-privilege fallback for unrecognized raw
	// role codes.
	RoleRestricted Role = "restricted"
)

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDean, RoleTeacher, RoleStaff, RoleStudent, RoleRestricted:
		return true
	}
	return false
}

// User is the canonical authenticated principal held by the session store.
// Identity fields are pass-through from the backend; Role and Permissions are
// derived on login and kept in sync with the trusted token claims.
type User struct {
	ID          int64
	FullName    string
	Email       string
	Phone       string
	AvatarURL   string
	Kind        PrincipalKind
	Role        Role
	Permissions []string
}

// Credentials is the discriminated login payload. Identifier carries the
// staff login for [KindStaff] and the student ID for [KindStudent].
type Credentials struct {
	Kind       PrincipalKind `validate:"required,oneof=staff student"`
	Identifier string        `validate:"required"`
	Secret     string        `validate:"required"`
}

// ProfileUpdate carries the mutable identity fields accepted by
// [Store.UpdateProfile].
type ProfileUpdate struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
}

// RawUser is the principal representation returned by the gateway before
// role mapping. Role and Type carry the backend's raw codes.
type RawUser struct {
	ID          int64    `json:"id"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	ImageURL    string   `json:"image_url"`
	Role        string   `json:"role"`
	Type        string   `json:"type"`
	Permissions []string `json:"permissions"`
}

// LoginResult is the tagged success payload of [Gateway.Login].
type LoginResult struct {
	User        RawUser
	AccessToken string
}

// RefreshResult is the tagged success payload of [Gateway.RefreshToken].
type RefreshResult struct {
	AccessToken string
}

// AvatarResult is the tagged success payload of [Gateway.UploadAvatar].
type AvatarResult struct {
	ImageURL string
}

// PermissionList is the tagged success payload of [Gateway.Permissions].
type PermissionList struct {
	Permissions []string
}

// Gateway is the remote authentication backend as seen by the store. Every
// method represents one REST call; implementations must return
// [*GatewayError] for backend-reported failures so the store can surface the
// backend's message. gateway/httpapi provides the production implementation.
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Logout(ctx context.Context, kind PrincipalKind) error
	RefreshToken(ctx context.Context, kind PrincipalKind) (*RefreshResult, error)
	CurrentUser(ctx context.Context, kind PrincipalKind) (*RawUser, error)
	UpdateProfile(ctx context.Context, kind PrincipalKind, data ProfileUpdate) error
	UploadAvatar(ctx context.Context, kind PrincipalKind, filename string, content io.Reader) (*AvatarResult, error)
	Permissions(ctx context.Context, token string) (*PermissionList, error)
}

// TokenCodec decodes bearer-token claims. A decode error means the token is
// of a foreign or legacy shape and must be tolerated, not treated as a
// security failure; [jwt.Codec] is the default implementation.
type TokenCodec interface {
	Decode(token string) (*jwt.Claims, error)
}
