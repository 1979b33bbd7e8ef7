// AngelaMos | 2026
// access.go

package access

import (
	"fmt"
)

type Role string

const (
	RoleGuest Role = "guest"
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleGuest, RoleUser, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

// Permission is a bit in a PermissionSet.
type Permission uint8

const (
	PermView Permission = 1 << iota
	PermVote
	PermPost
	PermComment
	PermModerate
	PermDelete
)

var permissionNames = map[Permission]string{
	PermView:     "view",
	PermVote:     "vote",
	PermPost:     "post",
	PermComment:  "comment",
	PermModerate: "moderate",
	PermDelete:   "delete",
}

func (p Permission) String() string {
	if name, ok := permissionNames[p]; ok {
		return name
	}
	return fmt.Sprintf("permission(%d)", uint8(p))
}

type PermissionSet uint8

func (s PermissionSet) Has(p Permission) bool {
	return s&PermissionSet(p) != 0
}

func (s PermissionSet) Names() []string {
	out := make([]string, 0, len(permissionNames))
	for _, p := range []Permission{PermView, PermVote, PermPost, PermComment, PermModerate, PermDelete} {
		if s.Has(p) {
			out = append(out, p.String())
		}
	}
	return out
}

func setOf(perms ...Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		s |= PermissionSet(p)
	}
	return s
}

// PermissionsFor is total over Role. An unknown role gets nothing.
func PermissionsFor(r Role) PermissionSet {
	switch r {
	case RoleGuest:
		return setOf(PermView)
	case RoleUser:
		return setOf(PermView, PermVote, PermPost, PermComment)
	case RoleAdmin:
		return setOf(PermView, PermVote, PermPost, PermComment, PermModerate, PermDelete)
	default:
		return 0
	}
}

// Actor is the user a request acts as.
type Actor struct {
	UserID string
	Role   Role
	Name   string
}

func (a Actor) Can(p Permission) bool {
	return PermissionsFor(a.Role).Has(p)
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanModify reports whether the actor may edit or delete content owned by
// authorID.
func (a Actor) CanModify(authorID string) bool {
	return a.UserID == authorID || a.Can(PermModerate)
}
