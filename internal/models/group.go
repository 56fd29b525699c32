package models

// Role is a member's permission level within a group.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// Group represents a set of people who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// CreatedBy is the user ID of the member who created the group.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// GroupMember links a user to a group.
// The balance engine treats members as read-only reference data: it uses them
// for naming and validation, never mutates them.
type GroupMember struct {
	// UserID identifies the user across every group they belong to.
	UserID string

	// GroupID is the group this membership belongs to.
	GroupID string

	// Role is member or admin. Admins may add members.
	Role Role

	// DisplayName is how the user is shown inside this group.
	DisplayName string
}

// MemberDirectory indexes members by user ID.
type MemberDirectory map[string]GroupMember

// NewMemberDirectory builds a directory from a member list.
func NewMemberDirectory(members []GroupMember) MemberDirectory {
	dir := make(MemberDirectory, len(members))
	for _, m := range members {
		dir[m.UserID] = m
	}
	return dir
}

// Has reports whether userID is a member.
func (d MemberDirectory) Has(userID string) bool {
	_, ok := d[userID]
	return ok
}

// Name returns the display name for userID, falling back to the ID itself.
func (d MemberDirectory) Name(userID string) string {
	if m, ok := d[userID]; ok && m.DisplayName != "" {
		return m.DisplayName
	}
	return userID
}
