package models

// Role tags the variant of an Identity.
type Role int

const (
	RoleAnonymous Role = iota
	RoleAdmin
	RoleCitizen
)

func (r Role) String() string {
	switch r {
	case RoleAnonymous:
		return "anonymous"
	case RoleAdmin:
		return "admin"
	case RoleCitizen:
		return "citizen"
	}
	return "unknown"
}

// Identity is the authenticated role of a session: Anonymous, Admin, or a
// Citizen captured by value at login time. The zero value is Anonymous.
type Identity struct {
	role    Role
	citizen Citizen
}

func Anonymous() Identity { return Identity{role: RoleAnonymous} }

func Admin() Identity { return Identity{role: RoleAdmin} }

func CitizenIdentity(c Citizen) Identity { return Identity{role: RoleCitizen, citizen: c} }

func (i Identity) Role() Role { return i.role }

// Citizen returns the captured record when the identity is a citizen.
func (i Identity) Citizen() (Citizen, bool) {
	if i.role != RoleCitizen {
		return Citizen{}, false
	}
	return i.citizen, true
}

func (i Identity) IsAdmin() bool { return i.role == RoleAdmin }

func (i Identity) IsAnonymous() bool { return i.role == RoleAnonymous }
