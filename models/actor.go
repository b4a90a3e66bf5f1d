package models

type Role string

const (
	RoleTailor   Role = "tailor"
	RoleCustomer Role = "customer"
)

// Actor is whoever issues a command.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

func Tailor(id string) Actor   { return Actor{ID: id, Role: RoleTailor} }
func Customer(id string) Actor { return Actor{ID: id, Role: RoleCustomer} }
