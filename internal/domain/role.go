package domain

// Role enumerates portal user roles. The ticket workflow gates each stage on
// one or more of these.
type Role string

const (
	RoleAdmin      Role = "ADM"
	RoleManager    Role = "MGR"
	RoleOperator   Role = "OP"
	RoleQuality    Role = "QC"
	RoleProcess    Role = "PE"
	RoleEquipment  Role = "EQ"
	RoleSupplierQE Role = "SQE"
	RoleWarehouse  Role = "WH"
	RoleService    Role = "CS"
	RoleAll        Role = "ALL"
)

var knownRoles = map[Role]struct{}{
	RoleAdmin:      {},
	RoleManager:    {},
	RoleOperator:   {},
	RoleQuality:    {},
	RoleProcess:    {},
	RoleEquipment:  {},
	RoleSupplierQE: {},
	RoleWarehouse:  {},
	RoleService:    {},
	RoleAll:        {},
}

// Valid reports whether r is one of the known portal roles.
func (r Role) Valid() bool {
	_, ok := knownRoles[r]
	return ok
}
