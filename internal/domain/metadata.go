package domain

// WarehouseDatabase is a database visible to the operator's session.
type WarehouseDatabase struct {
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// WarehouseSchema is a schema inside a warehouse database.
type WarehouseSchema struct {
	Name    string `json:"name"`
	Owner   string `json:"owner,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// WarehouseObject is a table or view inside a schema.
type WarehouseObject struct {
	Name     string `json:"name"`
	Type     string `json:"type"` // BASE TABLE or VIEW
	RowCount *int64 `json:"row_count,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// ObjectColumn describes one column of a table or view.
type ObjectColumn struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`
	Default  string `json:"default,omitempty"`
	Comment  string `json:"comment,omitempty"`
}

// ObjectGrant is one privilege held on an object.
type ObjectGrant struct {
	Privilege   string `json:"privilege"`
	GrantedTo   string `json:"granted_to"`
	GranteeName string `json:"grantee_name"`
	GrantOption bool   `json:"grant_option"`
	GrantedBy   string `json:"granted_by,omitempty"`
}

// ObjectDetail is a described table or view. Grants is nil when the
// warehouse has no object grants.
type ObjectDetail struct {
	Database string         `json:"database"`
	Schema   string         `json:"schema"`
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	Columns  []ObjectColumn `json:"columns"`
	Grants   []ObjectGrant  `json:"grants,omitempty"`
}

// AccountRole is an account-level warehouse role.
type AccountRole struct {
	Name            string `json:"name"`
	Owner           string `json:"owner,omitempty"`
	Comment         string `json:"comment,omitempty"`
	AssignedToUsers int64  `json:"assigned_to_users"`
	GrantedToRoles  int64  `json:"granted_to_roles"`
	GrantedRoles    int64  `json:"granted_roles"`
}

// RoleHierarchyNode lists the roles granted to one role.
type RoleHierarchyNode struct {
	Role         string   `json:"role"`
	GrantedRoles []string `json:"granted_roles"`
}
