package admin

import (
	"context"
	"fmt"
	"strings"

	"prism-console/internal/ddl"
	"prism-console/internal/domain"
)

// CreateRoleRequest holds the parameters for creating an account role.
type CreateRoleRequest struct {
	Name        string          `json:"name"`
	Type        domain.RoleType `json:"type"`
	ParentRole  string          `json:"parent_role,omitempty"`
	Comment     string          `json:"comment,omitempty"`
	Environment string          `json:"environment,omitempty"`
}

// CreateRole creates an account role and, when ParentRole is set, grants
// the parent to it. With a parent the action is also recorded in the role
// hierarchy log, correlated to its audit event.
func (s *Service) CreateRole(ctx context.Context, session domain.Session, req CreateRoleRequest) (*ActionResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, domain.ErrValidation("invalid role type %q", req.Type)
	}
	create, err := s.stmts.CreateRole(req.Name, req.Comment, false)
	if err != nil {
		return nil, validation(err)
	}
	stmts := []string{create}
	if req.ParentRole != "" {
		grant, err := ddl.GrantRole(req.ParentRole, req.Name)
		if err != nil {
			return nil, validation(err)
		}
		stmts = append(stmts, grant)
	}

	attempted, execErr := run(ctx, session, stmts...)
	res := s.record(ctx, session, domain.EventCreateRole, req.Name,
		fmt.Sprintf("Role '%s' created successfully", req.Name), attempted, execErr)
	s.rolesChanged(res)

	if req.ParentRole != "" {
		s.hierarchy.LogRoleHierarchyEvent(ctx, session, domain.RoleHierarchyEventInput{
			AuditEventID:         res.AuditEventID,
			InvokedBy:            invokedBy(ctx),
			EnvironmentName:      req.Environment,
			CreatedRoleName:      req.Name,
			CreatedRoleType:      req.Type,
			ParentAccountRole:    req.ParentRole,
			SQLCommandCreateRole: create,
			Status:               res.Status,
			Message:              messageFor(res),
		})
	}
	return &res, nil
}

// ProvisionRoleRequest holds the parameters for provisioning a role into an
// environment. MappedDatabaseRole is qualified as DATABASE.ROLE.
type ProvisionRoleRequest struct {
	Environment        string          `json:"environment"`
	RoleName           string          `json:"role_name"`
	RoleType           domain.RoleType `json:"role_type"`
	MappedDatabaseRole string          `json:"mapped_database_role,omitempty"`
	ParentAccountRole  string          `json:"parent_account_role,omitempty"`
}

// ProvisionRole creates a role if missing, grants it the mapped database
// role and hands ownership to the parent account role. Execution stops at
// the first failed statement. The attempt is audited as PROVISION_ROLE and
// then recorded in the role hierarchy log with the audit event id.
func (s *Service) ProvisionRole(ctx context.Context, session domain.Session, req ProvisionRoleRequest) (*ActionResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !req.RoleType.Valid() {
		return nil, domain.ErrValidation("invalid role type %q", req.RoleType)
	}
	env, err := s.environment(ctx, req.Environment)
	if err != nil {
		return nil, err
	}

	create, err := s.stmts.CreateRole(req.RoleName, "", true)
	if err != nil {
		return nil, validation(err)
	}
	stmts := []string{create}
	var grantDBRole, grantOwnership string
	if req.MappedDatabaseRole != "" {
		if grantDBRole, err = ddl.GrantDatabaseRole(req.MappedDatabaseRole, req.RoleName); err != nil {
			return nil, validation(err)
		}
		stmts = append(stmts, grantDBRole)
	}
	if req.ParentAccountRole != "" {
		if grantOwnership, err = ddl.GrantOwnershipOnRole(req.RoleName, req.ParentAccountRole); err != nil {
			return nil, validation(err)
		}
		stmts = append(stmts, grantOwnership)
	}

	attempted, execErr := run(ctx, session, stmts...)
	res := s.record(ctx, session, domain.EventProvisionRole, req.RoleName,
		fmt.Sprintf("Role '%s' provisioned in %s", req.RoleName, env), attempted, execErr)
	s.rolesChanged(res)

	s.hierarchy.LogRoleHierarchyEvent(ctx, session, domain.RoleHierarchyEventInput{
		AuditEventID:             res.AuditEventID,
		InvokedBy:                invokedBy(ctx),
		EnvironmentName:          env,
		CreatedRoleName:          req.RoleName,
		CreatedRoleType:          req.RoleType,
		MappedDatabaseRole:       req.MappedDatabaseRole,
		ParentAccountRole:        req.ParentAccountRole,
		SQLCommandCreateRole:     create,
		SQLCommandGrantDBRole:    grantDBRole,
		SQLCommandGrantOwnership: grantOwnership,
		Status:                   res.Status,
		Message:                  messageFor(res),
	})
	return &res, nil
}

// GrantRoles grants each role to target, one audited statement per role.
// Individual failures do not stop the remaining grants.
func (s *Service) GrantRoles(ctx context.Context, session domain.Session, target string, roles []string) (*BatchResult, error) {
	return s.roleGrants(ctx, session, target, roles, domain.EventGrantRole, ddl.GrantRole, "Granted role '%s' to '%s'")
}

// RevokeRoles revokes each role from target, one audited statement per role.
func (s *Service) RevokeRoles(ctx context.Context, session domain.Session, target string, roles []string) (*BatchResult, error) {
	return s.roleGrants(ctx, session, target, roles, domain.EventRevokeRole, ddl.RevokeRole, "Revoked role '%s' from '%s'")
}

func (s *Service) roleGrants(ctx context.Context, session domain.Session, target string, roles []string,
	eventType string, build func(role, grantee string) (string, error), success string,
) (*BatchResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, domain.ErrValidation("at least one role is required")
	}
	stmts := make([]string, len(roles))
	for i, role := range roles {
		stmt, err := build(role, target)
		if err != nil {
			return nil, validation(err)
		}
		stmts[i] = stmt
	}

	results := make([]ActionResult, len(roles))
	for i, role := range roles {
		results[i] = s.execute(ctx, session, eventType, target, fmt.Sprintf(success, role, target), stmts[i])
	}
	s.rolesChanged(results...)
	return newBatch(results), nil
}

// GrantDatabasePrivileges grants each privilege on database to role, one
// audited statement per privilege.
func (s *Service) GrantDatabasePrivileges(ctx context.Context, session domain.Session, role, database string, privileges []string) (*BatchResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if len(privileges) == 0 {
		return nil, domain.ErrValidation("at least one privilege is required")
	}
	stmts := make([]string, len(privileges))
	for i, priv := range privileges {
		stmt, err := ddl.GrantDatabasePrivilege(priv, database, role)
		if err != nil {
			return nil, validation(err)
		}
		stmts[i] = stmt
	}

	results := make([]ActionResult, len(privileges))
	for i, priv := range privileges {
		results[i] = s.execute(ctx, session, domain.EventGrantDatabasePrivilege, database,
			fmt.Sprintf("Granted %s on '%s' to '%s'", strings.ToUpper(priv), database, role), stmts[i])
	}
	return newBatch(results), nil
}

// CreateEnvironmentRoles creates the ADMIN, DEVELOPER, ANALYST and VIEWER
// roles of prefix for a registered environment. Every role is attempted and
// audited separately.
func (s *Service) CreateEnvironmentRoles(ctx context.Context, session domain.Session, environment, prefix string) (*BatchResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	env, err := s.environment(ctx, environment)
	if err != nil {
		return nil, err
	}
	names, err := ddl.EnvironmentRoleNames(prefix, env)
	if err != nil {
		return nil, validation(err)
	}

	stmts := make([]string, len(names))
	for i, name := range names {
		if stmts[i], err = s.stmts.CreateRole(name, "", false); err != nil {
			return nil, validation(err)
		}
	}

	results := make([]ActionResult, len(names))
	for i, name := range names {
		results[i] = s.execute(ctx, session, domain.EventCreateEnvironmentRole, name,
			fmt.Sprintf("Role '%s' created for %s", name, env), stmts[i])
	}
	s.rolesChanged(results...)
	return newBatch(results), nil
}

// environment resolves a registered environment name. Without a registry
// any valid identifier is accepted.
func (s *Service) environment(ctx context.Context, name string) (string, error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "" {
		return "", domain.ErrValidation("environment is required")
	}
	if err := ddl.ValidateIdentifier(name); err != nil {
		return "", validation(err)
	}
	if s.envs == nil {
		return name, nil
	}
	env, err := s.envs.GetByName(ctx, name)
	if err != nil {
		return "", err
	}
	return env.Name, nil
}
