package admin

import (
	"context"
	"fmt"

	"prism-console/internal/ddl"
	"prism-console/internal/domain"
)

// CreateDatabaseRequest holds the parameters for creating a database.
type CreateDatabaseRequest struct {
	Name        string `json:"name"`
	CloneSource string `json:"clone_source,omitempty"`
	Comment     string `json:"comment,omitempty"`
}

// CreateDatabase creates a database, cloning CloneSource when set. A clone
// is audited as CLONE_DATABASE.
func (s *Service) CreateDatabase(ctx context.Context, session domain.Session, req CreateDatabaseRequest) (*ActionResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	stmt, err := s.stmts.CreateDatabase(req.Name, req.CloneSource, req.Comment)
	if err != nil {
		return nil, validation(err)
	}
	eventType := domain.EventCreateDatabase
	success := fmt.Sprintf("Database '%s' created successfully", req.Name)
	if req.CloneSource != "" {
		eventType = domain.EventCloneDatabase
		success = fmt.Sprintf("Database '%s' cloned from '%s' successfully", req.Name, req.CloneSource)
	}
	res := s.execute(ctx, session, eventType, req.Name, success, stmt)
	s.databasesChanged(res)
	return &res, nil
}

// CloneDatabase creates name as a zero-copy clone of source.
func (s *Service) CloneDatabase(ctx context.Context, session domain.Session, source, name, comment string) (*ActionResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if source == "" {
		return nil, domain.ErrValidation("clone source is required")
	}
	return s.CreateDatabase(ctx, session, CreateDatabaseRequest{Name: name, CloneSource: source, Comment: comment})
}

// DeleteDatabase drops a database. Without confirm nothing is executed or
// logged.
func (s *Service) DeleteDatabase(ctx context.Context, session domain.Session, name string, confirm bool) (*ActionResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	stmt, err := ddl.DropDatabase(name)
	if err != nil {
		return nil, validation(err)
	}
	if !confirm {
		return nil, domain.ErrValidation("deleting database %q requires confirmation", name)
	}
	res := s.execute(ctx, session, domain.EventDeleteDatabase, name,
		fmt.Sprintf("Database '%s' deleted successfully", name), stmt)
	s.databasesChanged(res)
	return &res, nil
}

// CreateWarehouse creates a virtual warehouse.
func (s *Service) CreateWarehouse(ctx context.Context, session domain.Session, spec ddl.WarehouseSpec) (*ActionResult, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	stmt, err := s.stmts.CreateWarehouse(spec)
	if err != nil {
		return nil, validation(err)
	}
	res := s.execute(ctx, session, domain.EventCreateWarehouse, spec.Name,
		fmt.Sprintf("Warehouse '%s' created successfully", spec.Name), stmt)
	return &res, nil
}
