// Package metadata browses warehouse objects and the account role hierarchy
// through the operator's session.
package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/allegro/bigcache/v3"

	"prism-console/internal/ddl"
	"prism-console/internal/domain"
	"prism-console/internal/warehouse"
)

// Cached list kinds.
const (
	kindDatabases = "databases"
	kindRoles     = "roles"
)

// DefaultCacheTTL is how long database and role lists are reused.
const DefaultCacheTTL = 30 * time.Second

// Object types accepted by DescribeObject.
var objectTypes = map[string]string{
	"TABLE":      "TABLE",
	"BASE TABLE": "TABLE",
	"VIEW":       "VIEW",
}

// NewCache creates the list cache. Entries expire after ttl.
func NewCache(ctx context.Context, ttl time.Duration) (*bigcache.BigCache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.CleanWindow = ttl
	cfg.Verbose = false
	return bigcache.New(ctx, cfg)
}

// Service reads warehouse metadata. Database and role lists are cached per
// operator and role because visibility depends on the session's privileges.
type Service struct {
	dialect warehouse.Dialect
	cache   *bigcache.BigCache
	logger  *slog.Logger
}

// NewService creates a new metadata Service. cache may be nil.
func NewService(dialect warehouse.Dialect, cache *bigcache.BigCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{dialect: dialect, cache: cache, logger: logger.With("component", "metadata")}
}

// ListDatabases returns the databases visible to the session.
func (s *Service) ListDatabases(ctx context.Context, session domain.Session) ([]domain.WarehouseDatabase, error) {
	var out []domain.WarehouseDatabase
	err := s.cached(ctx, kindDatabases, &out, func() error {
		rows, err := query(ctx, session, s.dialect.ListDatabasesSQL())
		if err != nil {
			return fmt.Errorf("list databases: %w", err)
		}
		out = make([]domain.WarehouseDatabase, 0, len(rows))
		for _, r := range rows {
			out = append(out, domain.WarehouseDatabase{
				Name: r.String("NAME"), Owner: r.String("OWNER"), Comment: r.String("COMMENT"),
			})
		}
		return nil
	})
	return out, err
}

// ListSchemas returns the schemas of database.
func (s *Service) ListSchemas(ctx context.Context, session domain.Session, database string) ([]domain.WarehouseSchema, error) {
	if err := identifiers(database); err != nil {
		return nil, err
	}
	stmt, args := s.dialect.ListSchemasSQL(database)
	rows, err := query(ctx, session, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list schemas in %s: %w", database, err)
	}
	out := make([]domain.WarehouseSchema, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.WarehouseSchema{
			Name: r.String("NAME"), Owner: r.String("OWNER"), Comment: r.String("COMMENT"),
		})
	}
	return out, nil
}

// ListObjects returns the tables and views of database.schema.
func (s *Service) ListObjects(ctx context.Context, session domain.Session, database, schema string) ([]domain.WarehouseObject, error) {
	if err := identifiers(database, schema); err != nil {
		return nil, err
	}
	stmt, args := s.dialect.ListObjectsSQL(database, schema)
	rows, err := query(ctx, session, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list objects in %s.%s: %w", database, schema, err)
	}
	out := make([]domain.WarehouseObject, 0, len(rows))
	for _, r := range rows {
		obj := domain.WarehouseObject{Name: r.String("NAME"), Type: r.String("TYPE"), Comment: r.String("COMMENT")}
		if n, ok := r.Int64("ROW_COUNT"); ok {
			obj.RowCount = &n
		}
		out = append(out, obj)
	}
	return out, nil
}

// DescribeObject returns the columns of a table or view and, where the
// warehouse supports it, the grants held on it.
func (s *Service) DescribeObject(ctx context.Context, session domain.Session, database, schema, object, objectType string) (*domain.ObjectDetail, error) {
	if err := identifiers(database, schema, object); err != nil {
		return nil, err
	}
	if objectType == "" {
		objectType = "TABLE"
	}
	kind, ok := objectTypes[strings.ToUpper(objectType)]
	if !ok {
		return nil, domain.ErrValidation("invalid object type %q: must be TABLE or VIEW", objectType)
	}

	stmt, args := s.dialect.DescribeColumnsSQL(database, schema, object)
	rows, err := query(ctx, session, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("describe %s.%s.%s: %w", database, schema, object, err)
	}
	if len(rows) == 0 {
		return nil, domain.ErrNotFound("object %s.%s.%s not found", database, schema, object)
	}
	detail := &domain.ObjectDetail{
		Database: database, Schema: schema, Name: object, Type: kind,
		Columns: make([]domain.ObjectColumn, 0, len(rows)),
	}
	for _, r := range rows {
		detail.Columns = append(detail.Columns, domain.ObjectColumn{
			Name:     r.String("COLUMN_NAME"),
			DataType: r.String("DATA_TYPE"),
			Nullable: strings.EqualFold(r.String("IS_NULLABLE"), "YES"),
			Default:  r.String("COLUMN_DEFAULT"),
			Comment:  r.String("COMMENT"),
		})
	}

	grantsSQL, ok := s.dialect.ObjectGrantsSQL(kind, database, schema, object)
	if !ok {
		return detail, nil
	}
	grants, err := query(ctx, session, grantsSQL)
	if err != nil {
		return nil, fmt.Errorf("show grants on %s.%s.%s: %w", database, schema, object, err)
	}
	detail.Grants = make([]domain.ObjectGrant, 0, len(grants))
	for _, r := range grants {
		detail.Grants = append(detail.Grants, domain.ObjectGrant{
			Privilege:   r.String("PRIVILEGE"),
			GrantedTo:   r.String("GRANTED_TO"),
			GranteeName: r.String("GRANTEE_NAME"),
			GrantOption: strings.EqualFold(r.String("GRANT_OPTION"), "true"),
			GrantedBy:   r.String("GRANTED_BY"),
		})
	}
	return detail, nil
}

// ListRoles returns the account roles.
func (s *Service) ListRoles(ctx context.Context, session domain.Session) ([]domain.AccountRole, error) {
	stmt, ok := s.dialect.ListRolesSQL()
	if !ok {
		return nil, domain.ErrValidation("account roles are not supported by the %s warehouse", s.dialect.Name())
	}
	var out []domain.AccountRole
	err := s.cached(ctx, kindRoles, &out, func() error {
		rows, err := query(ctx, session, stmt)
		if err != nil {
			return fmt.Errorf("list roles: %w", err)
		}
		out = make([]domain.AccountRole, 0, len(rows))
		for _, r := range rows {
			users, _ := r.Int64("ASSIGNED_TO_USERS")
			toRoles, _ := r.Int64("GRANTED_TO_ROLES")
			granted, _ := r.Int64("GRANTED_ROLES")
			out = append(out, domain.AccountRole{
				Name: r.String("NAME"), Owner: r.String("OWNER"), Comment: r.String("COMMENT"),
				AssignedToUsers: users, GrantedToRoles: toRoles, GrantedRoles: granted,
			})
		}
		return nil
	})
	return out, err
}

// RoleHierarchy groups the role-to-role grants by grantee role. Roles and
// their granted roles are sorted by name.
func (s *Service) RoleHierarchy(ctx context.Context, session domain.Session) ([]domain.RoleHierarchyNode, error) {
	stmt, ok := s.dialect.RoleGrantsSQL()
	if !ok {
		return nil, domain.ErrValidation("role hierarchy is not supported by the %s warehouse", s.dialect.Name())
	}
	rows, err := query(ctx, session, stmt)
	if err != nil {
		return nil, fmt.Errorf("role hierarchy: %w", err)
	}
	return groupRoleGrants(rows), nil
}

func groupRoleGrants(rows []domain.Row) []domain.RoleHierarchyNode {
	byRole := map[string][]string{}
	for _, r := range rows {
		role := r.String("ROLE_NAME")
		if role == "" {
			continue
		}
		if granted := r.String("GRANTED_ROLE"); granted != "" {
			byRole[role] = append(byRole[role], granted)
		} else if _, ok := byRole[role]; !ok {
			byRole[role] = []string{}
		}
	}
	out := make([]domain.RoleHierarchyNode, 0, len(byRole))
	for role, granted := range byRole {
		sort.Strings(granted)
		out = append(out, domain.RoleHierarchyNode{Role: role, GrantedRoles: granted})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return out
}

// cached loads dst from the cache under kind, or runs load and stores dst.
// Cache failures fall through to load.
func (s *Service) cached(ctx context.Context, kind string, dst any, load func() error) error {
	if s.cache == nil {
		return load()
	}
	key := cacheKey(ctx, s.dialect.Name(), kind)
	if entry, err := s.cache.Get(key); err == nil {
		if err := json.Unmarshal(entry, dst); err == nil {
			return nil
		}
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		s.logger.Debug("metadata cache read failed", "key", key, "error", err)
	}

	if err := load(); err != nil {
		return err
	}
	if body, err := json.Marshal(dst); err == nil {
		if err := s.cache.Set(key, body); err != nil {
			s.logger.Debug("metadata cache write failed", "key", key, "error", err)
		}
	}
	return nil
}

// InvalidateDatabases drops every cached database list.
func (s *Service) InvalidateDatabases() { s.invalidate(kindDatabases) }

// InvalidateRoles drops every cached role list.
func (s *Service) InvalidateRoles() { s.invalidate(kindRoles) }

// invalidate deletes the entries of kind for all principals.
func (s *Service) invalidate(kind string) {
	if s.cache == nil {
		return
	}
	suffix := "|" + kind
	var keys []string
	it := s.cache.Iterator()
	for it.SetNext() {
		entry, err := it.Value()
		if err != nil {
			continue
		}
		if strings.HasSuffix(entry.Key(), suffix) {
			keys = append(keys, entry.Key())
		}
	}
	for _, key := range keys {
		if err := s.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
			s.logger.Debug("metadata cache delete failed", "key", key, "error", err)
		}
	}
}

func cacheKey(ctx context.Context, driver, kind string) string {
	p, _ := domain.PrincipalFromContext(ctx)
	return strings.Join([]string{driver, p.Name, p.Role, kind}, "|")
}

func query(ctx context.Context, session domain.Session, stmt string, args ...any) ([]domain.Row, error) {
	if session == nil {
		return nil, domain.ErrSessionUnavailable
	}
	return session.Query(ctx, stmt, args...)
}

func identifiers(names ...string) error {
	for _, n := range names {
		if err := ddl.ValidateIdentifier(n); err != nil {
			return domain.ErrValidation("invalid name %q: %s", n, err.Error())
		}
	}
	return nil
}
