package ui

import (
	"strconv"
	"strings"

	"prism-console/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type roleHierarchyPageData struct {
	Principal   domain.ContextPrincipal
	CSRF        Node
	Nodes       []domain.RoleHierarchyNode
	Unsupported string
	Events      []domain.RoleHierarchyEvent
	NextToken   string
}

func roleHierarchyPage(d roleHierarchyPageData) Node {
	return appPage("Role Hierarchy", "roles", d.Principal, d.CSRF,
		roleGraphCard(d.Nodes, d.Unsupported),
		Div(Class(cardClass()), H2(Text("Provisioned roles"))),
		roleEventsTable(d.Events),
		paginationCard("/ui/roles/hierarchy", "", d.NextToken, len(d.Events)),
	)
}

func roleGraphCard(nodes []domain.RoleHierarchyNode, unsupported string) Node {
	if unsupported != "" {
		return emptyStateCard(unsupported)
	}
	if len(nodes) == 0 {
		return emptyStateCard("No role-to-role grants are visible to this session.")
	}
	rows := make([]Node, 0, len(nodes))
	for i := range nodes {
		n := nodes[i]
		granted := strings.Join(n.GrantedRoles, ", ")
		rows = append(rows, Tr(
			data.Show(containsExpr(n.Role+" "+granted)),
			Td(Strong(Text(n.Role))),
			Td(Text(strconv.Itoa(len(n.GrantedRoles)))),
			Td(Text(orDash(granted))),
		))
	}
	return Group([]Node{
		quickFilterCard("Filter by role name"),
		Div(
			Class(cardClass("table-wrap")),
			Table(
				Class("data-table"),
				THead(Tr(Th(Text("Role")), Th(Text("Granted roles")), Th(Text("Inherits from")))),
				TBody(Group(rows)),
			),
		),
	})
}

func roleEventsTable(events []domain.RoleHierarchyEvent) Node {
	if len(events) == 0 {
		return emptyStateCard("No roles have been provisioned yet.")
	}
	rows := make([]Node, 0, len(events))
	for i := range events {
		e := events[i]
		rows = append(rows, Tr(
			Td(Text(strconv.FormatInt(e.LogID, 10))),
			Td(Text(formatTime(e.EventTime))),
			Td(Text(e.InvokedBy)),
			Td(Text(orDash(e.EnvironmentName))),
			Td(Text(e.CreatedRoleName)),
			Td(Text(string(e.CreatedRoleType))),
			Td(Text(orDash(e.MappedDatabaseRole))),
			Td(Text(orDash(e.ParentAccountRole))),
			Td(Text(int64Ptr(e.AuditEventID))),
			Td(statusLabel(e.Status)),
			Td(Text(orDash(e.Message))),
		))
	}
	return Div(
		Class(cardClass("table-wrap")),
		Table(
			Class("data-table"),
			THead(Tr(
				Th(Text("ID")), Th(Text("Time (UTC)")), Th(Text("By")), Th(Text("Environment")), Th(Text("Role")),
				Th(Text("Type")), Th(Text("Database role")), Th(Text("Parent")), Th(Text("Audit event")),
				Th(Text("Status")), Th(Text("Message")),
			)),
			TBody(Group(rows)),
		),
	)
}
