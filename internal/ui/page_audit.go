package ui

import (
	"strconv"
	"strings"

	"prism-console/internal/domain"
	"prism-console/internal/service/governance"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

const plotlyScript = "https://cdn.plot.ly/plotly-2.35.2.min.js"

// chartOrder is the display order of the summary figures.
var chartOrder = []string{"event_types", "statuses", "timeline", "users", "roles"}

type auditPageData struct {
	Principal domain.ContextPrincipal
	CSRF      Node
	Query     auditQuery
	Events    []domain.AuditEvent
	NextToken string
	Summary   governance.AuditSummary
	Figures   string // JSON object of Plotly figures keyed by chart name
	Truncated bool
}

func auditPage(d auditPageData) Node {
	return appPage("Audit Log", "audit", d.Principal, d.CSRF,
		auditFilterCard(d.Query),
		auditStatsCard(d.Summary, d.Truncated),
		auditChartsCard(d.Summary.Total, d.Figures),
		quickFilterCard("Filter by user, object, command or message"),
		auditTable(d.Events),
		paginationCard("/ui/audit", d.Query.encode(), d.NextToken, len(d.Events)),
	)
}

func auditFilterCard(q auditQuery) Node {
	selected := map[string]bool{}
	for _, t := range q.EventTypes {
		selected[t] = true
	}
	typeOptions := make([]Node, 0, len(eventTypeOptions))
	for _, t := range eventTypeOptions {
		typeOptions = append(typeOptions, Option(Value(t), If(selected[t], Selected()), Text(t)))
	}
	statusOptions := []Node{Option(Value(""), Text("All statuses"))}
	for _, s := range []domain.EventStatus{domain.StatusSuccess, domain.StatusFailed} {
		statusOptions = append(statusOptions, Option(Value(string(s)), If(q.Status == string(s), Selected()), Text(string(s))))
	}

	return Div(
		Class(cardClass("toolbar")),
		Form(
			Method("get"),
			Action("/ui/audit"),
			Class("d-flex flex-wrap flex-items-end gap-2"),
			Div(Label(For("from"), Text("Start date")), Input(ID("from"), Type("date"), Name("from"), Class("form-control"), Value(q.From))),
			Div(Label(For("to"), Text("End date")), Input(ID("to"), Type("date"), Name("to"), Class("form-control"), Value(q.To))),
			Div(Label(For("event_type"), Text("Event types")), Select(ID("event_type"), Name("event_type"), Multiple(), Class("form-select"), Group(typeOptions))),
			Div(Label(For("status"), Text("Status")), Select(ID("status"), Name("status"), Class("form-select"), Group(statusOptions))),
			Button(Type("submit"), Class(primaryButtonClass()), Text("Apply")),
			A(Href("/ui/audit/export.csv?"+q.encode()), Class("btn"), Text("Download CSV")),
		),
	)
}

func auditStatsCard(sum governance.AuditSummary, truncated bool) Node {
	failed := 0
	for _, c := range sum.ByStatus {
		if c.Label == string(domain.StatusFailed) {
			failed = c.Count
		}
	}
	stat := func(label string, value int) Node {
		return Div(Class("stat"), Span(Class(mutedClass()), Text(label)), Strong(Text(strconv.Itoa(value))))
	}
	nodes := []Node{
		Div(
			Class("d-flex flex-wrap gap-3"),
			stat("Events", sum.Total),
			stat("Failed", failed),
			stat("Users", len(sum.ByUser)),
			stat("Roles", len(sum.ByRole)),
		),
	}
	if truncated {
		nodes = append(nodes, P(Class(mutedClass()), Text("Charts show the most recent "+strconv.Itoa(maxChartEvents)+" matching events.")))
	}
	return Div(Class(cardClass()), Group(nodes))
}

func auditChartsCard(total int, figures string) Node {
	if total == 0 {
		return emptyStateCard("No audit events match these filters.")
	}
	charts := make([]Node, 0, len(chartOrder))
	for _, name := range chartOrder {
		charts = append(charts, Div(Class("chart"), Attr("data-figure", name)))
	}
	return Div(
		Class(cardClass()),
		Div(Class("chart-grid"), Group(charts)),
		Script(Type("application/json"), ID("audit-figures"), Raw(escapeScriptJSON(figures))),
		Script(Src(plotlyScript)),
		Script(Src(uiScriptHref("charts.js"))),
	)
}

func auditTable(events []domain.AuditEvent) Node {
	if len(events) == 0 {
		return emptyStateCard("No audit events on this page.")
	}
	rows := make([]Node, 0, len(events))
	for i := range events {
		e := events[i]
		filter := strings.Join([]string{e.InvokedBy, e.InvokedByRole, e.EventType, e.ObjectName, e.SQLCommand, e.Message}, " ")
		rows = append(rows, Tr(
			data.Show(containsExpr(filter)),
			Td(Text(strconv.FormatInt(e.EventID, 10))),
			Td(Text(formatTime(e.EventTime))),
			Td(Text(e.InvokedBy)),
			Td(Text(e.InvokedByRole)),
			Td(Text(e.EventType)),
			Td(Text(orDash(e.ObjectName))),
			Td(Code(Text(e.SQLCommand))),
			Td(statusLabel(e.Status)),
			Td(Text(orDash(e.Message))),
		))
	}
	return Div(
		Class(cardClass("table-wrap")),
		Table(
			Class("data-table"),
			THead(Tr(
				Th(Text("ID")), Th(Text("Time (UTC)")), Th(Text("User")), Th(Text("Role")), Th(Text("Event")),
				Th(Text("Object")), Th(Text("Command")), Th(Text("Status")), Th(Text("Message")),
			)),
			TBody(Group(rows)),
		),
	)
}

// escapeScriptJSON keeps JSON from closing the surrounding script element.
func escapeScriptJSON(s string) string {
	return strings.ReplaceAll(s, "</", `<\/`)
}
