package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"prism-console/internal/domain"

	. "maragu.dev/gomponents"
	data "maragu.dev/gomponents-datastar"
	. "maragu.dev/gomponents/html"
)

type navItem struct {
	Label string
	Href  string
	Key   string
	Icon  string
}

var navItems = []navItem{
	{Label: "Overview", Href: "/ui", Key: "home", Icon: "house"},
	{Label: "Audit Log", Href: "/ui/audit", Key: "audit", Icon: "scroll-text"},
	{Label: "Role Hierarchy", Href: "/ui/roles/hierarchy", Key: "roles", Icon: "network"},
}

// pageHead holds the document head shared by every page. extra is appended
// after the stylesheet.
func pageHead(title string, extra ...Node) Node {
	return Head(
		Meta(Charset("utf-8")),
		Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
		TitleEl(Text(title+" | PRISM")),
		Link(Rel("icon"), Href("data:,")),
		Link(Rel("preconnect"), Href("https://fonts.googleapis.com")),
		Link(Rel("preconnect"), Href("https://fonts.gstatic.com"), Attr("crossorigin", "")),
		Link(Rel("stylesheet"), Href("https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap")),
		Link(Rel("stylesheet"), Href("https://cdn.jsdelivr.net/npm/@primer/css@22.1.0/dist/primer.min.css")),
		Link(Rel("stylesheet"), Href(uiStylesheetHref())),
		Script(Raw(themeInitScript)),
		Script(Src("https://unpkg.com/lucide@latest/dist/umd/lucide.min.js")),
		Group(extra),
	)
}

func appPage(title, active string, principal domain.ContextPrincipal, csrf Node, body ...Node) Node {
	nav := make([]Node, 0, len(navItems))
	for _, item := range navItems {
		className := "app-nav-link Link--secondary d-flex flex-items-center"
		if item.Key == active {
			className += " active"
		}
		nav = append(nav, A(
			Href(item.Href),
			Class(className),
			I(Class("nav-icon"), Attr("data-lucide", item.Icon), Attr("aria-hidden", "true")),
			Span(Text(item.Label)),
		))
	}

	return HTML(
		Lang("en"),
		Attr("data-color-mode", "auto"),
		Attr("data-light-theme", "light"),
		Attr("data-dark-theme", "dark"),
		pageHead(title,
			Script(
				Type("module"),
				Src("https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.7/bundles/datastar.js"),
			),
		),
		Body(
			Main(Class("app-shell"),
				Div(ID("app-overlay"), Class("app-overlay"), Attr("aria-hidden", "true")),
				Aside(
					ID("app-sidebar"),
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text("PRISM")),
						P(Class("color-fg-muted text-small mb-0"), Text("Warehouse administration console")),
					),
					Nav(Class("app-nav"), Group(nav)),
					Button(ID("sidebar-toggle"), Type("button"), Class("btn btn-sm btn-invisible"), Text("Collapse")),
				),
				Section(
					Class("app-main"),
					Div(
						Class("topbar"),
						Div(
							Button(ID("nav-toggle"), Type("button"), Class("btn btn-sm nav-toggle"), Attr("aria-expanded", "false"), Text("Menu")),
							H1(Class("page-title"), Text(title)),
						),
						Div(
							Class("d-flex flex-items-center gap-2"),
							Button(
								ID("theme-toggle"), Type("button"), Class("btn btn-sm btn-icon"),
								I(ID("theme-icon-sun"), Attr("data-lucide", "sun"), Attr("aria-hidden", "true")),
								I(ID("theme-icon-moon"), Class("is-hidden"), Attr("data-lucide", "moon"), Attr("aria-hidden", "true")),
							),
							P(Class("color-fg-muted text-small mb-0"), Text("Signed in as "+principalLabel(principal))),
							Form(
								Method("post"),
								Action("/ui/logout"),
								csrf,
								Button(Type("submit"), Class("btn btn-sm"), Text("Sign out")),
							),
						),
					),
					Div(Class("content"), Group(body)),
				),
			),
			Script(Raw(themeBehaviorScript)),
			Script(Raw(shellBehaviorScript)),
			Script(Raw("if (window.lucide) { window.lucide.createIcons(); }")),
		),
	)
}

func errorPage(title, message string) Node {
	return HTML(
		Lang("en"),
		Attr("data-color-mode", "auto"),
		Attr("data-light-theme", "light"),
		Attr("data-dark-theme", "dark"),
		pageHead(title),
		Body(
			Main(
				Class("layout"),
				H1(Class("page-title"), Text(title)),
				P(Text(message)),
				P(A(Href("/ui"), Text("Back to overview"))),
			),
			Script(Raw("if (window.lucide) { window.lucide.createIcons(); }")),
		),
	)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.UTC().Format("2006-01-02 15:04:05")
}

func int64Ptr(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func containsExpr(value string) string {
	lower := strings.ToLower(value)
	return "$q === '' || " + strconv.Quote(lower) + ".includes($q.toLowerCase())"
}

// paginationCard links to the next page when the listing returned a token.
// query carries the active filters.
func paginationCard(basePath, query, nextToken string, shown int) Node {
	if nextToken == "" {
		return Div(Class(cardClass()), P(Class(mutedClass()), Text(fmt.Sprintf("Showing %d entries.", shown))))
	}
	url := basePath + "?page_token=" + nextToken
	if query != "" {
		url += "&" + query
	}
	return Div(
		Class(cardClass()),
		P(Class(mutedClass()), Text(fmt.Sprintf("Showing %d entries.", shown))),
		A(Href(url), Text("Next page ->")),
	)
}

func cardClass(extra ...string) string {
	parts := []string{"Box", "p-3", "mb-3", "card"}
	parts = append(parts, extra...)
	return strings.Join(parts, " ")
}

func mutedClass() string {
	return "color-fg-muted text-small"
}

func primaryButtonClass() string {
	return "btn btn-primary"
}

func quickFilterCard(placeholder string, extraControls ...Node) Node {
	controls := []Node{
		Div(
			Class("d-flex flex-items-center gap-2 flex-1"),
			Label(Class("sr-only"), Text("Quick filter")),
			Input(Type("search"), Class("form-control"), Placeholder(placeholder), data.Bind("q"), AutoComplete("off")),
		),
	}
	controls = append(controls, extraControls...)
	return Div(
		Class(cardClass("toolbar")),
		data.Signals(map[string]any{"q": ""}),
		Div(Class("d-flex flex-wrap flex-items-center gap-2"), Group(controls)),
	)
}

func emptyStateCard(message string) Node {
	return Div(
		Class(cardClass("blankslate")),
		P(Class("color-fg-muted mb-2"), Text(message)),
	)
}

func statusLabel(status domain.EventStatus) Node {
	tone := "success"
	if status == domain.StatusFailed {
		tone = "danger"
	}
	return Span(Class("Label Label--"+tone), Text(string(status)))
}
