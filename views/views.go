// Package views maps a menu selection and the caller's identity to the page
// that should be rendered.
package views

import "nationportal/models"

// Page identifies a renderable page. The value doubles as its template name.
type Page string

const (
	PageOverview     Page = "overview"
	PageHistory      Page = "history"
	PageMilitary     Page = "military"
	PageEconomy      Page = "economy"
	PageCulture      Page = "culture"
	PageGeography    Page = "geography"
	PageGovernment   Page = "government"
	PageForum        Page = "forum"
	PageAdmin        Page = "admin"
	PageProfile      Page = "profile"
	PageAccessDenied Page = "denied"
	PageNotFound     Page = "notfound"
)

// MenuItem is one navigation entry.
type MenuItem struct {
	Key   string
	Label string
}

var publicMenu = []MenuItem{
	{Key: string(PageOverview), Label: "국가 개요"},
	{Key: string(PageHistory), Label: "역사 기록실"},
	{Key: string(PageMilitary), Label: "국방부 포털"},
	{Key: string(PageEconomy), Label: "경제 지표"},
	{Key: string(PageCulture), Label: "문화"},
	{Key: string(PageGeography), Label: "국토와 자연"},
	{Key: string(PageGovernment), Label: "정부 조직"},
	{Key: string(PageForum), Label: "자유 광장"},
}

var (
	adminItem   = MenuItem{Key: string(PageAdmin), Label: "대통령 집무실"}
	profileItem = MenuItem{Key: string(PageProfile), Label: "마이 페이지"}
)

// Resolve picks the page for menu. An empty menu is the overview; gated pages
// resolve only for the role that owns them.
func Resolve(menu string, id models.Identity) Page {
	switch Page(menu) {
	case "":
		return PageOverview
	case PageOverview, PageHistory, PageMilitary, PageEconomy,
		PageCulture, PageGeography, PageGovernment, PageForum:
		return Page(menu)
	case PageAdmin:
		if id.IsAdmin() {
			return PageAdmin
		}
		return PageAccessDenied
	case PageProfile:
		if id.Role() == models.RoleCitizen {
			return PageProfile
		}
		return PageAccessDenied
	}
	return PageNotFound
}

// Menu lists the entries visible to id, in display order.
func Menu(id models.Identity) []MenuItem {
	items := append([]MenuItem{}, publicMenu...)
	switch id.Role() {
	case models.RoleAdmin:
		items = append(items, adminItem)
	case models.RoleCitizen:
		items = append(items, profileItem)
	}
	return items
}

// Label returns the menu label of a page, or "" for pages without one.
func Label(p Page) string {
	for _, item := range append(Menu(models.Admin()), profileItem) {
		if item.Key == string(p) {
			return item.Label
		}
	}
	return ""
}
