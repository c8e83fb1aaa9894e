package handler

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/tiptravel/tip-web/internal/middleware"
	"github.com/tiptravel/tip-web/internal/session"
)

// pageTitles maps each page route to its document title.
var pageTitles = map[string]string{
	"/":                "Home",
	"/insights":        "Insights",
	"/search":          "Search",
	"/hotel/:id":       "Hotel",
	"/dream-hotels":    "Dream Hotels",
	"/more-dreams":     "More Dreams",
	"/register":        "Create Account",
	"/forgot-password": "Forgot Password",
	"/sign-in":         "Sign In",
	"/concierge":       "Concierge",
	"/dashboard":       "Dashboard",
	"/dashboard/*":     "Dashboard",
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}} | {{.App}}</title>
</head>
<body data-route="{{.Route}}"{{if .Redirect}} data-redirect="{{.Redirect}}"{{end}}>
<header>
<a href="/">{{.App}}</a>
{{if .User}}<a href="/dashboard">{{.User}}</a>{{else}}<a href="/sign-in">Sign in</a>{{end}}
</header>
<main id="app"></main>
</body>
</html>
`))

type pageData struct {
	App      string
	Title    string
	Route    string
	User     string
	Redirect string
}

// PageHandler renders the HTML shell for page routes. The session gate has
// already applied the access rules by the time a page is rendered.
type PageHandler struct {
	app string
}

func NewPageHandler(app string) *PageHandler {
	return &PageHandler{app: app}
}

// Register sets up page routes.
func (h *PageHandler) Register(router fiber.Router) {
	for route, title := range pageTitles {
		router.Get(route, h.render(route, title))
	}
}

func (h *PageHandler) render(route, title string) fiber.Handler {
	return func(c fiber.Ctx) error {
		data := pageData{
			App:   h.app,
			Title: title,
			Route: route,
		}
		if sess := middleware.GetSession(c); sess != nil {
			data.User = sess.User.DisplayName()
		}
		if route == session.SignInPath {
			data.Redirect = safeRedirect(c.Query("redirect"))
		}

		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, data); err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	}
}

// safeRedirect keeps only same-site paths.
func safeRedirect(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return ""
	}
	return p
}
