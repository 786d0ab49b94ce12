package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"pokedex/internal/models"
	"pokedex/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

// pages maps the name handlers render to its view file.
var pages = map[string]string{
	"home.html":                "views/home.html",
	"about.html":               "views/about.html",
	"error.html":               "views/error.html",
	"auth/signup.html":         "views/auth/signup.html",
	"auth/login.html":          "views/auth/login.html",
	"users/profile.html":       "views/users/profile.html",
	"users/edit.html":          "views/users/edit.html",
	"comments/add.html":        "views/comments/add.html",
	"comments/edit.html":       "views/comments/edit.html",
	"pokemon/generations.html": "views/pokemon/generations.html",
	"pokemon/pokedex.html":     "views/pokemon/pokedex.html",
	"pokemon/detail.html":      "views/pokemon/detail.html",
}

// LoadTemplates parses every page together with the base layout and the
// shared includes.
func LoadTemplates(fsys fs.FS) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	for name, view := range pages {
		tmpl, err := template.New("base.html").
			Funcs(funcMap).
			ParseFS(fsys, "layouts/base.html", "includes/*.html", view)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.Add(name, tmpl)
	}
	return r, nil
}

var funcMap = template.FuncMap{
	"dict": func(values ...interface{}) (map[string]interface{}, error) {
		if len(values)%2 != 0 {
			return nil, fmt.Errorf("invalid dict call")
		}
		dict := make(map[string]interface{}, len(values)/2)
		for i := 0; i < len(values); i += 2 {
			key, ok := values[i].(string)
			if !ok {
				return nil, fmt.Errorf("dict keys must be strings")
			}
			dict[key] = values[i+1]
		}
		return dict, nil
	},
	"timeAgo":       timeAgo,
	"formatTime":    func(t time.Time) string { return t.Format("2006-01-02 15:04 MST") },
	"formatDate":    func(t time.Time) string { return t.Format("January 2, 2006") },
	"renderComment": utils.RenderComment,
	"daysSince":     utils.DaysSinceJoined,
	"join":          strings.Join,
	"errorsFor": func(errs interface{}, field string) []string {
		if m, ok := errs.(map[string][]string); ok {
			return m[field]
		}
		return nil
	},
	"owns": func(user interface{}, ownerID uint) bool {
		u, ok := user.(*models.User)
		return ok && u != nil && u.ID == ownerID
	},
}

func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())

	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
