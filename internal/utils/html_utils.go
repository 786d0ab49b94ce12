package utils

import (
	"html/template"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceCommentHTML marks links as external and unwraps the single
// paragraph goldmark emits so a comment renders inline.
func EnhanceCommentHTML(htmlStr string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(template.HTMLEscapeString(htmlStr))
	}

	doc.Find("a").Each(func(i int, s *goquery.Selection) {
		s.AddClass("comment-link")
		if href, ok := s.Attr("href"); ok && strings.HasPrefix(href, "http") {
			s.SetAttr("target", "_blank")
		}
	})

	body := doc.Find("body")
	if paras := body.Children(); paras.Length() == 1 && goquery.NodeName(paras) == "p" {
		inner, _ := paras.Html()
		return template.HTML(strings.TrimSpace(inner))
	}

	html, _ := body.Html()
	if html == "" {
		html, _ = doc.Html()
	}

	return template.HTML(strings.TrimSpace(html))
}
