package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"pokedex/internal/services"
	"pokedex/internal/store"
	"pokedex/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedSize is the number of comments in the RSS feed.
const FeedSize = 20

type SEOHandler struct {
	siteURL  string
	pokemon  *store.PokemonStore
	comments *store.CommentStore
	logger   *zap.Logger
}

func NewSEOHandler(siteURL string, pokemon *store.PokemonStore, comments *store.CommentStore, logger *zap.Logger) *SEOHandler {
	return &SEOHandler{
		siteURL:  strings.TrimSuffix(siteURL, "/"),
		pokemon:  pokemon,
		comments: comments,
		logger:   logger,
	}
}

// RobotsTxt keeps crawlers off account pages.
func (h *SEOHandler) RobotsTxt(c *gin.Context) {
	content := fmt.Sprintf(`User-agent: *
Allow: /

Disallow: /users/
Disallow: /comments/
Disallow: /login
Disallow: /signup
Disallow: /logout
Disallow: /pokemon/*/add-comment

Sitemap: %s/sitemap.xml
`, h.siteURL)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.String(http.StatusOK, content)
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// SitemapXML lists the landing pages, every regional dex and every
// Pokémon detail page.
func (h *SEOHandler) SitemapXML(c *gin.Context) {
	refs, err := h.pokemon.All(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	now := time.Now().Format("2006-01-02")
	set := urlSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}
	add := func(path, freq, priority string) {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        h.siteURL + path,
			LastMod:    now,
			ChangeFreq: freq,
			Priority:   priority,
		})
	}

	add("/", "weekly", "1.0")
	add("/about", "monthly", "0.5")
	add("/pokedex-generations", "weekly", "0.9")
	for _, g := range services.Generations {
		add("/pokedex-generations/"+g.Pokedex, "monthly", "0.8")
	}
	for _, ref := range refs {
		add(detailPath(ref.Name), "daily", "0.7")
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.String(http.StatusOK, xml.Header+mustMarshalXML(set))
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	Category    string `xml:"category,omitempty"`
	PubDate     string `xml:"pubDate"`
	GUID        rssGUID
}

type rssGUID struct {
	XMLName     xml.Name `xml:"guid"`
	IsPermaLink bool     `xml:"isPermaLink,attr"`
	Value       string   `xml:",chardata"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	Items         []rssItem `xml:"item"`
}

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

// RSSFeed publishes the newest community comments as RSS 2.0.
func (h *SEOHandler) RSSFeed(c *gin.Context) {
	comments, err := h.comments.ListRecent(c.Request.Context(), FeedSize)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	feed := rssFeed{
		Version: "2.0",
		Channel: rssChannel{
			Title:         "Pokédex Community",
			Link:          h.siteURL + "/",
			Description:   "The latest comments from the Pokédex community",
			Language:      "en",
			LastBuildDate: time.Now().Format(time.RFC1123Z),
		},
	}
	for _, cm := range comments {
		link := h.siteURL + detailPath(cm.Pokemon.Name)
		feed.Channel.Items = append(feed.Channel.Items, rssItem{
			Title:       cm.User.Username + " on " + cm.Pokemon.Name,
			Link:        link,
			Description: string(utils.RenderComment(cm.Text)),
			Author:      cm.User.Username,
			Category:    cm.Pokemon.Name,
			PubDate:     cm.Timestamp.Format(time.RFC1123Z),
			GUID:        rssGUID{Value: fmt.Sprintf("%s#comment-%d", link, cm.ID)},
		})
	}

	c.Header("Content-Type", "application/rss+xml; charset=utf-8")
	c.String(http.StatusOK, xml.Header+mustMarshalXML(feed))
}

// The document types above hold only strings and bools, so encoding cannot fail.
func mustMarshalXML(v interface{}) string {
	out, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	return string(out)
}
