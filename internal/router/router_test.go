package router

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"pokedex/internal/config"
	"pokedex/internal/db"
	"pokedex/internal/forms"
	"pokedex/internal/models"
	"pokedex/internal/services"
	"pokedex/internal/store"
	"pokedex/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const charmanderJSON = `{
  "id": 4,
  "name": "charmander",
  "base_experience": 62,
  "types": [{"slot": 1, "type": {"name": "fire"}}],
  "stats": [{"base_stat": 39, "stat": {"name": "hp"}}],
  "moves": [{"move": {"name": "scratch"}}, {"move": {"name": "ember"}}],
  "abilities": [{"ability": {"name": "blaze"}, "is_hidden": false}],
  "sprites": {"front_default": "https://img/4.png", "front_shiny": "https://img/shiny/4.png"}
}`

const kantoJSON = `{
  "name": "kanto",
  "names": [{"name": "Kanto Pokédex", "language": {"name": "en"}}],
  "pokemon_entries": [{"entry_number": 4, "pokemon_species": {"name": "charmander"}}]
}`

type testApp struct {
	server *httptest.Server
	db     *gorm.DB
}

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestApp serves the full route table against sqlite and a fake PokeAPI
// that only knows charmander and the kanto dex.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	api := http.NewServeMux()
	api.HandleFunc("/pokemon/charmander/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(charmanderJSON))
	})
	api.HandleFunc("/pokedex/kanto", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(kantoJSON))
	})
	apiServer := httptest.NewServer(api)
	t.Cleanup(apiServer.Close)

	cfg := &config.Config{
		DatabaseDriver: config.DriverSQLite,
		DatabaseURL:    filepath.Join(t.TempDir(), "app.db"),
	}
	gdb, err := db.Open(cfg, zap.NewNop())
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)

	pokemon := store.NewPokemonStore(gdb)
	_, err = pokemon.InsertMany(context.Background(), []models.PokemonReference{
		{ID: 4, Name: "charmander"},
		{ID: 25, Name: "pikachu"},
	})
	require.NoError(t, err)

	pageCache, err := utils.NewCache(8)
	require.NoError(t, err)

	// httptest serves plain http, so the cookie must not be Secure.
	sessionStore := cookie.NewStore([]byte("test-secret"))
	sessionStore.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})

	engine, err := New(Deps{
		Users:       store.NewUserStore(gdb),
		Comments:    store.NewCommentStore(gdb),
		Pokemon:     pokemon,
		PokeAPI:     services.NewPokeAPIClient(apiServer.URL, apiServer.Client()),
		Generations: services.NewGenerationService(pokemon, pageCache),
		DB:          sqlDB,
		Sessions:    sessionStore,
		SessionName: "pokedex_session",
		SiteURL:     "https://pokedex.test",
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return &testApp{server: server, db: gdb}
}

// browser is one visitor with its own cookie jar.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (a *testApp) newBrowser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: a.server.URL, client: &http.Client{Jar: jar}}
}

type page struct {
	Status int
	Path   string
	Body   string
}

func (b *browser) get(path string) page {
	b.t.Helper()
	resp, err := b.client.Get(b.base + path)
	require.NoError(b.t, err)
	return readPage(b.t, resp)
}

func (b *browser) post(path string, form url.Values) page {
	b.t.Helper()
	resp, err := b.client.PostForm(b.base+path, form)
	require.NoError(b.t, err)
	return readPage(b.t, resp)
}

func readPage(t *testing.T, resp *http.Response) page {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return page{Status: resp.StatusCode, Path: resp.Request.URL.Path, Body: string(body)}
}

func (b *browser) signup(username, email, password string) page {
	return b.post("/signup", url.Values{"username": {username}, "email": {email}, "password": {password}})
}

func (b *browser) login(username, password string) page {
	return b.post("/login", url.Values{"username": {username}, "password": {password}})
}

// requireLoggedIn fails unless the browser holds a live session cookie and
// pages render the member navbar.
func requireLoggedIn(t *testing.T, b *browser) {
	t.Helper()
	u, err := url.Parse(b.base)
	require.NoError(t, err)
	require.NotEmpty(t, b.client.Jar.Cookies(u), "no session cookie kept")
	about := b.get("/about")
	require.Contains(t, about.Body, "Log out")
}

func (a *testApp) userID(t *testing.T, username string) uint {
	t.Helper()
	var user models.User
	require.NoError(t, a.db.Where("username = ?", username).First(&user).Error)
	return user.ID
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)
	anon := app.newBrowser(t)

	home := anon.get("/")
	assert.Equal(t, http.StatusOK, home.Status)
	assert.Contains(t, home.Body, "<h1>main page!</h1>")

	signup := anon.get("/signup")
	assert.Contains(t, signup.Body, "Sign me up!")

	login := anon.get("/login")
	assert.Contains(t, login.Body, `<button class="btn btn-primary btn-lg">Log in</button>`)

	about := anon.get("/about")
	assert.Equal(t, http.StatusOK, about.Status)

	missing := anon.get("/no-such-page")
	assert.Equal(t, http.StatusNotFound, missing.Status)
}

func TestStaticAssetsEmbedded(t *testing.T) {
	app := newTestApp(t)
	resp := app.newBrowser(t).get("/static/images/default-pic.png")
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)
	resp := app.newBrowser(t).get("/healthz")
	require.Equal(t, http.StatusOK, resp.Status)

	var body map[string]string
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestSignupLogsIn(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	resp := b.signup("anon_man1", "anon@x.com", "dc>marvel1")
	require.Equal(t, http.StatusOK, resp.Status)
	requireLoggedIn(t, b)
	assert.Equal(t, "/pokedex-generations", resp.Path)
	assert.Contains(t, resp.Body, "Welcome to the community, anon_man1!")

	// the session is live: the profile is reachable and home redirects
	id := app.userID(t, "anon_man1")
	profile := b.get(fmt.Sprintf("/users/%d", id))
	assert.Equal(t, http.StatusOK, profile.Status)
	assert.Contains(t, profile.Body, "anon_man1")
	assert.Equal(t, "/pokedex-generations", b.get("/").Path)

	var user models.User
	require.NoError(t, app.db.First(&user, id).Error)
	assert.NotEqual(t, "dc>marvel1", user.Password)
	assert.Equal(t, models.DefaultImageURL, user.ImageURL)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	app := newTestApp(t)
	app.newBrowser(t).signup("anon_man1", "anon@x.com", "dc>marvel1")

	tests := []struct {
		name     string
		username string
		email    string
		want     string
	}{
		{"username", "anon_man1", "other@x.com", "Username already taken"},
		{"email", "someone_else", "anon@x.com", "Email already taken"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := app.newBrowser(t).signup(tt.username, tt.email, "password123")
			assert.Equal(t, http.StatusOK, resp.Status)
			assert.Equal(t, "/signup", resp.Path)
			assert.Contains(t, resp.Body, tt.want)
		})
	}

	var count int64
	require.NoError(t, app.db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSignupValidation(t *testing.T) {
	app := newTestApp(t)
	resp := app.newBrowser(t).signup("", "not-an-email", "short")

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, forms.MsgRequired)
	assert.Contains(t, resp.Body, forms.MsgInvalidEmail)
	assert.Contains(t, resp.Body, forms.MsgPasswordLen)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.newBrowser(t).signup("ash", "ash@x.com", "pikapika1")

	wrongPassword := app.newBrowser(t).login("ash", "wrong-password")
	unknownUser := app.newBrowser(t).login("gary", "pikapika1")

	for _, resp := range []page{wrongPassword, unknownUser} {
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "/login", resp.Path)
		assert.Contains(t, resp.Body, "Invalid credentials.")
	}
}

func TestLoginAndLogout(t *testing.T) {
	app := newTestApp(t)
	app.newBrowser(t).signup("ash", "ash@x.com", "pikapika1")

	b := app.newBrowser(t)
	resp := b.login("ash", "pikapika1")
	assert.Equal(t, "/pokedex-generations", resp.Path)
	assert.Contains(t, resp.Body, "Welcome back, ash!")

	resp = b.get("/logout")
	assert.Equal(t, "/login", resp.Path)
	assert.Contains(t, resp.Body, "You Have Logged Out")

	resp = b.get(fmt.Sprintf("/users/%d", app.userID(t, "ash")))
	assert.Equal(t, "/", resp.Path)
	assert.Contains(t, resp.Body, "Access unauthorized.")
}

func TestCommentLifecycleAndOwnership(t *testing.T) {
	app := newTestApp(t)
	author := app.newBrowser(t)
	author.signup("anon_man1", "anon@x.com", "dc>marvel1")

	form := author.get("/pokemon/charmander/add-comment")
	assert.Contains(t, form.Body, "Add New Comment")

	resp := author.post("/pokemon/charmander/add-comment", url.Values{"comment": {"posting under charmander"}})
	assert.Equal(t, "/pokemon/charmander/detail", resp.Path)
	assert.Contains(t, resp.Body, "Comment added successfully!")
	assert.Contains(t, resp.Body, "posting under charmander")

	var comment models.Comment
	require.NoError(t, app.db.First(&comment).Error)

	// another member can neither edit nor delete it
	intruder := app.newBrowser(t)
	intruder.signup("intruder", "intruder@x.com", "password123")
	requireLoggedIn(t, intruder)

	resp = intruder.get(fmt.Sprintf("/comments/%d/edit", comment.ID))
	assert.Contains(t, resp.Body, "Access unauthorized.")

	resp = intruder.post(fmt.Sprintf("/comments/%d/edit", comment.ID), url.Values{"comment": {"hijacked"}})
	assert.Contains(t, resp.Body, "Access unauthorized.")

	resp = intruder.post(fmt.Sprintf("/comments/%d/delete", comment.ID), nil)
	assert.Contains(t, resp.Body, "Access unauthorized.")

	var unchanged models.Comment
	require.NoError(t, app.db.First(&unchanged, comment.ID).Error)
	assert.Equal(t, "posting under charmander", unchanged.Text)

	// the author can
	resp = author.post(fmt.Sprintf("/comments/%d/edit", comment.ID), url.Values{"comment": {"  edited text  "}})
	assert.Equal(t, fmt.Sprintf("/users/%d", comment.UserID), resp.Path)
	assert.Contains(t, resp.Body, "edited text")

	var edited models.Comment
	require.NoError(t, app.db.First(&edited, comment.ID).Error)
	assert.Equal(t, "edited text", edited.Text)
	assert.True(t, edited.Timestamp.Equal(comment.Timestamp))

	resp = author.post(fmt.Sprintf("/comments/%d/delete", comment.ID), nil)
	assert.Equal(t, fmt.Sprintf("/users/%d", comment.UserID), resp.Path)

	var count int64
	require.NoError(t, app.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAnonymousCannotComment(t *testing.T) {
	app := newTestApp(t)
	anon := app.newBrowser(t)

	resp := anon.post("/pokemon/charmander/add-comment", url.Values{"comment": {"hello"}})
	assert.Equal(t, "/", resp.Path)
	assert.Contains(t, resp.Body, "Access unauthorized.")
	assert.Contains(t, resp.Body, "main page!")

	var count int64
	require.NoError(t, app.db.Model(&models.Comment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentLengthBounds(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.signup("ash", "ash@x.com", "pikapika1")

	blank := b.post("/pokemon/charmander/add-comment", url.Values{"comment": {"   "}})
	assert.Equal(t, "/pokemon/charmander/add-comment", blank.Path)
	assert.Contains(t, blank.Body, forms.MsgCommentBlank)

	tooLong := b.post("/pokemon/charmander/add-comment", url.Values{"comment": {strings.Repeat("a", 141)}})
	assert.Contains(t, tooLong.Body, forms.MsgCommentLong)

	exact := b.post("/pokemon/charmander/add-comment", url.Values{"comment": {strings.Repeat("a", 140)}})
	assert.Equal(t, "/pokemon/charmander/detail", exact.Path)

	var count int64
	require.NoError(t, app.db.Model(&models.Comment{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestProfileEdit(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.signup("ash", "ash@x.com", "pikapika1")
	requireLoggedIn(t, b)
	app.newBrowser(t).signup("misty", "misty@x.com", "starmie11")
	id := app.userID(t, "ash")
	editPath := fmt.Sprintf("/users/%d/edit", id)

	resp := b.post(editPath, url.Values{
		"username": {"ash_ketchum"}, "email": {"ash@x.com"}, "password": {"not-my-password"},
	})
	assert.Equal(t, fmt.Sprintf("/users/%d", id), resp.Path)
	assert.Contains(t, resp.Body, "Incorrect Password!")

	resp = b.post(editPath, url.Values{
		"username": {"misty"}, "email": {"ash@x.com"}, "password": {"pikapika1"},
	})
	assert.Contains(t, resp.Body, "Username already taken")

	resp = b.post(editPath, url.Values{
		"username": {"ash_ketchum"}, "email": {"ash@pallet.town"}, "password": {"pikapika1"},
	})
	assert.Equal(t, fmt.Sprintf("/users/%d", id), resp.Path)
	assert.Contains(t, resp.Body, "ash_ketchum")

	var user models.User
	require.NoError(t, app.db.First(&user, id).Error)
	assert.Equal(t, "ash_ketchum", user.Username)
	assert.Equal(t, "ash@pallet.town", user.Email)

	// editing somebody else's profile is refused
	other := fmt.Sprintf("/users/%d/edit", app.userID(t, "misty"))
	resp = b.get(other)
	assert.Contains(t, resp.Body, "Access unauthorized.")
}

func TestDeleteProfileRemovesComments(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.signup("ash", "ash@x.com", "pikapika1")
	b.post("/pokemon/charmander/add-comment", url.Values{"comment": {"first"}})
	b.post("/pokemon/charmander/add-comment", url.Values{"comment": {"second"}})
	id := app.userID(t, "ash")

	resp := b.post(fmt.Sprintf("/users/%d/delete", id), nil)
	assert.Equal(t, "/signup", resp.Path)
	assert.Contains(t, resp.Body, "User profile deleted.")

	var users, comments int64
	require.NoError(t, app.db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, app.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.Zero(t, users)
	assert.Zero(t, comments)

	// the session no longer authenticates
	assert.Equal(t, "/", b.get(fmt.Sprintf("/users/%d", id)).Path)
}

func TestPokemonPages(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	generations := b.get("/pokedex-generations")
	assert.Equal(t, http.StatusOK, generations.Status)
	assert.Contains(t, generations.Body, "Kanto")
	assert.Contains(t, generations.Body, "/pokemon/charmander/detail")

	dex := b.get("/pokedex-generations/kanto")
	assert.Equal(t, http.StatusOK, dex.Status)
	assert.Contains(t, dex.Body, "Kanto Pokédex")

	detail := b.get("/pokemon/charmander/detail")
	assert.Equal(t, http.StatusOK, detail.Status)
	assert.Contains(t, detail.Body, "blaze")
	assert.Contains(t, detail.Body, "https://img/shiny/4.png")
}

func TestPokemonErrors(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	unknown := b.get("/pokemon/missingno/detail")
	assert.Equal(t, http.StatusNotFound, unknown.Status)

	// pikachu is seeded locally but the fake API does not know it
	upstream := b.get("/pokemon/pikachu/detail")
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
	assert.Contains(t, upstream.Body, "Pokémon data is unavailable right now.")

	missingDex := b.get("/pokedex-generations/atlantis")
	assert.Equal(t, http.StatusBadGateway, missingDex.Status)
}

func TestRobotsAndSitemap(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)

	robots := b.get("/robots.txt")
	assert.Equal(t, http.StatusOK, robots.Status)
	assert.Contains(t, robots.Body, "Sitemap: https://pokedex.test/sitemap.xml")
	assert.Contains(t, robots.Body, "Disallow: /users/")

	sitemap := b.get("/sitemap.xml")
	assert.Equal(t, http.StatusOK, sitemap.Status)
	assert.Contains(t, sitemap.Body, "<loc>https://pokedex.test/pokemon/charmander/detail</loc>")
	assert.Contains(t, sitemap.Body, "<loc>https://pokedex.test/pokedex-generations/kanto</loc>")
}

func TestCommentFeed(t *testing.T) {
	app := newTestApp(t)
	b := app.newBrowser(t)
	b.signup("ash", "ash@x.com", "pikapika1")
	b.post("/pokemon/charmander/add-comment", url.Values{"comment": {"charmander is **the best**"}})

	resp := b.get("/feed.xml")
	require.Equal(t, http.StatusOK, resp.Status)

	feed, err := gofeed.NewParser().ParseString(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "Pokédex Community", feed.Title)
	require.Len(t, feed.Items, 1)

	item := feed.Items[0]
	assert.Equal(t, "ash on charmander", item.Title)
	assert.Equal(t, "https://pokedex.test/pokemon/charmander/detail", item.Link)
	assert.Contains(t, item.Description, "<strong>the best</strong>")
	assert.NotNil(t, item.PublishedParsed)
}

func TestDeleteOtherProfileRefused(t *testing.T) {
	app := newTestApp(t)
	ash := app.newBrowser(t)
	ash.signup("ash", "ash@x.com", "pikapika1")
	ash.post("/pokemon/charmander/add-comment", url.Values{"comment": {"mine"}})

	misty := app.newBrowser(t)
	misty.signup("misty", "misty@x.com", "starmie11")
	requireLoggedIn(t, misty)

	resp := misty.post(fmt.Sprintf("/users/%d/delete", app.userID(t, "ash")), nil)
	assert.Contains(t, resp.Body, "Access unauthorized.")

	var users, comments int64
	require.NoError(t, app.db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, app.db.Model(&models.Comment{}).Count(&comments).Error)
	assert.EqualValues(t, 2, users)
	assert.EqualValues(t, 1, comments)

	// misty is still logged in and ash's account still works
	requireLoggedIn(t, misty)
	assert.Equal(t, http.StatusOK, ash.get(fmt.Sprintf("/users/%d", app.userID(t, "ash"))).Status)
}

func TestSignupRejectsOverlongPassword(t *testing.T) {
	app := newTestApp(t)
	resp := app.newBrowser(t).signup("longpw", "long@x.com", strings.Repeat("p", 80))

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "/signup", resp.Path)
	assert.Contains(t, resp.Body, forms.MsgPasswordLong)

	var count int64
	require.NoError(t, app.db.Model(&models.User{}).Count(&count).Error)
	assert.Zero(t, count)
}
