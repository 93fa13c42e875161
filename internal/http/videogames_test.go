package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestCreateAndGetVideoGame(t *testing.T) {
	srv := buildTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/videogames", eldenRing)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	created := decode[map[string]any](t, rec)
	id := int64(created["id"].(float64))
	if got, want := rec.Header().Get("Location"), fmt.Sprintf("/api/videogames/%d", id); got != want {
		t.Fatalf("Location = %q, want %q", got, want)
	}
	if created["price"] != 59.99 {
		t.Fatalf("price = %#v, want JSON number 59.99", created["price"])
	}
	if _, ok := created["updatedAt"]; ok {
		t.Fatalf("updatedAt present on a new game: %v", created["updatedAt"])
	}

	rec = do(t, srv, http.MethodGet, fmt.Sprintf("/api/videogames/%d", id), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	got := decode[map[string]any](t, rec)
	if got["title"] != "Elden Ring" || got["imageUrl"] != "https://placehold.co/400x300" {
		t.Fatalf("unexpected body %v", got)
	}
}

func TestCreateVideoGame_ValidationErrors(t *testing.T) {
	srv := buildTestServer(t)

	cases := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"malformed json", `{"title":`, http.StatusBadRequest, "Malformed JSON payload"},
		{"not json", `invalid json`, http.StatusBadRequest, "Malformed JSON payload"},
		{"wrong type", `{"title":"X","releaseYear":"soon"}`, http.StatusBadRequest, "releaseYear"},
		{"empty title", `{"title":"","genre":"RPG","platform":"PC","releaseYear":2020,"price":1}`, http.StatusBadRequest, "Title cannot be empty."},
		{"long title", `{"title":"` + strings.Repeat("a", 201) + `","genre":"RPG","platform":"PC","releaseYear":2020,"price":1}`, http.StatusBadRequest, "Title cannot exceed 200 characters."},
		{"long genre", `{"title":"X","genre":"` + strings.Repeat("g", 150) + `","platform":"PC","releaseYear":2020,"price":1}`, http.StatusBadRequest, "Genre cannot exceed 100 characters."},
		{"long platform", `{"title":"X","genre":"RPG","platform":"` + strings.Repeat("p", 101) + `","releaseYear":2020,"price":1}`, http.StatusBadRequest, "Platform cannot exceed 100 characters."},
		{"long description", `{"title":"X","genre":"RPG","platform":"PC","releaseYear":2020,"price":1,"description":"` + strings.Repeat("d", 2001) + `"}`, http.StatusBadRequest, "Description cannot exceed 2000 characters."},
		{"long image url", `{"title":"X","genre":"RPG","platform":"PC","releaseYear":2020,"price":1,"imageUrl":"` + strings.Repeat("u", 501) + `"}`, http.StatusBadRequest, "Image URL cannot exceed 500 characters."},
		{"old year", `{"title":"Pong","genre":"Arcade","platform":"Arcade","releaseYear":1957,"price":1}`, http.StatusBadRequest, "Release year must be between 1958"},
		{"negative price", `{"title":"X","genre":"RPG","platform":"PC","releaseYear":2020,"price":-0.01}`, http.StatusBadRequest, "Price cannot be negative."},
		{"expensive", `{"title":"X","genre":"RPG","platform":"PC","releaseYear":2020,"price":1000.01}`, http.StatusBadRequest, "Price cannot exceed $1000."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/videogames", tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			body := decode[errorResponse](t, rec)
			if !strings.Contains(body.Message, tc.message) {
				t.Fatalf("message = %q, want contains %q", body.Message, tc.message)
			}
		})
	}

	count := decode[countResponse](t, do(t, srv, http.MethodGet, "/api/videogames/count", ""))
	if count.Count != 0 {
		t.Fatalf("count = %d after rejected creates, want 0", count.Count)
	}
}

func TestGetVideoGame_NotFoundAndBadID(t *testing.T) {
	srv := buildTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/videogames/999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if body := decode[errorResponse](t, rec); body.Message != "VideoGame with key '999' was not found." {
		t.Fatalf("message = %q", body.Message)
	}

	rec = do(t, srv, http.MethodGet, "/api/videogames/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for non-numeric id", rec.Code)
	}
}

func TestUpdateVideoGame(t *testing.T) {
	srv := buildTestServer(t)
	created := mustCreate(t, srv, eldenRing)
	path := fmt.Sprintf("/api/videogames/%d", int64(created["id"].(float64)))

	update := `{"title":"Elden Ring: Shadow of the Erdtree","genre":"Action RPG","platform":"PC","releaseYear":2024,"price":39.999}`
	rec := do(t, srv, http.MethodPut, path, update)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	body := decode[map[string]any](t, rec)
	if body["price"] != 40.0 {
		t.Fatalf("price = %v, want 40 after rounding", body["price"])
	}
	if body["description"] != "" {
		t.Fatalf("description = %v, want empty when omitted", body["description"])
	}
	if _, ok := body["updatedAt"]; !ok {
		t.Fatalf("updatedAt missing after update")
	}

	rec = do(t, srv, http.MethodPut, "/api/videogames/12345", update)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for missing game", rec.Code)
	}

	rec = do(t, srv, http.MethodPut, path, `{"title":" ","genre":"RPG","platform":"PC","releaseYear":2020,"price":1}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for invalid update", rec.Code)
	}
	after := decode[map[string]any](t, do(t, srv, http.MethodGet, path, ""))
	if after["title"] != "Elden Ring: Shadow of the Erdtree" {
		t.Fatalf("invalid update changed the stored game: %v", after["title"])
	}
}

func TestDeleteVideoGame(t *testing.T) {
	srv := buildTestServer(t)
	created := mustCreate(t, srv, eldenRing)
	path := fmt.Sprintf("/api/videogames/%d", int64(created["id"].(float64)))

	rec := do(t, srv, http.MethodDelete, path, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if rec := do(t, srv, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rec.Code)
	}
	if rec := do(t, srv, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", rec.Code)
	}
}

func seedGames(t *testing.T, srv *Server) {
	t.Helper()
	for _, g := range []struct {
		title, genre, platform string
		year                   int
	}{
		{"Spider-Man 2", "Action-Adventure", "PlayStation 5", 2023},
		{"Elden Ring", "Action RPG", "Multi-platform", 2022},
		{"Starfield", "Action RPG", "Xbox/PC", 2023},
		{"God of War Ragnarok", "Action-Adventure", "PlayStation 5", 2022},
	} {
		mustCreate(t, srv, fmt.Sprintf(`{"title":%q,"genre":%q,"platform":%q,"releaseYear":%d,"price":59.99}`, g.title, g.genre, g.platform, g.year))
	}
}

func titlesOf(items []map[string]any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item["title"].(string))
	}
	return out
}

func TestListEndpoints(t *testing.T) {
	srv := buildTestServer(t)
	seedGames(t, srv)

	cases := []struct {
		target string
		want   string
	}{
		{"/api/videogames", "Elden Ring,God of War Ragnarok,Spider-Man 2,Starfield"},
		{"/api/videogames/search?term=MAN", "Spider-Man 2"},
		{"/api/videogames/search?term=", "Elden Ring,God of War Ragnarok,Spider-Man 2,Starfield"},
		{"/api/videogames/genre/rpg", "Elden Ring,Starfield"},
		{"/api/videogames/genre/Action-Adventure", "God of War Ragnarok,Spider-Man 2"},
		{"/api/videogames/platform/Xbox%2FPC", "Starfield"},
		{"/api/videogames/year/2022", "Elden Ring,God of War Ragnarok"},
		{"/api/videogames/genre/racing", ""},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tc.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			items := decode[[]map[string]any](t, rec)
			if got := strings.Join(titlesOf(items), ","); got != tc.want {
				t.Fatalf("titles = %q, want %q", got, tc.want)
			}
		})
	}

	if rec := do(t, srv, http.MethodGet, "/api/videogames/genre/racing", ""); strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty result body = %q, want []", rec.Body.String())
	}
}

func TestGenrePathIsDecodedOnce(t *testing.T) {
	srv := buildTestServer(t)
	mustCreate(t, srv, `{"title":"Spaced","genre":"a b","platform":"PC","releaseYear":2020,"price":1}`)
	mustCreate(t, srv, `{"title":"Percent","genre":"50% Off","platform":"PC","releaseYear":2020,"price":1}`)

	cases := []struct {
		target string
		want   string
	}{
		{"/api/videogames/genre/a%20b", "Spaced"},
		{"/api/videogames/genre/a%2520b", ""},
		{"/api/videogames/genre/50%25", "Percent"},
		{"/api/videogames/genre/50%25%20Off", "Percent"},
	}
	for _, tc := range cases {
		t.Run(tc.target, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, tc.target, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
			}
			items := decode[[]map[string]any](t, rec)
			if got := strings.Join(titlesOf(items), ","); got != tc.want {
				t.Fatalf("titles = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBlankGenreIsBadRequest(t *testing.T) {
	srv := buildTestServer(t)
	rec := do(t, srv, http.MethodGet, "/api/videogames/genre/%20%20", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body := decode[errorResponse](t, rec); body.Message != "Genre cannot be empty." {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestPagedListing(t *testing.T) {
	srv := buildTestServer(t)
	for i := 0; i < 25; i++ {
		mustCreate(t, srv, fmt.Sprintf(`{"title":"Game %02d","genre":"Puzzle","platform":"PC","releaseYear":2020,"price":1}`, i))
	}

	type page struct {
		Items           []map[string]any `json:"items"`
		PageNumber      int              `json:"pageNumber"`
		PageSize        int              `json:"pageSize"`
		TotalCount      int              `json:"totalCount"`
		TotalPages      int              `json:"totalPages"`
		HasPreviousPage bool             `json:"hasPreviousPage"`
		HasNextPage     bool             `json:"hasNextPage"`
	}

	cases := []struct {
		query      string
		items      int
		size       int
		prev, next bool
	}{
		{"pageNumber=1", 10, 10, false, true},
		{"pageNumber=2", 10, 10, true, true},
		{"pageNumber=3", 5, 10, true, false},
		{"pageNumber=4", 0, 10, true, false},
		{"pageNumber=1&pageSize=25", 25, 25, false, false},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rec := do(t, srv, http.MethodGet, "/api/videogames?"+tc.query, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
			}
			p := decode[page](t, rec)
			if len(p.Items) != tc.items || p.PageSize != tc.size || p.TotalCount != 25 {
				t.Fatalf("page = %d items, size %d, total %d", len(p.Items), p.PageSize, p.TotalCount)
			}
			if p.HasPreviousPage != tc.prev || p.HasNextPage != tc.next {
				t.Fatalf("prev/next = %v/%v, want %v/%v", p.HasPreviousPage, p.HasNextPage, tc.prev, tc.next)
			}
			if p.Items == nil {
				t.Fatalf("items must encode as [] not null")
			}
		})
	}

	p := decode[page](t, do(t, srv, http.MethodGet, "/api/videogames/genre/puzzle?pageNumber=3&pageSize=10", ""))
	if p.TotalPages != 3 || len(p.Items) != 5 || p.Items[0]["title"] != "Game 20" {
		t.Fatalf("genre paged = %+v", p)
	}
}

func TestPagedListing_FarPageIsEmpty(t *testing.T) {
	srv := buildTestServer(t)
	for i := 0; i < 3; i++ {
		mustCreate(t, srv, fmt.Sprintf(`{"title":"Game %d","genre":"Puzzle","platform":"PC","releaseYear":2020,"price":1}`, i))
	}

	rec := do(t, srv, http.MethodGet, "/api/videogames?pageNumber=1844674407370955162&pageSize=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	p := decode[struct {
		Items      []map[string]any `json:"items"`
		TotalCount int              `json:"totalCount"`
	}](t, rec)
	if len(p.Items) != 0 || p.TotalCount != 3 {
		t.Fatalf("far page = %d items, total %d; want 0 items, total 3", len(p.Items), p.TotalCount)
	}
}

func TestPageParamValidation(t *testing.T) {
	srv := buildTestServer(t)
	for _, query := range []string{"pageNumber=0", "pageNumber=x", "pageNumber=1&pageSize=0", "pageNumber=1&pageSize=101", "pageNumber=1&pageSize=ten"} {
		rec := do(t, srv, http.MethodGet, "/api/videogames?"+query, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", query, rec.Code)
		}
	}
}

func TestCountEndpoint(t *testing.T) {
	srv := buildTestServer(t)
	seedGames(t, srv)
	if got := decode[countResponse](t, do(t, srv, http.MethodGet, "/api/videogames/count", "")); got.Count != 4 {
		t.Fatalf("count = %d, want 4", got.Count)
	}
}
