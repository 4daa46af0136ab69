package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixUglyURL(t *testing.T) {
	assert.Equal(t,
		"https://www.presseportal.de/blaulicht/pm/12345/67890",
		fixUglyURL("https:@@www.presseportal.de@blaulicht@pm@12345@67890"))
	assert.Equal(t, "unverändert", fixUglyURL("unverändert"))
}

func portalEntryLI(title, ugly, date string) string {
	return fmt.Sprintf(`<li>
		<span class="news-headline-clamp">%s</span>
		<div class="news-meta"><span class="date">%s</span></div>
		<a class="news-morelink" data-url-ugly="%s">mehr</a>
	</li>`, title, date, ugly)
}

func portalListPage(total int, entries ...string) string {
	return `<html><body><div class="filter-storycount">` + strconv.Itoa(total) +
		` Treffer</div><ul class="article-list">` + strings.Join(entries, "\n") +
		`</ul></body></html>`
}

func uglify(link string) string {
	return strings.ReplaceAll(link, "/", "@")
}

func TestFetchArticlesFromPresseportal(t *testing.T) {
	var searchFetches atomic.Int64

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/suche/", func(w http.ResponseWriter, r *http.Request) {
		searchFetches.Add(1)
		assert.Equal(t, "2026-01-01", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2026-01-31", r.URL.Query().Get("endDate"))

		// パス: /suche/{query}/blaulicht/{offset}
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		require.Len(t, parts, 4)
		assert.Equal(t, "Brand", parts[1])
		offset, err := strconv.Atoi(parts[3])
		require.NoError(t, err)

		switch offset {
		case 0:
			fmt.Fprint(w, portalListPage(3,
				portalEntryLI("Brand in Lagerhalle", uglify(server.URL+"/blaulicht/pm/1"), "05.01.2026 – 14:32"),
				portalEntryLI("Börsenbericht", uglify(server.URL+"/wirtschaft/pm/9"), "05.01.2026 – 15:00"),
				portalEntryLI("Verkehrsunfall auf der A7", uglify(server.URL+"/blaulicht/pm/2"), "06.01.2026 – 08:10"),
			))
		case 2:
			fmt.Fprint(w, portalListPage(3,
				portalEntryLI("Wohnungsbrand in der Altstadt", uglify(server.URL+"/blaulicht/pm/3"), "07.01.2026 – 19:45"),
			))
		default:
			t.Errorf("unexpected offset %d", offset)
		}
	})

	mux.HandleFunc("/blaulicht/pm/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="og:description" content="Musterstadt (ots) - Bei einem Brand entstand hoher Schaden."></head></html>`)
	})
	mux.HandleFunc("/blaulicht/pm/2", func(w http.ResponseWriter, r *http.Request) {
		// メタタグなし → 発信地不明
		fmt.Fprint(w, `<html><head><title>PM 2</title></head></html>`)
	})
	mux.HandleFunc("/blaulicht/pm/3", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="og:description" content="Landkreise Musterkreis (ots) - Einsatzbericht."></head></html>`)
	})
	mux.HandleFunc("/geo", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"latitude":51.2,"longitude":9.45,"country_code":"DE","admin1":"Hessen"}]}`)
	})

	cfg := DefaultSourceConfig()
	cfg.Client = server.Client()
	cfg.PresseportalBaseURL = server.URL
	cfg.GeocodeBaseURL = server.URL + "/geo"
	cfg.PortalPageSize = 2
	cfg.PortalMaxPages = 5
	p := NewPipeline(cfg)

	req := FetchRequest{Query: "Brand", StartDate: "01.01.2026", EndDate: "31.01.2026"}
	articles, err := fetchArticlesFromPresseportal(context.Background(), req, p)
	require.NoError(t, err)

	// 3件ヒット・ページサイズ2 → 検索ページの取得は2回で止まる
	assert.Equal(t, int64(2), searchFetches.Load())
	require.Len(t, articles, 3)

	first := articles[0]
	assert.Equal(t, "Brand in Lagerhalle", first.Titel)
	assert.Equal(t, server.URL+"/blaulicht/pm/1", first.FullArticleURL)
	assert.Equal(t, "05.01.2026", first.Date)
	assert.Equal(t, "Musterstadt", first.Standort)
	require.NotNil(t, first.Latitude)
	assert.Equal(t, 51.2, *first.Latitude)
	require.NotNil(t, first.Bundesland)
	assert.Equal(t, "Hessen", *first.Bundesland)
	assert.Equal(t, "Presseportal.de", first.Source)

	// 詳細ページにメタタグがない記事は発信地不明・座標なしのまま残る
	second := articles[1]
	assert.Equal(t, "Unbekannt", second.Standort)
	assert.Nil(t, second.Latitude)
	assert.Nil(t, second.Bundesland)

	// "Landkreise X" はジオコーディング前に郡名へ正規化される
	third := articles[2]
	assert.Equal(t, "Musterkreis", third.Standort)
	require.NotNil(t, third.Latitude)
}

func TestFetchArticlesFromPresseportalPageCeiling(t *testing.T) {
	var searchFetches atomic.Int64

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/suche/", func(w http.ResponseWriter, r *http.Request) {
		searchFetches.Add(1)
		// 総件数カウンタが壊れていても上限ページ数で必ず止まる
		fmt.Fprint(w, portalListPage(1000,
			portalEntryLI("Dauerschleife", uglify(server.URL+"/blaulicht/pm/1"), "05.01.2026 – 14:32"),
		))
	})
	mux.HandleFunc("/blaulicht/pm/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head></head></html>`)
	})

	cfg := DefaultSourceConfig()
	cfg.Client = server.Client()
	cfg.PresseportalBaseURL = server.URL
	cfg.PortalPageSize = 1
	cfg.PortalMaxPages = 3
	p := NewPipeline(cfg)

	req := FetchRequest{Query: "Brand", StartDate: "01.01.2026", EndDate: "31.01.2026"}
	articles, err := fetchArticlesFromPresseportal(context.Background(), req, p)
	require.NoError(t, err)
	assert.Equal(t, int64(3), searchFetches.Load())
	assert.Len(t, articles, 3)
}

func TestFetchArticlesFromPresseportalPartialOnError(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/suche/", func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if parts[3] != "0" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, portalListPage(10,
			portalEntryLI("Erste Seite", uglify(server.URL+"/blaulicht/pm/1"), "05.01.2026 – 14:32"),
		))
	})
	mux.HandleFunc("/blaulicht/pm/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head></head></html>`)
	})

	cfg := DefaultSourceConfig()
	cfg.Client = server.Client()
	cfg.PresseportalBaseURL = server.URL
	cfg.PortalPageSize = 1
	cfg.PortalMaxPages = 5
	p := NewPipeline(cfg)

	req := FetchRequest{Query: "Brand", StartDate: "01.01.2026", EndDate: "31.01.2026"}
	articles, err := fetchArticlesFromPresseportal(context.Background(), req, p)

	// 2ページ目の失敗はエラーとして返るが、1ページ目の結果は有効
	require.Error(t, err)
	assert.Len(t, articles, 1)
}

func TestParseStoryCount(t *testing.T) {
	doc := mustParseHTML(t, `<div class="filter-storycount">123 Treffer für Brand</div>`)
	assert.Equal(t, 123, parseStoryCount(doc))

	doc = mustParseHTML(t, `<div class="filter-storycount">keine Treffer</div>`)
	assert.Equal(t, 0, parseStoryCount(doc))

	doc = mustParseHTML(t, `<div>ohne Zähler</div>`)
	assert.Equal(t, 0, parseStoryCount(doc))
}
