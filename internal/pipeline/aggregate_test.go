package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSource(articles ...Article) sourceFetcher {
	return func(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error) {
		return articles, nil
	}
}

func validRequest(sources ...string) FetchRequest {
	return FetchRequest{
		Query:     "Brand",
		StartDate: "01.01.2026",
		EndDate:   "31.01.2026",
		Sources:   sources,
	}
}

func TestAggregateValidation(t *testing.T) {
	p := NewPipeline(DefaultSourceConfig())
	ctx := context.Background()

	t.Run("empty query", func(t *testing.T) {
		req := validRequest("berlin")
		req.Query = "   "
		_, err := p.Aggregate(ctx, req)
		assert.ErrorContains(t, err, "query")
	})

	t.Run("bad start date", func(t *testing.T) {
		req := validRequest("berlin")
		req.StartDate = "2026-01-01"
		_, err := p.Aggregate(ctx, req)
		assert.ErrorContains(t, err, "startDate")
	})

	t.Run("bad end date", func(t *testing.T) {
		req := validRequest("berlin")
		req.EndDate = "31.13.2026"
		_, err := p.Aggregate(ctx, req)
		assert.ErrorContains(t, err, "endDate")
	})

	t.Run("no sources", func(t *testing.T) {
		_, err := p.Aggregate(ctx, validRequest())
		assert.ErrorContains(t, err, "at least one source")
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := p.Aggregate(ctx, validRequest("twitter"))
		assert.ErrorContains(t, err, `unknown source "twitter"`)
	})
}

func TestAggregateOrderAndDedupe(t *testing.T) {
	a1 := Article{Titel: "Eins", FullArticleURL: "https://example.test/1", Date: "05.01.2026"}
	a2 := Article{Titel: "Zwei", FullArticleURL: "https://example.test/2", Date: "06.01.2026"}
	a3 := Article{Titel: "Drei", FullArticleURL: "https://example.test/3", Date: "07.01.2026"}

	p := NewPipeline(DefaultSourceConfig())
	p.TeaserLimit = 0 // ティーザー取得は別テストで扱う
	p.RegisterSource("zuerst", staticSource(a1, a2))
	p.RegisterSource("danach", staticSource(a2, a3))

	result, err := p.Aggregate(context.Background(), validRequest("zuerst", "danach"))
	require.NoError(t, err)

	// 並びはソース選択順・ソース内は取得順、重複は最初の出現が残る
	assert.Equal(t, []Article{a1, a2, a3}, result.Articles)
}

func TestAggregatePartialFailure(t *testing.T) {
	ok := Article{Titel: "Intakt", FullArticleURL: "https://example.test/ok"}
	partial := Article{Titel: "Teilergebnis", FullArticleURL: "https://example.test/partial"}

	p := NewPipeline(DefaultSourceConfig())
	p.TeaserLimit = 0
	p.RegisterSource("gut", staticSource(ok))
	p.RegisterSource("kaputt", func(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error) {
		return []Article{partial}, errors.New("upstream down")
	})

	result, err := p.Aggregate(context.Background(), validRequest("gut", "kaputt"))
	require.NoError(t, err)
	assert.Equal(t, []Article{ok, partial}, result.Articles)
}

func TestAggregateEmptyResult(t *testing.T) {
	p := NewPipeline(DefaultSourceConfig())
	p.RegisterSource("leer", staticSource())

	result, err := p.Aggregate(context.Background(), validRequest("leer"))
	require.NoError(t, err)

	assert.Nil(t, result.Summary)
	assert.NotNil(t, result.Articles)
	assert.Empty(t, result.Articles)
}

func TestAggregateTimeout(t *testing.T) {
	stuck := Article{Titel: "Rechtzeitig", FullArticleURL: "https://example.test/ok"}

	p := NewPipeline(DefaultSourceConfig())
	p.TeaserLimit = 0
	p.Budget = 50 * time.Millisecond
	p.RegisterSource("schnell", staticSource(stuck))
	p.RegisterSource("langsam", func(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	start := time.Now()
	result, err := p.Aggregate(context.Background(), validRequest("schnell", "langsam"))
	require.ErrorIs(t, err, ErrTimedOut)
	assert.Less(t, time.Since(start), 5*time.Second)

	// 締め切りまでに揃った結果は失わない
	assert.Equal(t, []Article{stuck}, result.Articles)
}

func TestAggregateEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/presse/pressemitteilungen/index/search", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<table><tbody>
			<tr><td>05.01.2026</td><td><a href="/presse/pm/1">Senat zur Verkehrswende</a></td></tr>
		</tbody></table>`)
	})
	mux.HandleFunc("/search/press_releases/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<div class="article__item">
			<time class="c-card__time" datetime="2026-01-10"></time>
			<h3 class="article__title"><a href="/presse/wald">Waldschutz jetzt</a></h3>
			<a class="article__img-holder" href="/presse/wald"></a>
		</div>`)
	})
	mux.HandleFunc("/presse/pm/1", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><meta name="description" content="Der Senat plant neue Radwege."></head></html>`)
	})
	mux.HandleFunc("/presse/wald", func(w http.ResponseWriter, r *http.Request) {
		// メタタグなし → ティーザーは空文字列に劣化する
		fmt.Fprint(w, `<html><head></head></html>`)
	})

	cfg := DefaultSourceConfig()
	cfg.Client = server.Client()
	cfg.BerlinSearchURL = server.URL + "/presse/pressemitteilungen/index/search"
	cfg.GreenpeaceSearchURL = server.URL + "/search/press_releases/"
	p := NewPipeline(cfg)

	result, err := p.Aggregate(context.Background(), validRequest("berlin", "greenpeace"))
	require.NoError(t, err)
	require.Len(t, result.Articles, 2)

	assert.Equal(t, "Senat zur Verkehrswende", result.Articles[0].Titel)
	assert.Equal(t, "Berlin.de", result.Articles[0].Source)
	assert.Equal(t, "Waldschutz jetzt", result.Articles[1].Titel)
	assert.Equal(t, "Greenpeace", result.Articles[1].Source)

	require.Len(t, result.Summary, 2)
	assert.Equal(t, "Der Senat plant neue Radwege.", result.Summary[0].Teaser)
	assert.Equal(t, "", result.Summary[1].Teaser)
}

func TestAggregateWithTeasers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><head><meta name="description" content="Teaser für %s"></head></html>`, r.URL.Path)
	}))
	defer server.Close()

	cfg := DefaultSourceConfig()
	cfg.Client = server.Client()
	p := NewPipeline(cfg)
	p.TeaserLimit = 2
	p.RegisterSource("fixtures", staticSource(
		Article{Titel: "Eins", FullArticleURL: server.URL + "/1", Standort: "Berlin", Date: "05.01.2026"},
		Article{Titel: "Zwei", FullArticleURL: server.URL + "/2", Date: "06.01.2026"},
		Article{Titel: "Drei", FullArticleURL: server.URL + "/3", Date: "07.01.2026"},
	))

	result, err := p.Aggregate(context.Background(), validRequest("fixtures"))
	require.NoError(t, err)
	require.Len(t, result.Articles, 3)

	// サマリーは先頭TeaserLimit件のみ
	require.Len(t, result.Summary, 2)
	assert.Equal(t, "Eins", result.Summary[0].Title)
	assert.Equal(t, "Teaser für /1", result.Summary[0].Teaser)
	assert.Equal(t, "Berlin", result.Summary[0].City)
	assert.Equal(t, "Teaser für /2", result.Summary[1].Teaser)
}
