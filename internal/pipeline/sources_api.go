// =============================================================================
// sources_api.go - JSON API系ソースアダプタと定期収集フェッチャー
// =============================================================================
//
// 【収録機能】
//   - mediastack:       検索リクエスト用のアダプタ（ソース許可リスト付き）
//   - 定期収集:         newsdata.io / NewsAPI / Mediastack から取得して
//                       ArticleStoreに追記する（cmd/lambda/collectが呼ぶ）
//
// 【許可リストについて】
//   Mediastackは世界中のアウトレットを返すため、ドイツの報道機関の
//   許可リストで絞り込む。比較は小文字化＋トリム後に行う。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// mediastackAllowedSources はMediastackから採用するドイツ語圏アウトレット
var mediastackAllowedSources = map[string]struct{}{
	"pnn":                   {},
	"der tagesspiegel":      {},
	"stern":                 {},
	"merkur-online":         {},
	"die welt":              {},
	"hna":                   {},
	"tagesschau":            {},
	"faz":                   {},
	"swr":                   {},
	"n-tv":                  {},
	"ndr":                   {},
	"radioduisburg":         {},
	"neue zuercher zeitung": {},
	"focus":                 {},
	"hr-online":             {},
	"mdr":                   {},
	"heute":                 {},
	"sueddeutsche":          {},
	"t-online":              {},
	"zeit":                  {},
	"radiokoeln":            {},
	"az-web":                {},
	"kicker.de":             {},
	"der spiegel":           {},
}

// allowedOutlet は許可リスト判定（小文字化＋トリム後に比較）
func allowedOutlet(source string) bool {
	_, ok := mediastackAllowedSources[strings.ToLower(strings.TrimSpace(source))]
	return ok
}

// mediastackDate はMediastackのタイムスタンプを表示形式に変換する。
// パースできない場合は空文字列（記事は捨てない）。
func mediastackDate(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return ""
	}
	return t.Format(DisplayDateFormat)
}

// fetchArticlesFromMediastack はMediastack News APIから記事を収集する
//
// キーワード検索のみでサーバー側の期間絞り込みは行わない（APIの
// 無料プランが日付パラメータを持たないため）。許可リスト外の
// アウトレットはここで捨てる。
func fetchArticlesFromMediastack(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error) {
	cfg := p.cfg
	if cfg.MediastackKey == "" {
		return nil, fmt.Errorf("mediastack: missing API key")
	}

	apiURL := fmt.Sprintf("%s?access_key=%s&keywords=%s",
		cfg.MediastackBaseURL, url.QueryEscape(cfg.MediastackKey), url.QueryEscape(req.Query))

	var res mediastackResponse
	if err := httpGetJSON(ctx, apiURL, cfg, &res); err != nil {
		return nil, err
	}

	var articles []Article
	for _, item := range res.Data {
		if !allowedOutlet(item.Source) {
			continue
		}
		if item.Title == "" || item.URL == "" {
			continue
		}
		articles = append(articles, Article{
			Titel:          item.Title,
			FullArticleURL: item.URL,
			Date:           mediastackDate(item.PublishedAt),
			Source:         item.Source,
		})
	}

	return articles, nil
}

// =============================================================================
// 定期収集フェッチャー（ArticleStoreへの追記）
// =============================================================================

// FetchAndStoreNewsData はnewsdata.ioの最新政治ニュースを取得して
// News.DATAコレクションに追記する
func FetchAndStoreNewsData(ctx context.Context, cfg SourceConfig, store ArticleStore) (int, error) {
	if cfg.NewsDataKey == "" {
		return 0, fmt.Errorf("newsdata: missing API key")
	}

	apiURL := fmt.Sprintf("%s?apikey=%s&language=de&country=de&category=politics",
		cfg.NewsDataBaseURL, url.QueryEscape(cfg.NewsDataKey))

	var res newsDataResponse
	if err := httpGetJSON(ctx, apiURL, cfg, &res); err != nil {
		return 0, err
	}
	if len(res.Results) == 0 {
		infof("newsdata: nothing to store")
		return 0, nil
	}

	if err := store.Append(ctx, CollectionNewsData, res.Results); err != nil {
		return 0, err
	}
	return len(res.Results), nil
}

// FetchAndStoreNewsAPI はNewsAPIから当日のニュースを取得して
// News.APIコレクションに追記する
//
// 問い合わせは主要4紙のドメインに固定。"Kalenderblatt"で始まる
// 定型記事（歴史カレンダー）は落とし、タイトルの重複も除去する。
func FetchAndStoreNewsAPI(ctx context.Context, cfg SourceConfig, store ArticleStore) (int, error) {
	if cfg.NewsAPIKey == "" {
		return 0, fmt.Errorf("newsapi: missing API key")
	}

	today := time.Now().Format(ISODateFormat)
	apiURL := fmt.Sprintf("%s?domains=tagesspiegel.de,zeit.de,handelsblatt.com,spiegel.de&apiKey=%s&from=%s&to=%s&sortBy=publishedAt",
		cfg.NewsAPIBaseURL, url.QueryEscape(cfg.NewsAPIKey), today, today)

	var res newsAPIResponse
	if err := httpGetJSON(ctx, apiURL, cfg, &res); err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(res.Articles))
	var items []NewsItem
	for _, a := range res.Articles {
		if a.Title == "" || strings.HasPrefix(a.Title, "Kalenderblatt") {
			continue
		}
		if _, dup := seen[a.Title]; dup {
			continue
		}
		seen[a.Title] = struct{}{}
		items = append(items, NewsItem{
			Title:       a.Title,
			URL:         a.URL,
			Source:      a.Source.Name,
			Description: a.Description,
			PublishedAt: a.PublishedAt,
		})
	}

	if len(items) == 0 {
		infof("newsapi: nothing to store")
		return 0, nil
	}
	if err := store.Append(ctx, CollectionNewsAPI, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

// FetchAndStoreMediastack はMediastackからドイツ語ニュースを取得して
// News.Mediastackコレクションに追記する
//
// 検索アダプタと同じ許可リストに加えて、画像のない記事と
// タイトル重複を落とす（フロントのカード表示が画像前提のため）。
func FetchAndStoreMediastack(ctx context.Context, cfg SourceConfig, store ArticleStore) (int, error) {
	if cfg.MediastackKey == "" {
		return 0, fmt.Errorf("mediastack: missing API key")
	}

	apiURL := fmt.Sprintf("%s?access_key=%s&languages=de&keywords=&limit=100",
		cfg.MediastackBaseURL, url.QueryEscape(cfg.MediastackKey))

	var res mediastackResponse
	if err := httpGetJSON(ctx, apiURL, cfg, &res); err != nil {
		return 0, err
	}

	seen := make(map[string]struct{}, len(res.Data))
	var items []NewsItem
	for _, item := range res.Data {
		if !allowedOutlet(item.Source) || item.Image == nil {
			continue
		}
		if _, dup := seen[item.Title]; dup {
			continue
		}
		seen[item.Title] = struct{}{}
		items = append(items, NewsItem{
			Title:          item.Title,
			URL:            item.URL,
			Source:         item.Source,
			PublishedAtAPI: item.PublishedAt,
			Image:          *item.Image,
		})
	}

	if len(items) == 0 {
		infof("mediastack: nothing to store")
		return 0, nil
	}
	if err := store.Append(ctx, CollectionMediastack, items); err != nil {
		return 0, err
	}
	return len(items), nil
}
