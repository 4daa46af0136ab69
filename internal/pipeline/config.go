// =============================================================================
// config.go - パイプライン設定
// =============================================================================
//
// このファイルはソースアダプタ共通のHTTP設定とCLIフラグ解析を提供します。
//
// 【設計メモ】
//   - 外部エンドポイントのURLはすべてSourceConfigに持たせる。
//     テストではhttptestサーバーのURLに差し替えられる。
//   - HTTPクライアントは呼び出し側が構築してSourceConfig経由で注入する。
//     パッケージレベルの共有クライアント（遅延初期化シングルトン）は使わない。
//
// =============================================================================
package pipeline

import (
	"flag"
	"net/http"
	"strings"
	"time"
)

// DefaultSources はaggregateのデフォルトソースリスト
const DefaultSources = "presseportal,berlin,greenpeace"

// FetchBudget はaggregate呼び出し1回あたりの壁時計タイムアウト。
// ソース取得とティーザー取得は同じ締め切りを共有する。
const FetchBudget = 60 * time.Second

// DefaultTeaserLimit はティーザーを取得する記事の最大数
const DefaultTeaserLimit = 10

// SourceConfig はソースアダプタ共通のHTTP設定と各エンドポイントを保持する
type SourceConfig struct {
	UserAgent string        // HTTPリクエスト時のUser-Agentヘッダー
	Timeout   time.Duration // 個別HTTPリクエストのタイムアウト
	Client    *http.Client  // 共有HTTPクライアント（コネクションプーリング有効）

	// 外部エンドポイント（テストで差し替え可能）
	PresseportalBaseURL string // 検索ポータルのベースURL
	BerlinSearchURL     string // berlin.de プレスリリース検索
	GreenpeaceSearchURL string // Greenpeace プレスポータル検索
	MediastackBaseURL   string // Mediastack News API
	GeocodeBaseURL      string // Open-Meteo Geocoding API
	NewsDataBaseURL     string // newsdata.io（定期収集用）
	NewsAPIBaseURL      string // newsapi.org（定期収集用）
	PollFeedURL         string // DAWUM 世論調査RSSフィード

	// APIキー（環境変数から読み込む）
	MediastackKey string
	NewsDataKey   string
	NewsAPIKey    string

	// ページングの安全弁（sources_presseportal.go参照）
	PortalPageSize int // 1ページあたりの結果数（ポータル側の固定値）
	PortalMaxPages int // 取得する最大ページ数（カウンタ不整合対策）
}

// DefaultSourceConfig はデフォルトのソース設定を返す
func DefaultSourceConfig() SourceConfig {
	timeout := 10 * time.Second
	return SourceConfig{
		UserAgent: "Mozilla/5.0 (compatible; presse-radar/1.0; +https://example.invalid)",
		Timeout:   timeout,
		Client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},

		PresseportalBaseURL: "https://www.presseportal.de",
		BerlinSearchURL:     "https://www.berlin.de/presse/pressemitteilungen/index/search",
		GreenpeaceSearchURL: "https://presseportal.greenpeace.de/search/press_releases/",
		MediastackBaseURL:   "https://api.mediastack.com/v1/news",
		GeocodeBaseURL:      "https://geocoding-api.open-meteo.com/v1/search",
		NewsDataBaseURL:     "https://newsdata.io/api/1/latest",
		NewsAPIBaseURL:      "https://newsapi.org/v2/everything",
		PollFeedURL:         "http://rss.dawum.de",

		PortalPageSize: 30,
		PortalMaxPages: 20,
	}
}

// =============================================================================
// CLIフラグ
// =============================================================================

// CLIConfig はcmd/pipelineのフラグ解析結果を保持する
type CLIConfig struct {
	// 検索リクエスト
	Query     string
	StartDate string
	EndDate   string
	// SourcesRaw はカンマ区切りのソース文字列（-sources フラグの値）
	SourcesRaw string

	// 実行モード
	Polls      bool // 世論調査フィードを取得して出力
	CachedNews bool // キャッシュ済みニュースをマージして出力

	// 出力
	OutFile string // 空の場合はstdout

	// チューニング
	TeaserLimit int
	TimeoutSec  int

	// ローカルのArticleStore（FileStore）のディレクトリ
	StoreDir string
}

// Sources はSourcesRawをパースしてスライスで返す
func (c *CLIConfig) Sources() []string {
	var result []string
	for _, s := range strings.Split(c.SourcesRaw, ",") {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

// ParseFlags はCLIフラグを解析してCLIConfigを返す
func ParseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	flag.StringVar(&cfg.Query, "query", "", "search term (required unless -polls/-cachedNews)")
	flag.StringVar(&cfg.StartDate, "startDate", "", "range start, DD.MM.YYYY (inclusive)")
	flag.StringVar(&cfg.EndDate, "endDate", "", "range end, DD.MM.YYYY (inclusive)")
	flag.StringVar(&cfg.SourcesRaw, "sources", DefaultSources, "sources to query (comma separated)")

	flag.BoolVar(&cfg.Polls, "polls", false, "fetch the DAWUM poll feed instead of searching")
	flag.BoolVar(&cfg.CachedNews, "cachedNews", false, "merge and print the cached news collections")

	flag.StringVar(&cfg.OutFile, "out", "", "optional: write result JSON to this path (default: stdout)")

	flag.IntVar(&cfg.TeaserLimit, "teaserLimit", DefaultTeaserLimit, "max articles to enrich with a teaser")
	flag.IntVar(&cfg.TimeoutSec, "timeout", int(FetchBudget/time.Second), "overall fetch budget in seconds")

	flag.StringVar(&cfg.StoreDir, "storeDir", "data", "directory for the local article store")

	flag.Parse()
	return cfg
}
