// =============================================================================
// Lambda: collect-news
// =============================================================================
//
// 外部ニュースAPIから定期収集し、ニュースキャッシュに追記するLambda関数。
// EventBridgeのスケジュール実行を想定（cron相当）。
//
// 環境変数:
//   - NEWS_DATA_KEY:        newsdata.io APIキー
//   - NEWS_API_KEY:         newsapi.org APIキー
//   - NEWS_MEDIASTACK_KEY:  Mediastack APIキー
//   - FETCHERS:             実行するフェッチャー (デフォルト: newsdata,newsapi,mediastack)
//   - NOTION_TOKEN:         設定するとNotionStoreに保存 (任意)
//   - NOTION_DB_NEWS_API:   News.APIコレクションのデータベースID
//   - NOTION_DB_NEWS_DATA:  News.DATAコレクションのデータベースID
//   - NOTION_DB_MEDIASTACK: News.MediastackコレクションのデータベースID
//   - STORE_DIR:            FileStoreのディレクトリ (デフォルト: /tmp/presse-radar)
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"

	"presse-radar/internal/pipeline"
)

// DefaultFetchers は既定で実行する定期収集フェッチャー
const DefaultFetchers = "newsdata,newsapi,mediastack"

// Response はLambdaレスポンス
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Stored     int    `json:"stored"`
	Failed     int    `json:"failed"`
}

// fetcherFunc は定期収集フェッチャーの共通シグネチャ
type fetcherFunc func(ctx context.Context, cfg pipeline.SourceConfig, store pipeline.ArticleStore) (int, error)

// fetchers は識別子からフェッチャーへの対応表
var fetchers = map[string]fetcherFunc{
	"newsdata":   pipeline.FetchAndStoreNewsData,
	"newsapi":    pipeline.FetchAndStoreNewsAPI,
	"mediastack": pipeline.FetchAndStoreMediastack,
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	log.Println("Starting collect-news Lambda...")

	cfg := pipeline.DefaultSourceConfig()
	cfg.NewsDataKey = os.Getenv("NEWS_DATA_KEY")
	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.MediastackKey = os.Getenv("NEWS_MEDIASTACK_KEY")

	store, err := buildStore()
	if err != nil {
		log.Printf("Error creating store: %v", err)
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	names := parseFetchers(os.Getenv("FETCHERS"))
	log.Printf("Config: fetchers=%s", strings.Join(names, ","))

	stored := 0
	failed := 0
	for _, name := range names {
		fetch, ok := fetchers[name]
		if !ok {
			log.Printf("Warning: unknown fetcher %q, skipping", name)
			continue
		}
		n, err := fetch(ctx, cfg, store)
		if err != nil {
			log.Printf("Warning: fetcher %s failed: %v", name, err)
			failed++
			continue
		}
		log.Printf("Fetcher %s stored %d items", name, n)
		stored += n
	}

	if failed == len(names) && len(names) > 0 {
		err := fmt.Errorf("all %d fetchers failed", failed)
		return Response{StatusCode: 500, Message: err.Error(), Failed: failed}, err
	}

	return Response{
		StatusCode: 200,
		Message:    fmt.Sprintf("Stored %d items (%d fetcher(s) failed)", stored, failed),
		Stored:     stored,
		Failed:     failed,
	}, nil
}

// buildStore は環境変数に応じてNotionStoreまたはFileStoreを構築する
func buildStore() (pipeline.ArticleStore, error) {
	if token := os.Getenv("NOTION_TOKEN"); token != "" {
		return pipeline.NewNotionStore(token, map[string]string{
			pipeline.CollectionNewsAPI:    os.Getenv("NOTION_DB_NEWS_API"),
			pipeline.CollectionNewsData:   os.Getenv("NOTION_DB_NEWS_DATA"),
			pipeline.CollectionMediastack: os.Getenv("NOTION_DB_MEDIASTACK"),
		})
	}

	dir := os.Getenv("STORE_DIR")
	if dir == "" {
		dir = "/tmp/presse-radar"
	}
	return pipeline.NewFileStore(dir)
}

// parseFetchers はフェッチャー指定文字列をパースしてスライスで返す
func parseFetchers(raw string) []string {
	if raw == "" {
		raw = DefaultFetchers
	}
	var result []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			result = append(result, s)
		}
	}
	return result
}

func main() {
	lambda.Start(Handler)
}
