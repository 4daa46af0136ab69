// =============================================================================
// Lambda: cleanup-news
// =============================================================================
//
// ニュースキャッシュの3コレクションを空にするLambda関数。
// 定期収集が溜め続けるキャッシュの肥大化を防ぐため、収集より低い
// 頻度でスケジュール実行する。
//
// 環境変数はcollect-newsと同じストア設定を使う（NOTION_TOKEN等）。
//
// =============================================================================
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"presse-radar/internal/pipeline"
)

// Response はLambdaレスポンス
type Response struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Dropped    int    `json:"dropped"`
}

// Handler はLambdaのメインハンドラー
func Handler(ctx context.Context, event interface{}) (Response, error) {
	log.Println("Starting cleanup-news Lambda...")

	store, err := buildStore()
	if err != nil {
		log.Printf("Error creating store: %v", err)
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	dropped := 0
	for _, collection := range pipeline.Collections {
		if err := store.Drop(ctx, collection); err != nil {
			log.Printf("Warning: drop %s failed: %v", collection, err)
			continue
		}
		log.Printf("Dropped collection %s", collection)
		dropped++
	}

	if dropped == 0 {
		err := fmt.Errorf("no collection could be dropped")
		return Response{StatusCode: 500, Message: err.Error()}, err
	}

	return Response{
		StatusCode: 200,
		Message:    fmt.Sprintf("Dropped %d of %d collections", dropped, len(pipeline.Collections)),
		Dropped:    dropped,
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

func main() {
	lambda.Start(Handler)
}
