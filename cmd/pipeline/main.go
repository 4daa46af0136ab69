// =============================================================================
// main.go - Presse Radar CLI エントリーポイント
// =============================================================================
//
// 【実行モード】
//   デフォルト:    検索リクエストを集約して結果JSONを出力
//   -polls:       DAWUMの世論調査フィードを取得して出力
//   -cachedNews:  ローカルストアの3コレクションをマージして出力
//
// 【出力規約】
//   stdoutはJSONデータ専用。ログ・警告はすべてstderrへ。
//   -out を指定するとstdoutの代わりにファイルへ書き出す。
//
// 【使用例】
//   ./pipeline -query "Brand" -startDate 01.01.2026 -endDate 31.01.2026
//   ./pipeline -query "Hochwasser" -sources presseportal,mediastack
//   ./pipeline -polls
//   ./pipeline -cachedNews -storeDir data
//
// =============================================================================
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"presse-radar/internal/pipeline"
)

func main() {
	// .envファイルは任意（なければ環境変数のみ）
	_ = godotenv.Load()

	cli := pipeline.ParseFlags()

	src := pipeline.DefaultSourceConfig()
	src.MediastackKey = os.Getenv("NEWS_MEDIASTACK_KEY")
	src.NewsDataKey = os.Getenv("NEWS_DATA_KEY")
	src.NewsAPIKey = os.Getenv("NEWS_API_KEY")

	ctx := context.Background()

	switch {
	case cli.Polls:
		runPolls(ctx, cli, src)
	case cli.CachedNews:
		runCachedNews(ctx, cli)
	default:
		runAggregate(ctx, cli, src)
	}
}

// runAggregate は検索リクエストを実行して結果を出力する
func runAggregate(ctx context.Context, cli *pipeline.CLIConfig, src pipeline.SourceConfig) {
	req := pipeline.FetchRequest{
		Query:     cli.Query,
		StartDate: cli.StartDate,
		EndDate:   cli.EndDate,
		Sources:   cli.Sources(),
	}

	p := pipeline.NewPipeline(src)
	p.TeaserLimit = cli.TeaserLimit
	if cli.TimeoutSec > 0 {
		p.Budget = time.Duration(cli.TimeoutSec) * time.Second
	}

	result, err := p.Aggregate(ctx, req)
	switch {
	case errors.Is(err, pipeline.ErrTimedOut):
		// 部分結果は有効なので出力は続行する
		fmt.Fprintln(os.Stderr, "WARN: request timed out, result may be incomplete")
	case err != nil:
		pipeline.Fatalf("ERROR: %v", err)
	}

	writeResult(cli, result)
}

// runPolls は世論調査フィードを取得して出力する
func runPolls(ctx context.Context, cli *pipeline.CLIConfig, src pipeline.SourceConfig) {
	ctx, cancel := context.WithTimeout(ctx, src.Timeout)
	defer cancel()

	polls, err := pipeline.FetchPolls(ctx, src)
	if err != nil {
		pipeline.Fatalf("ERROR: poll feed: %v", err)
	}
	writeResult(cli, polls)
}

// runCachedNews はローカルストアのコレクションをマージして出力する
func runCachedNews(ctx context.Context, cli *pipeline.CLIConfig) {
	store, err := pipeline.NewFileStore(cli.StoreDir)
	if err != nil {
		pipeline.Fatalf("ERROR: store: %v", err)
	}

	merged, err := pipeline.MergeCachedNews(ctx, store)
	if err != nil {
		pipeline.Fatalf("ERROR: merge: %v", err)
	}
	writeResult(cli, merged)
}

// writeResult は-outの有無でstdout/ファイルを切り替えてJSONを書き出す
func writeResult(cli *pipeline.CLIConfig, v any) {
	if cli.OutFile == "" {
		if err := pipeline.WriteJSONToStdout(v); err != nil {
			pipeline.Fatalf("ERROR: write: %v", err)
		}
		return
	}
	if err := pipeline.WriteJSONFile(cli.OutFile, v); err != nil {
		pipeline.Fatalf("ERROR: write %s: %v", cli.OutFile, err)
	}
	fmt.Fprintf(os.Stderr, "INFO: wrote %s\n", cli.OutFile)
}
