// =============================================================================
// utils.go - ユーティリティ関数
// =============================================================================
//
// このファイルはシステム全体で使用する汎用的なヘルパー関数を提供します。
//
// 【このファイルで提供する機能】
//   - HTTP操作: goqueryドキュメント取得、JSON API呼び出し
//   - URL操作: 相対URLの絶対化
//   - JSON操作: ファイル読み書き、標準出力への出力
//   - ログ出力: 警告・情報メッセージの出力（stderr）
//
// 【初心者向けポイント】
//   - 標準出力（stdout）はJSONデータ専用。ログはすべてstderrに出力する
//   - JSONのエンコード/デコードにはjson-iteratorを使用
//     （encoding/json互換モードなので使い方は標準ライブラリと同じ）
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	jsoniter "github.com/json-iterator/go"
)

// json は encoding/json 互換のjson-iteratorインスタンス
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// -----------------------------------------------------------------------------
// HTTP操作関数
// -----------------------------------------------------------------------------

// fetchDoc は指定URLからHTMLドキュメントを取得してgoqueryでパース
//
// コンテキスト（キャンセル/締め切り）付きでHTTPリクエストを送信し、
// レスポンスをgoquery.Documentとして返す。
//
// 引数:
//
//	ctx: キャンセル用コンテキスト（aggregateの共有締め切り）
//	u:   取得するURL
//	cfg: User-Agentと共有クライアントの設定
func fetchDoc(ctx context.Context, u string, cfg SourceConfig) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return nil, err
	}
	// ブロッキング回避のため、ブラウザ風のヘッダーを設定
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	// HTTPステータスコードチェック（200番台以外はエラー）
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("GET %s: status %s", u, resp.Status)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// httpGetJSON はHTTP GETリクエストを実行し、JSONレスポンスをデコードする
//
// レスポンスボディを自動的にクローズし、指定した型にJSONをデコードする。
//
// 使用例:
//
//	var res geocodeResponse
//	err := httpGetJSON(ctx, apiURL, cfg, &res)
func httpGetJSON(ctx context.Context, u string, cfg SourceConfig, v any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := cfg.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GET %s: status %s", u, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

// resolveURL は相対URLを絶対URLに変換
//
// ベースURLと相対URL（href）から完全な絶対URLを生成する。
// 既に絶対URLの場合はそのまま返す。エラー時は空文字列。
func resolveURL(baseURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	// 相対URLを絶対URLに解決
	return base.ResolveReference(u).String()
}

// -----------------------------------------------------------------------------
// 日付ヘルパー
// -----------------------------------------------------------------------------

// parseDisplayDate は表示形式（DD.MM.YYYY）の日付文字列をパースする
func parseDisplayDate(s string) (time.Time, error) {
	return time.Parse(DisplayDateFormat, strings.TrimSpace(s))
}

// isoDateRange はリクエストの期間（表示形式）をISO形式のペアに変換する
//
// 検索ポータルのクエリパラメータはISO形式（YYYY-MM-DD）を要求するため。
func isoDateRange(req FetchRequest) (string, string, error) {
	start, err := parseDisplayDate(req.StartDate)
	if err != nil {
		return "", "", fmt.Errorf("startDate %q: %w", req.StartDate, err)
	}
	end, err := parseDisplayDate(req.EndDate)
	if err != nil {
		return "", "", fmt.Errorf("endDate %q: %w", req.EndDate, err)
	}
	return start.Format(ISODateFormat), end.Format(ISODateFormat), nil
}

// withinRange は t が [start, end]（両端含む）に入っているかを返す
func withinRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// -----------------------------------------------------------------------------
// JSON操作関数
// -----------------------------------------------------------------------------

// WriteJSONToStdout は任意のデータをJSON形式で標準出力に書き出す
//
// 出力は2スペースでインデントされた読みやすい形式になる。
//
// 【使用場面】
//
//	パイプライン処理でJSONを次のコマンドに渡す場合
//	./pipeline ... | jq '.'
func WriteJSONToStdout(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ") // 2スペースインデント
	return enc.Encode(v)
}

// WriteJSONFile は任意のデータをJSON形式でファイルに保存する
//
// 【ファイル権限】0o644 = 所有者は読み書き可、他は読み取りのみ
func WriteJSONFile(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// ReadJSONFile はJSONファイルを読み込んで指定した型に変換する
//
// 使用例:
//
//	var items []NewsItem
//	err := ReadJSONFile("data/news.json", &items)
func ReadJSONFile(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

// -----------------------------------------------------------------------------
// ログ出力関数
// -----------------------------------------------------------------------------

// warnf は警告メッセージを標準エラー出力に書き出す
//
// 【なぜ標準エラー出力を使うか】
//
//	標準出力（stdout）はパイプラインでデータを渡すために使用するため、
//	ログメッセージは標準エラー出力（stderr）に出力する
func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "WARN: "+format+"\n", args...)
}

// infof は情報メッセージを標準エラー出力に書き出す
func infof(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "INFO: "+format+"\n", args...)
}

// errorf はエラーメッセージを標準エラー出力に書き出す
//
// 【注意】この関数はログ出力のみでプログラムは終了しない
// プログラムを終了させる場合は Fatalf() を使用する
func errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
}

// Fatalf はエラーメッセージを出力してプログラムを終了する
func Fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
