// =============================================================================
// sources_presseportal.go - 検索ポータルアダプタ（ページング付きHTML）
// =============================================================================
//
// presseportal.deの検索結果を収集する、もっとも複雑なアダプタ。
//
// 【処理の流れ】
//   1. クエリ + ISO形式の期間から検索結果ページのURLを構築
//   2. 結果リスト（.article-list li）からタイトル・難読化URL・日付を抽出
//   3. URLパスの先頭セグメントが "blaulicht"（警察・消防カテゴリ）の
//      記事だけを残す
//   4. 残った記事ごとに詳細ページを取得し、メタタグから地名を抽出して
//      ジオコーディング（ページ内は並行、ページ完了前に全件待機）
//   5. ページの総件数表示と累計を比較し、足りなければ次のオフセットへ
//
// 【難読化URLについて】
//   結果リストのリンクは data-url-ugly 属性に "@" をパス区切りの
//   代わりに使った形で埋め込まれている。"@" → "/" の置換で復元する。
//
// 【ページングの安全弁】
//   ポータルの総件数カウンタは信頼できないことがあるため、
//   再帰ではなく明示的なループ + 最大ページ数 + 進捗なし検出で
//   必ず停止するようにしている。
//
// 【エラー処理】
//   どの深さで取得/パースに失敗しても、それまでに蓄積した結果を返す
//   （部分的な結果であって失敗ではない）。エラーはログされ、
//   オーケストレータには致命的エラーとして伝播しない。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"
)

// portalCategory は残す記事のURLカテゴリ（警察・消防のプレスリリース）
const portalCategory = "blaulicht"

// portalEntry は結果リスト1件分の未加工データ
type portalEntry struct {
	title string
	link  string // 難読化解除済みの絶対URL
	date  string // "05.01.2026" 形式（タイムスタンプ除去済み）
}

// fixUglyURL は難読化されたURLを復元する（"@" をパス区切りに戻す）
func fixUglyURL(ugly string) string {
	return strings.ReplaceAll(ugly, "@", "/")
}

// fetchArticlesFromPresseportal は検索ポータルから記事を収集する
//
// 戻り値の[]Articleは途中でエラーが起きても有効（部分結果）。
func fetchArticlesFromPresseportal(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error) {
	cfg := p.cfg
	isoStart, isoEnd, err := isoDateRange(req)
	if err != nil {
		return nil, err
	}

	out := []Article{}
	offset := 0

	for page := 0; page < cfg.PortalMaxPages; page++ {
		// キャンセル済みなら新しいフェッチを開始しない
		if ctx.Err() != nil {
			return out, ctx.Err()
		}

		pageURL := fmt.Sprintf("%s/suche/%s/%s/%d?startDate=%s&endDate=%s",
			cfg.PresseportalBaseURL, url.PathEscape(req.Query), portalCategory, offset, isoStart, isoEnd)

		doc, err := fetchDoc(ctx, pageURL, cfg)
		if err != nil {
			// このページ以降は諦めて、蓄積済みの結果を返す
			warnf("presseportal: page at offset %d: %v", offset, err)
			return out, err
		}

		entries := parsePortalEntries(doc)
		if len(entries) == 0 {
			return out, nil
		}

		// ページ内の記事詳細フェッチ + ジオコーディングは並行実行し、
		// 全件完了してからページを処理済みとする
		out = append(out, p.enrichPortalEntries(ctx, entries)...)

		// 総件数表示と累計を比較して続行を判断
		total := parseStoryCount(doc)
		if total <= len(out) {
			return out, nil
		}

		offset += cfg.PortalPageSize
	}

	warnf("presseportal: hit the page ceiling (%d pages), returning %d articles", cfg.PortalMaxPages, len(out))
	return out, nil
}

// parsePortalEntries は結果リストからエントリを抽出する
//
// カテゴリが一致しない記事、タイトルやURLが欠けている記事はここで捨てる。
func parsePortalEntries(doc *goquery.Document) []portalEntry {
	var entries []portalEntry

	doc.Find(".article-list li").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".news-headline-clamp").Text())
		ugly, ok := s.Find(".news-morelink").Attr("data-url-ugly")
		if !ok || title == "" {
			return
		}

		// 日付フィールドは "05.01.2026 – 14:32" 形式なので日付部分のみ使う
		date := strings.TrimSpace(s.Find(".news-meta .date").Text())
		date = strings.Split(date, " – ")[0]

		link := fixUglyURL(ugly)
		u, err := url.Parse(link)
		if err != nil || u.Host == "" {
			return
		}

		// パスの先頭セグメントで警察・消防カテゴリに絞る
		segments := strings.Split(strings.TrimPrefix(u.Path, "/"), "/")
		if len(segments) == 0 || segments[0] != portalCategory {
			return
		}

		entries = append(entries, portalEntry{title: title, link: link, date: date})
	})

	return entries
}

// enrichPortalEntries はエントリごとに詳細ページの地名抽出と
// ジオコーディングを並行実行し、正規化済みのArticleを返す
//
// 各ゴルーチンは自分のインデックスにのみ書き込むため、ロックは不要。
func (p *Pipeline) enrichPortalEntries(ctx context.Context, entries []portalEntry) []Article {
	articles := make([]Article, len(entries))

	var g errgroup.Group
	for i, e := range entries {
		i, e := i, e
		g.Go(func() error {
			standort := fetchPortalLocation(ctx, e.link, p.cfg)
			geo := GeoResult{}
			if standort != "Unbekannt" {
				geo = p.geo.Locate(ctx, standort)
			}

			articles[i] = Article{
				Titel:          e.title,
				FullArticleURL: e.link,
				Date:           e.date,
				Standort:       CleanLocation(standort),
				Latitude:       geo.Latitude,
				Longitude:      geo.Longitude,
				Bundesland:     geo.Bundesland,
				Source:         "Presseportal.de",
			}
			return nil
		})
	}
	_ = g.Wait() // ゴルーチンはエラーを返さない（各自で劣化処理済み）

	return articles
}

// fetchPortalLocation は記事詳細ページから地名を抽出する
//
// メタディスクリプション（og:description）の " (ots)" マーカー前の
// テキストが発信地。取得やパースに失敗した場合は "Unbekannt" を返し、
// 記事自体は捨てない。
func fetchPortalLocation(ctx context.Context, articleURL string, cfg SourceConfig) string {
	doc, err := fetchDoc(ctx, articleURL, cfg)
	if err != nil {
		warnf("presseportal: article %s: %v", articleURL, err)
		return "Unbekannt"
	}

	desc, ok := doc.Find(`meta[name="og:description"]`).Attr("content")
	if !ok || desc == "" {
		return "Unbekannt"
	}

	return strings.TrimSpace(strings.Split(desc, " (ots)")[0])
}

// parseStoryCount は総件数表示（".filter-storycount"、例: "123 Treffer"）から
// 件数を読み取る。読めない場合は0（＝これ以上のページングを止める）。
func parseStoryCount(doc *goquery.Document) int {
	text := strings.TrimSpace(doc.Find(".filter-storycount").Text())
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
