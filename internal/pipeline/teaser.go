// =============================================================================
// teaser.go - ティーザー（記事冒頭文）の抽出
// =============================================================================
//
// 重複除去後の先頭N件について記事ページを取得し、メタタグから短い
// 説明文を抜き出してサマリーを作る。
//
// 【メタタグの優先順位】
//   1. <meta name="description">
//   2. <meta name="teaser">
//   3. <meta name="dcterms.title">
//
// 【劣化規約】
//   取得失敗・タグなし・締め切り超過はすべて「ティーザーが空文字列」に
//   収束する。ティーザーが取れないことは記事を外す理由にならない。
//
// =============================================================================
package pipeline

import (
	"context"
	"html"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ポータルのティーザー末尾に付く続きを読むマーカー
var reMehrLesen = regexp.MustCompile(`(?i)✚ Mehr lesen$`)

// teaserMetaNames は参照するメタタグ名（優先順）
var teaserMetaNames = []string{"description", "teaser", "dcterms.title"}

// buildTeaserItems は記事リストの先頭limit件からサマリー項目の骨格を作る
//
// 先頭limit件を切り出してからタイトル空の項目を落とすため、
// 結果はlimit件未満になることがある。
func buildTeaserItems(articles []Article, limit int) []TeaserItem {
	if limit > len(articles) {
		limit = len(articles)
	}

	items := make([]TeaserItem, 0, limit)
	for _, a := range articles[:limit] {
		title := strings.TrimSpace(a.Titel)
		if title == "" {
			continue
		}
		items = append(items, TeaserItem{
			Title: title,
			URL:   a.FullArticleURL,
			City:  a.Standort,
			Date:  a.Date,
		})
	}
	return items
}

// enrichTeasers は各項目の記事ページを並行取得してティーザーを埋める
//
// 全項目の完了を待つが、個々の失敗は空ティーザーになるだけで
// 全体を失敗させない。ctxはaggregate全体の締め切りを共有する。
func (p *Pipeline) enrichTeasers(ctx context.Context, items []TeaserItem) {
	var g errgroup.Group
	for i := range items {
		i := i
		g.Go(func() error {
			raw := fetchTeaser(ctx, items[i].URL, p.cfg)
			items[i].Teaser = cleanTeaser(raw)
			return nil
		})
	}
	_ = g.Wait()
}

// fetchTeaser は記事ページのメタタグからティーザー原文を取り出す。
// どんな失敗でも空文字列を返す。
func fetchTeaser(ctx context.Context, articleURL string, cfg SourceConfig) string {
	doc, err := fetchDoc(ctx, articleURL, cfg)
	if err != nil {
		return ""
	}

	for _, name := range teaserMetaNames {
		if content, ok := doc.Find(`meta[name="` + name + `"]`).Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return content
			}
		}
	}
	return ""
}

// cleanTeaser はティーザー原文を表示用に整える
// （HTMLエンティティのデコード + 末尾マーカーの除去）
func cleanTeaser(raw string) string {
	decoded := html.UnescapeString(raw)
	return strings.TrimSpace(reMehrLesen.ReplaceAllString(decoded, ""))
}
