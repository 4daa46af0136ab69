// =============================================================================
// sources_html.go - HTMLスクレイピング系ソースアダプタ
// =============================================================================
//
// ページングを持たない単一ページのHTMLソースをまとめたファイル。
//
// 【収録アダプタ】
//   - berlin:     berlin.de プレスリリース検索（テーブルレイアウト）
//   - greenpeace: Greenpeace プレスポータル検索（カードレイアウト）
//
// どちらも詳細ページの追加フェッチは行わず、検索結果ページだけで
// Articleを完成させる。座標はソース特性で決まる固定値（berlin）か
// なし（greenpeace）。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// -----------------------------------------------------------------------------
// berlin.de
// -----------------------------------------------------------------------------

// ベルリン市の座標（このソースの記事はすべてベルリン発）
var (
	berlinLatitude  = 52.52
	berlinLongitude = 13.405
)

// fetchArticlesFromBerlin はberlin.deのプレスリリース検索から記事を収集する
//
// 検索フォームはISO形式の期間パラメータを受け付けるが、サーバー側の
// 絞り込みを信用せず、取得後にもう一度期間でフィルタする。
func fetchArticlesFromBerlin(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error) {
	cfg := p.cfg
	isoStart, isoEnd, err := isoDateRange(req)
	if err != nil {
		return nil, err
	}
	start, _ := parseDisplayDate(req.StartDate)
	end, _ := parseDisplayDate(req.EndDate)

	searchURL := fmt.Sprintf("%s?searchtext=%s&boolean=0&startdate=%s&enddate=%s&bt=",
		cfg.BerlinSearchURL, url.QueryEscape(req.Query), isoStart, isoEnd)

	doc, err := fetchDoc(ctx, searchURL, cfg)
	if err != nil {
		return nil, err
	}

	var articles []Article
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		date := strings.TrimSpace(cells.Eq(0).Text())
		title := strings.TrimSpace(cells.Eq(1).Text())
		href, ok := cells.Eq(1).Find("a").Attr("href")
		if !ok || title == "" {
			return
		}

		if d, err := parseDisplayDate(date); err != nil || !withinRange(d, start, end) {
			return
		}

		articles = append(articles, Article{
			Titel:          title,
			FullArticleURL: resolveURL(cfg.BerlinSearchURL, href),
			Date:           date,
			Standort:       "Berlin",
			Latitude:       &berlinLatitude,
			Longitude:      &berlinLongitude,
			Source:         "Berlin.de",
		})
	})

	return articles, nil
}

// -----------------------------------------------------------------------------
// Greenpeace
// -----------------------------------------------------------------------------

// greenpeaceDateLayout はカードのdatetime属性の形式
const greenpeaceDateLayout = "2006-01-02"

// fetchArticlesFromGreenpeace はGreenpeaceプレスポータルから記事を収集する
//
// 検索エンドポイントは期間パラメータを持たないため、日付フィルタは
// 常にクライアント側で行う（両端含む）。日付のないカード、リンクの
// ないカードは捨てる。
func fetchArticlesFromGreenpeace(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error) {
	cfg := p.cfg
	start, err := parseDisplayDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("startDate %q: %w", req.StartDate, err)
	}
	end, err := parseDisplayDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("endDate %q: %w", req.EndDate, err)
	}

	searchURL := fmt.Sprintf("%s?q=%s", cfg.GreenpeaceSearchURL, url.QueryEscape(req.Query))

	doc, err := fetchDoc(ctx, searchURL, cfg)
	if err != nil {
		return nil, err
	}

	var articles []Article
	doc.Find(".article__item").Each(func(_ int, card *goquery.Selection) {
		raw, _ := card.Find("time.c-card__time").Attr("datetime")
		d, err := time.Parse(greenpeaceDateLayout, strings.TrimSpace(raw))
		if err != nil {
			return
		}
		if !withinRange(d, start, end) {
			return
		}

		title := strings.TrimSpace(card.Find("h3.article__title a").Text())
		href, _ := card.Find("a.article__img-holder").Attr("href")
		link := resolveURL(cfg.GreenpeaceSearchURL, href)
		if title == "" || link == "" {
			return
		}

		articles = append(articles, Article{
			Titel:          title,
			FullArticleURL: link,
			Date:           d.Format(DisplayDateFormat),
			Standort:       "Ohne Angabe",
			Source:         "Greenpeace",
		})
	})

	return articles, nil
}
