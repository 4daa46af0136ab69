// =============================================================================
// news.go - キャッシュ済みニュースのマージ
// =============================================================================
//
// 定期収集が3つのコレクションに溜めたNewsItemをひとつのリストに
// まとめる（トップページのニュース欄用）。
//
// 【マージ規約】
//   - 3コレクションを News.API → News.DATA → News.Mediastack の順で連結
//   - タイトルで重複除去（後勝ち: 後から読んだコレクションが上書きする）
//   - 公開日時の新しい順にソート（安定ソート）。日時がパースできない
//     項目同士は等しいとみなし、相対順序を保つ
//
// =============================================================================
package pipeline

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// newsDataLayout はnewsdata.ioのpubDate形式（"2026-01-05 14:32:00"）
const newsDataLayout = "2006-01-02 15:04:05"

// normalizeNewsDate は3種類の綴りの公開日時からソート用の時刻を得る。
// どのフィールドも埋まっていない、またはパースできない場合はゼロ値。
func normalizeNewsDate(item NewsItem) time.Time {
	switch {
	case item.PublishedAt != "":
		if t, err := time.Parse(time.RFC3339, item.PublishedAt); err == nil {
			return t
		}
	case item.PubDate != "":
		// スペース区切りをRFC3339風に直してからパースする
		if t, err := time.Parse(newsDataLayout, item.PubDate); err == nil {
			return t
		}
		if t, err := time.Parse(time.RFC3339, strings.Replace(item.PubDate, " ", "T", 1)); err == nil {
			return t
		}
	case item.PublishedAtAPI != "":
		if t, err := time.Parse(time.RFC3339, item.PublishedAtAPI); err == nil {
			return t
		}
	}
	return time.Time{}
}

// MergeCachedNews は3コレクションを読み出してマージ済みリストを返す
//
// コレクションの読み出しは並行で行うが、連結順序は固定
// （News.API → News.DATA → News.Mediastack）。
func MergeCachedNews(ctx context.Context, store ArticleStore) ([]NewsItem, error) {
	slots := make([][]NewsItem, len(Collections))

	g, ctx := errgroup.WithContext(ctx)
	for i, collection := range Collections {
		i, collection := i, collection
		g.Go(func() error {
			items, err := store.ReadAll(ctx, collection)
			if err != nil {
				return err
			}
			slots[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var combined []NewsItem
	for _, s := range slots {
		combined = append(combined, s...)
	}

	return mergeNews(combined), nil
}

// mergeNews はタイトル重複の除去（後勝ち）と日時降順ソートを行う
func mergeNews(items []NewsItem) []NewsItem {
	// 後勝ち: 同じタイトルは最後の出現が位置ごと採用される
	index := make(map[string]int, len(items))
	var unique []NewsItem
	for _, item := range items {
		if pos, ok := index[item.Title]; ok {
			unique[pos] = item
			continue
		}
		index[item.Title] = len(unique)
		unique = append(unique, item)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		a, b := normalizeNewsDate(unique[i]), normalizeNewsDate(unique[j])
		// パース不能（ゼロ値）が絡む比較は等しい扱い
		if a.IsZero() || b.IsZero() {
			return false
		}
		return a.After(b)
	})

	return unique
}
