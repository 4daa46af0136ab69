// =============================================================================
// sources_rss.go - 世論調査RSSフィード
// =============================================================================
package pipeline

import (
	"context"

	"github.com/mmcdole/gofeed"
)

// FetchPolls はDAWUMの世論調査RSSフィードを取得してPollItemのリストを返す
//
// フィードの並び順（新しい順）をそのまま維持する。公開日時は
// フィード記載の文字列のまま渡し、パースは表示側に任せる。
func FetchPolls(ctx context.Context, cfg SourceConfig) ([]PollItem, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = cfg.UserAgent
	parser.Client = cfg.Client

	feed, err := parser.ParseURLWithContext(cfg.PollFeedURL, ctx)
	if err != nil {
		return nil, err
	}

	polls := make([]PollItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" {
			continue
		}
		polls = append(polls, PollItem{
			Title:     item.Title,
			Link:      item.Link,
			Published: item.Published,
		})
	}
	return polls, nil
}
