// =============================================================================
// store.go - ニュースキャッシュの永続化（ArticleStore）
// =============================================================================
//
// 定期収集フェッチャーが取得したNewsItemをコレクション単位で保存する層。
//
// 【実装】
//   - FileStore:   ローカルJSONファイル（コレクションごとに1ファイル）。
//                  CLI実行とテストで使う。
//   - NotionStore: Notionデータベース（コレクションごとに1 DB）。
//                  収集結果をワークスペースに残したい場合に使う。
//
// 【コレクション】
//   News.API / News.DATA / News.Mediastack の3つ。名前は取得元APIに
//   対応しており、news.goのマージ処理が3つとも読み出す。
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jomei/notionapi"
)

// ニュースキャッシュのコレクション名
const (
	CollectionNewsAPI    = "News.API"
	CollectionNewsData   = "News.DATA"
	CollectionMediastack = "News.Mediastack"
)

// Collections は既知のコレクション名（マージと削除ジョブが列挙に使う）
var Collections = []string{CollectionNewsAPI, CollectionNewsData, CollectionMediastack}

// ArticleStore はニュースキャッシュの保存先
type ArticleStore interface {
	// Append はコレクションに項目を追記する
	Append(ctx context.Context, collection string, items []NewsItem) error
	// ReadAll はコレクションの全項目を返す（存在しないコレクションは空）
	ReadAll(ctx context.Context, collection string) ([]NewsItem, error)
	// Drop はコレクションの全項目を削除する
	Drop(ctx context.Context, collection string) error
}

// -----------------------------------------------------------------------------
// FileStore
// -----------------------------------------------------------------------------

// FileStore はコレクションごとに1つのJSONファイルへ保存するArticleStore
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore は保存先ディレクトリを作成してFileStoreを返す
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Append は既存項目を読み込んでから末尾に追記して書き戻す
func (s *FileStore) Append(_ context.Context, collection string, items []NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read(collection)
	if err != nil {
		return err
	}
	return WriteJSONFile(s.path(collection), append(existing, items...))
}

// ReadAll はコレクションの全項目を返す。ファイルがなければ空スライス。
func (s *FileStore) ReadAll(_ context.Context, collection string) ([]NewsItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(collection)
}

func (s *FileStore) read(collection string) ([]NewsItem, error) {
	var items []NewsItem
	err := ReadJSONFile(s.path(collection), &items)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Drop はコレクションのファイルを削除する。存在しなければ何もしない。
func (s *FileStore) Drop(_ context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(collection))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// -----------------------------------------------------------------------------
// NotionStore
// -----------------------------------------------------------------------------

// NotionStore はコレクションごとのNotionデータベースへ保存するArticleStore
//
// データベースは Title(タイトル) / URL(URL) / Source(セレクト) /
// Published(リッチテキスト) のプロパティを持つ前提。
type NotionStore struct {
	client *notionapi.Client
	dbIDs  map[string]notionapi.DatabaseID
}

// NewNotionStore はトークンとコレクション→データベースIDの対応表から
// NotionStoreを作る
func NewNotionStore(token string, dbIDs map[string]string) (*NotionStore, error) {
	if token == "" {
		return nil, fmt.Errorf("NOTION_TOKEN is required")
	}

	ids := make(map[string]notionapi.DatabaseID, len(dbIDs))
	for collection, id := range dbIDs {
		if id != "" {
			ids[collection] = notionapi.DatabaseID(id)
		}
	}

	return &NotionStore{
		client: notionapi.NewClient(notionapi.Token(token)),
		dbIDs:  ids,
	}, nil
}

func (s *NotionStore) database(collection string) (notionapi.DatabaseID, error) {
	id, ok := s.dbIDs[collection]
	if !ok {
		return "", fmt.Errorf("no Notion database configured for collection %q", collection)
	}
	return id, nil
}

// Append は項目ごとにページを作成する。途中で失敗した項目は警告に
// とどめ、残りの項目を続行する。
func (s *NotionStore) Append(ctx context.Context, collection string, items []NewsItem) error {
	dbID, err := s.database(collection)
	if err != nil {
		return err
	}

	var failed int
	for _, item := range items {
		if err := s.createPage(ctx, dbID, item); err != nil {
			warnf("notion: %s: %v", item.Title, err)
			failed++
		}
	}
	if failed == len(items) && len(items) > 0 {
		return fmt.Errorf("notion: all %d page creations failed", failed)
	}
	return nil
}

func (s *NotionStore) createPage(ctx context.Context, dbID notionapi.DatabaseID, item NewsItem) error {
	properties := notionapi.Properties{
		"Title": notionapi.TitleProperty{
			Type: notionapi.PropertyTypeTitle,
			Title: []notionapi.RichText{
				{Text: &notionapi.Text{Content: item.Title}},
			},
		},
		"URL": notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  item.ResolveURL(),
		},
	}
	if item.Source != "" {
		properties["Source"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: item.Source},
		}
	}
	if published := item.PublishedRaw(); published != "" {
		properties["Published"] = notionapi.RichTextProperty{
			Type: notionapi.PropertyTypeRichText,
			RichText: []notionapi.RichText{
				{Text: &notionapi.Text{Content: published}},
			},
		}
	}

	_, err := s.client.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: dbID,
		},
		Properties: properties,
	})
	return err
}

// ReadAll はデータベースをページングしながら全件読み出す
func (s *NotionStore) ReadAll(ctx context.Context, collection string) ([]NewsItem, error) {
	dbID, err := s.database(collection)
	if err != nil {
		return nil, err
	}

	var items []NewsItem
	var cursor notionapi.Cursor
	for {
		resp, err := s.client.Database.Query(ctx, dbID, &notionapi.DatabaseQueryRequest{
			StartCursor: cursor,
			PageSize:    100,
		})
		if err != nil {
			return nil, err
		}

		for _, page := range resp.Results {
			items = append(items, newsItemFromPage(page))
		}

		if !resp.HasMore {
			return items, nil
		}
		cursor = resp.NextCursor
	}
}

// newsItemFromPage はNotionページのプロパティをNewsItemに戻す
func newsItemFromPage(page notionapi.Page) NewsItem {
	var item NewsItem

	if prop, ok := page.Properties["Title"].(*notionapi.TitleProperty); ok && len(prop.Title) > 0 {
		item.Title = prop.Title[0].PlainText
	}
	if prop, ok := page.Properties["URL"].(*notionapi.URLProperty); ok {
		item.URL = prop.URL
	}
	if prop, ok := page.Properties["Source"].(*notionapi.SelectProperty); ok {
		item.Source = prop.Select.Name
	}
	if prop, ok := page.Properties["Published"].(*notionapi.RichTextProperty); ok && len(prop.RichText) > 0 {
		item.PublishedAt = prop.RichText[0].PlainText
	}

	return item
}

// Drop は全ページをアーカイブする（Notionに物理削除APIはない）
func (s *NotionStore) Drop(ctx context.Context, collection string) error {
	dbID, err := s.database(collection)
	if err != nil {
		return err
	}

	for {
		resp, err := s.client.Database.Query(ctx, dbID, &notionapi.DatabaseQueryRequest{PageSize: 100})
		if err != nil {
			return err
		}
		if len(resp.Results) == 0 {
			return nil
		}

		for _, page := range resp.Results {
			_, err := s.client.Page.Update(ctx, notionapi.PageID(page.ID), &notionapi.PageUpdateRequest{
				Archived:   true,
				Properties: notionapi.Properties{},
			})
			if err != nil {
				return err
			}
		}
		if !resp.HasMore {
			return nil
		}
	}
}
