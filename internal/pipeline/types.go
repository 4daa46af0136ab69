// =============================================================================
// types.go - データ構造定義
// =============================================================================
//
// このファイルはPresse Radarシステム全体で使用するデータ構造（型）を定義します。
//
// 【このファイルで定義している型】
//   - Article:           正規化された記事（全ソース共通の形）
//   - TeaserItem:        ティーザー付きのサマリー項目
//   - FetchRequest:      検索リクエスト（クエリ + 期間 + ソース選択）
//   - AggregationResult: 集約結果（記事リスト + サマリー）
//   - NewsItem:          ニュースAPIキャッシュのドキュメント
//   - PollItem:          世論調査RSSフィードの項目
//
// 【初心者向けポイント】
//   - `json:"フィールド名"`はJSONに変換する際のキー名を指定するタグ
//   - JSONキー（titel, fullArticleURL, standort, bundesland）は
//     フロントエンドとの互換性のため既存のAPI形式をそのまま維持している
//   - ポインタ型（*float64）はJSONのnullを表現するために使用
//
// =============================================================================
package pipeline

// DisplayDateFormat は記事日付の表示フォーマット（例: "05.01.2026"）
const DisplayDateFormat = "02.01.2006"

// ISODateFormat は検索URLに使用する日付フォーマット（例: "2026-01-05"）
const ISODateFormat = "2006-01-02"

// -----------------------------------------------------------------------------
// Article - 正規化された記事
// -----------------------------------------------------------------------------
//
// 各ソースアダプタが取得時に生成する全ソース共通の記事形式。
// 生成後は不変であり、後段（dedupe, teaser）は記事を変更しない。
//
// 【フィールドの説明】
//   Titel:          記事タイトル（トリム済み、空でない）
//   FullArticleURL: 記事の絶対URL（常に存在する）
//   Date:           表示形式の日付（"DD.MM.YYYY"）
//   Standort:       地名（ソースによっては "Berlin" 固定や "Ohne Angabe"）
//   Latitude:       緯度（ジオコーディング失敗時は null）
//   Longitude:      経度（同上）
//   Bundesland:     連邦州（同上）
//   Source:         ソース識別名（例: "Presseportal.de"）
//
type Article struct {
	Titel          string   `json:"titel"`                // 記事タイトル
	FullArticleURL string   `json:"fullArticleURL"`       // 記事の絶対URL
	Date           string   `json:"date"`                 // 日付（DD.MM.YYYY）
	Standort       string   `json:"standort,omitempty"`   // 地名
	Latitude       *float64 `json:"latitude"`             // 緯度（null可）
	Longitude      *float64 `json:"longitude"`            // 経度（null可）
	Bundesland     *string  `json:"bundesland,omitempty"` // 連邦州（null可）
	Source         string   `json:"source"`               // ソース識別名
}

// -----------------------------------------------------------------------------
// TeaserItem - ティーザー付きサマリー項目
// -----------------------------------------------------------------------------
//
// 重複除去後の先頭N件（デフォルト10件）について、記事自身のページから
// 抽出した短い説明文（teaser）を付与したもの。Articleとは別のリストとして
// 返され、元のArticleは変更されない。
//
type TeaserItem struct {
	Title  string `json:"title"`  // 記事タイトル
	Teaser string `json:"teaser"` // 抽出されたティーザー（失敗時は空文字列）
	URL    string `json:"url"`    // 記事URL
	City   string `json:"city"`   // 地名（ArticleのStandort）
	Date   string `json:"date"`   // 日付
}

// -----------------------------------------------------------------------------
// FetchRequest - 検索リクエスト
// -----------------------------------------------------------------------------
//
// aggregate呼び出し1回分の入力。
//
// 【バリデーション】
//   - Query はトリム後に空でないこと
//   - StartDate / EndDate は "DD.MM.YYYY" 形式でパース可能なこと
//   - Sources は既知のアダプタ識別子のみを含むこと（空は不正）
//   - StartDate <= EndDate は呼び出し側の責任（ここでは並べ替えない）
//
type FetchRequest struct {
	Query     string   `json:"query"`     // 検索語
	StartDate string   `json:"startDate"` // 期間開始（DD.MM.YYYY、両端含む）
	EndDate   string   `json:"endDate"`   // 期間終了（DD.MM.YYYY、両端含む）
	Sources   []string `json:"sources"`   // ソース識別子（presseportal, berlin, greenpeace, mediastack）
}

// -----------------------------------------------------------------------------
// AggregationResult - 集約結果
// -----------------------------------------------------------------------------
//
// 【順序について】
//   Articles はソート済みではない。並び順は選択されたソースの順序で、
//   ソース内は取得順。日付ソートは表示側の責務。
//
// 【空の結果】
//   ヒットなしは正常な結果であり、{summary: null, articles: []} を返す。
//
type AggregationResult struct {
	Summary  []TeaserItem `json:"summary"`  // ティーザーリスト（記事ゼロ件時はnull）
	Articles []Article    `json:"articles"` // 重複除去済みの記事リスト
}

// -----------------------------------------------------------------------------
// NewsItem - ニュースAPIキャッシュのドキュメント
// -----------------------------------------------------------------------------
//
// 定期ジョブ（cmd/lambda/collect）が外部ニュースAPIから取得し、
// ArticleStoreに追記するドキュメント。APIごとに日付フィールドの綴りが
// 異なるため、3種類すべてを保持する（news.goのnormalizeNewsDate参照）。
//
type NewsItem struct {
	Title          string `json:"title"`                  // 記事タイトル
	URL            string `json:"url,omitempty"`          // 記事URL（NewsAPI / Mediastack）
	Link           string `json:"link,omitempty"`         // 記事URL（newsdata.io）
	Source         string `json:"source,omitempty"`       // ソース名
	Description    string `json:"description,omitempty"`  // 記事の説明
	PublishedAt    string `json:"publishedAt,omitempty"`  // 公開日時（NewsAPI形式）
	PubDate        string `json:"pubDate,omitempty"`      // 公開日時（newsdata.io形式、"2006-01-02 15:04:05"）
	PublishedAtAPI string `json:"published_at,omitempty"` // 公開日時（Mediastack形式）
	Image          string `json:"image,omitempty"`        // サムネイル画像URL（Mediastack）
}

// ResolveURL は記事URLを返す。APIによってフィールドが異なるため、
// url → link の順で最初に埋まっているものを使う。
func (n NewsItem) ResolveURL() string {
	if n.URL != "" {
		return n.URL
	}
	return n.Link
}

// PublishedRaw は公開日時の生文字列を返す。3種類の綴りのうち
// 最初に埋まっているものを使う（正規化はnormalizeNewsDate参照）。
func (n NewsItem) PublishedRaw() string {
	switch {
	case n.PublishedAt != "":
		return n.PublishedAt
	case n.PubDate != "":
		return n.PubDate
	default:
		return n.PublishedAtAPI
	}
}

// -----------------------------------------------------------------------------
// PollItem - 世論調査フィードの項目
// -----------------------------------------------------------------------------
//
// DAWUMのRSSフィードから取得した世論調査の項目（umfragenページ用）。
//
type PollItem struct {
	Title     string `json:"title"`               // 調査タイトル
	Link      string `json:"link"`                // 調査詳細のURL
	Published string `json:"published,omitempty"` // 公開日時（フィード記載のまま）
}

// mediastackResponse は Mediastack News API のレスポンス形式
type mediastackResponse struct {
	Data []struct {
		Title       string  `json:"title"`
		URL         string  `json:"url"`
		Source      string  `json:"source"`
		Image       *string `json:"image"` // 定期収集でのフィルタ条件（null=画像なし）
		PublishedAt string  `json:"published_at"`
	} `json:"data"`
}

// newsDataResponse は newsdata.io のレスポンス形式
type newsDataResponse struct {
	Results []NewsItem `json:"results"`
}

// newsAPIResponse は NewsAPI (newsapi.org) のレスポンス形式
type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// geocodeResponse は Open-Meteo Geocoding API のレスポンス形式
type geocodeResponse struct {
	Results []struct {
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		CountryCode string  `json:"country_code"`
		Admin1      string  `json:"admin1"` // 連邦州（Bundesland）
	} `json:"results"`
}
