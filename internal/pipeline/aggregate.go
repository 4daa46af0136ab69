// =============================================================================
// aggregate.go - 集約オーケストレータ
// =============================================================================
//
// 検索リクエスト1件を受け取り、選択されたソースアダプタを並行実行して
// 正規化済み記事を集め、重複除去とティーザー付与まで行う中枢。
//
// 【タイムアウト規約】
//   ソース取得とティーザー取得はひとつの締め切り（Budget、既定60秒）を
//   共有する。締め切り超過時はそれまでの結果を返しつつ、ErrTimedOutで
//   超過を区別できるようにする。
//
// 【部分失敗の扱い】
//   あるソースの失敗は警告ログにとどめ、他ソースの結果はそのまま活かす。
//   すべてのソースが失敗してもヒットゼロの正常応答になる。
//
// =============================================================================
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrTimedOut は共有締め切りの超過を示す。結果は部分的に有効。
var ErrTimedOut = errors.New("request timed out")

// sourceFetcher はソースアダプタの共通シグネチャ
type sourceFetcher func(ctx context.Context, req FetchRequest, p *Pipeline) ([]Article, error)

// Pipeline は集約処理の実行主体。設定とジオコーダを保持し、
// ソース識別子からアダプタへのレジストリを持つ。
type Pipeline struct {
	cfg     SourceConfig
	geo     *Geocoder
	sources map[string]sourceFetcher

	// TeaserLimit はティーザーを付与する記事の最大数
	TeaserLimit int
	// Budget はAggregate呼び出し1回の壁時計タイムアウト
	Budget time.Duration
}

// NewPipeline は既定のソースレジストリを持つPipelineを作る
//
// レジストリはテストから差し替えられる（RegisterSource参照）。
func NewPipeline(cfg SourceConfig) *Pipeline {
	p := &Pipeline{
		cfg:         cfg,
		geo:         NewGeocoder(cfg),
		TeaserLimit: DefaultTeaserLimit,
		Budget:      FetchBudget,
	}
	p.sources = map[string]sourceFetcher{
		"presseportal": fetchArticlesFromPresseportal,
		"berlin":       fetchArticlesFromBerlin,
		"greenpeace":   fetchArticlesFromGreenpeace,
		"mediastack":   fetchArticlesFromMediastack,
	}
	return p
}

// RegisterSource はアダプタを登録（または差し替え）する
func (p *Pipeline) RegisterSource(name string, fn sourceFetcher) {
	p.sources[name] = fn
}

// validate はリクエストの形式チェックを行う
func (p *Pipeline) validate(req *FetchRequest) error {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if _, err := parseDisplayDate(req.StartDate); err != nil {
		return fmt.Errorf("startDate %q: expected DD.MM.YYYY", req.StartDate)
	}
	if _, err := parseDisplayDate(req.EndDate); err != nil {
		return fmt.Errorf("endDate %q: expected DD.MM.YYYY", req.EndDate)
	}
	if len(req.Sources) == 0 {
		return fmt.Errorf("at least one source is required (known: %s)", strings.Join(p.knownSources(), ", "))
	}
	for _, s := range req.Sources {
		if _, ok := p.sources[s]; !ok {
			return fmt.Errorf("unknown source %q (known: %s)", s, strings.Join(p.knownSources(), ", "))
		}
	}
	return nil
}

// knownSources はレジストリのキーをソートして返す（エラーメッセージ用）
func (p *Pipeline) knownSources() []string {
	names := make([]string, 0, len(p.sources))
	for name := range p.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Aggregate は検索リクエストを実行して集約結果を返す
//
// 戻り値の並び順はリクエストのソース順、ソース内は取得順。
// ヒットゼロは正常（Summary=nil, Articles=空スライス）。
// 締め切り超過時は部分結果とともにErrTimedOutを返す。
func (p *Pipeline) Aggregate(ctx context.Context, req FetchRequest) (AggregationResult, error) {
	if err := p.validate(&req); err != nil {
		return AggregationResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.Budget)
	defer cancel()

	// ソースごとに結果スロットを確保し、並行実行する。
	// 各ゴルーチンは自分のスロットにのみ書くためロック不要。
	slots := make([][]Article, len(req.Sources))
	var g errgroup.Group
	for i, name := range req.Sources {
		i, name := i, name
		fetch := p.sources[name]
		g.Go(func() error {
			articles, err := fetch(ctx, req, p)
			if err != nil {
				// 部分結果は有効なまま警告にとどめる
				warnf("source %s: %v", name, err)
			}
			slots[i] = articles
			return nil
		})
	}
	_ = g.Wait()

	var combined []Article
	for _, s := range slots {
		combined = append(combined, s...)
	}
	combined = Dedupe(combined)

	result := AggregationResult{Articles: combined}
	if result.Articles == nil {
		result.Articles = []Article{}
	}

	if len(combined) > 0 {
		items := buildTeaserItems(combined, p.TeaserLimit)
		p.enrichTeasers(ctx, items)
		result.Summary = items
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result, ErrTimedOut
	}
	return result, nil
}
