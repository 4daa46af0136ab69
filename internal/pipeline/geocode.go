// =============================================================================
// geocode.go - ジオコーディングクライアント
// =============================================================================
//
// Open-Meteo Geocoding APIをラップし、地名から座標と連邦州を引く。
//
// 【契約】
//   - 呼び出し前にCleanLocationで地名を正規化する
//   - ドイツ国内（country_code == "DE"）の候補のみ採用し、最初の一致を返す
//   - ネットワーク/パースエラー、候補ゼロ件はすべて「全null」の結果になる。
//     エラーは返さない。呼び出し側はnull座標を「付加情報なし」として扱う
//
// =============================================================================
package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"sync"
)

// GeoResult はジオコーディングの結果。失敗時はすべてnil。
type GeoResult struct {
	Latitude   *float64
	Longitude  *float64
	Bundesland *string
}

// Geocoder はOpen-Meteo Geocoding APIのクライアント。
// 同一リクエスト内で同じ都市が何度も出てくるため、
// 正規化済み地名をキーにした小さなキャッシュを持つ。
type Geocoder struct {
	cfg SourceConfig

	mu    sync.Mutex
	cache map[string]GeoResult
}

// NewGeocoder は設定を注入してGeocoderを作成する
func NewGeocoder(cfg SourceConfig) *Geocoder {
	return &Geocoder{
		cfg:   cfg,
		cache: make(map[string]GeoResult),
	}
}

// Locate は地名をジオコーディングして座標と連邦州を返す
//
// 候補は最大10件、ドイツ語で問い合わせる。どんな失敗でも全nullの
// GeoResultを返し、エラーは呼び出し側に伝播させない（ログのみ）。
func (g *Geocoder) Locate(ctx context.Context, place string) GeoResult {
	cleaned := CleanLocation(place)
	if cleaned == "" {
		return GeoResult{}
	}

	g.mu.Lock()
	if cached, ok := g.cache[cleaned]; ok {
		g.mu.Unlock()
		return cached
	}
	g.mu.Unlock()

	result := g.lookup(ctx, cleaned)

	g.mu.Lock()
	g.cache[cleaned] = result
	g.mu.Unlock()

	return result
}

// lookup はAPIへの実際の問い合わせを行う
func (g *Geocoder) lookup(ctx context.Context, name string) GeoResult {
	apiURL := fmt.Sprintf("%s?name=%s&count=10&language=de&format=json",
		g.cfg.GeocodeBaseURL, url.QueryEscape(name))

	var res geocodeResponse
	if err := httpGetJSON(ctx, apiURL, g.cfg, &res); err != nil {
		warnf("geocoding %q: %v", name, err)
		return GeoResult{}
	}

	// ドイツ国内の候補のみ採用し、最初の一致を使う
	for _, c := range res.Results {
		if c.CountryCode != "DE" {
			continue
		}
		lat, lon, land := c.Latitude, c.Longitude, c.Admin1
		return GeoResult{Latitude: &lat, Longitude: &lon, Bundesland: &land}
	}

	return GeoResult{}
}
