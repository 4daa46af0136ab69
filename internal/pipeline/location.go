// =============================================================================
// location.go - 地名の正規化
// =============================================================================
//
// ジオコーディングの前に、ポータルの記事から抽出した自由記述の地名を
// 検索しやすい形に整える。純粋関数でI/Oなし。
//
// =============================================================================
package pipeline

import (
	"regexp"
	"strings"
)

var (
	// "Landkreise Musterkreis" のような郡表記から郡名を取り出す
	reLandkreis = regexp.MustCompile(`Landkreise\s+(\w+)`)
	// 地名の区切り文字（"Berlin, Deutschland" / "Frankfurt/Main" / "Neustadt-Süd"）
	reLocationSplit = regexp.MustCompile(`[,/\-]`)
)

// CleanLocation は自由記述の地名から検索可能な地名を抽出する
//
// ルール（上から順に適用）:
//  1. "Landkreise X" を含む場合はXを返す
//  2. "Frankfurt/Main" を含む場合は正規形 "Frankfurt am Main" を返す
//  3. それ以外は "," "/" "-" で分割した最初の要素をトリムして返す
//
// 失敗モードはない。常に文字列（空の可能性あり）を返す。
func CleanLocation(raw string) string {
	if strings.Contains(raw, "Landkreise") {
		if m := reLandkreis.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}

	if strings.Contains(raw, "Frankfurt/Main") {
		return "Frankfurt am Main"
	}

	return strings.TrimSpace(reLocationSplit.Split(raw, 2)[0])
}
