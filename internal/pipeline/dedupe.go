// =============================================================================
// dedupe.go - 記事の重複除去
// =============================================================================
package pipeline

// Dedupe は(URL, タイトル)の組で記事の重複を除去する
//
// 同じ記事が複数ソースから異なるURLで届くことがあるため、URLだけでは
// 足りず、タイトルだけでは別記事の同名タイトルを巻き込むことがある。
// 組み合わせをキーにすることで両方を避ける。
//
// 最初の出現を残し（安定）、元のスライスは変更しない。計算量はO(n)。
func Dedupe(articles []Article) []Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]Article, 0, len(articles))

	for _, a := range articles {
		key := a.FullArticleURL + "\x00" + a.Titel
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
