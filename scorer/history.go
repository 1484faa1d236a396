package scorer

import "github.com/rushteam/homerec/embedding"

// HistoryBoost 对浏览历史中的商品做线性近因加权（原地修改 scores）。
//
// history 按最近优先排列，位置 i 的商品加 w * (1 - i/len(history))：
// 最近浏览的得全部权重，最早的趋近于 0。Store 中不存在的 ID 被跳过。
// 返回实际命中的历史条数。
func HistoryBoost(scores []float64, store *embedding.Store, history []string, w float64) int {
	n := len(history)
	if n == 0 || store == nil {
		return 0
	}
	hits := 0
	for i, id := range history {
		idx, ok := store.Lookup(id)
		if !ok || idx >= len(scores) {
			continue
		}
		scores[idx] += w * (1 - float64(i)/float64(n))
		hits++
	}
	return hits
}
