package model

// RankingEntry はランキング1行分のDTO。
// リポジトリの集計クエリ結果とRedisキャッシュのJSON両方で使います。
type RankingEntry struct {
	Name            string  `json:"name"`
	TotalPoints     int     `json:"points"`
	TotalCo2Avoided float64 `json:"co2_avoided"`
}
