// internal/game/scoring.go
package game

// ScorePolicy は試行結果をポイントとCO2削減量に変換する純粋なポリシーです。
// 値はconfigから注入されます (デフォルト: 10点 / 0.05kg)。
type ScorePolicy struct {
	PointsPerItem int
	Co2PerItem    float64
}

// Score は正解確定1件のスコアを返します。
// 同一アイテムを1回でも外した後の正解は0点・CO2加算なし。
// 部分点やマイナス点はありません。
func (p ScorePolicy) Score(missed bool) (points int, co2 float64) {
	if missed {
		return 0, 0
	}
	return p.PointsPerItem, p.Co2PerItem
}
