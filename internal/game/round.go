// internal/game/round.go
package game

import (
	"math/rand"

	"ecoguide/internal/model"
)

// Round は1プレイセッションのラウンド状態を表す純粋なステートマシンです。
// I/Oは一切持たず、永続化の成否は呼び出し側(service層)がCommitで反映します。
//
// 状態遷移:
//
//	Presenting --(正解+Commit)--> AwaitingAdvance --(Advance)--> Presenting(次)
//	Presenting --(誤答)--> Presenting (missedCurrent=true)
//
// cursorは末尾に達すると0に巻き戻ります。シーケンスは使い切りのリストではなく
// 巡回プールであり、ラウンドの実質的な終了条件は常にデイリークォータ側です。
type Round struct {
	sequence        []model.WasteItem
	cursor          int
	missedCurrent   bool
	awaitingAdvance bool

	// サーバー確定値のローカルキャッシュ。Commit経由でのみ更新されるため、
	// クライアントに返す値が台帳と食い違うことはありません。
	totalPoints int
	totalCo2    float64
	dailyCount  int
}

// NewRound はカタログの抽選結果からラウンドを生成します。
// 抽選が空の場合は model.ErrInvalidCatalog を返します。
// totalPoints / totalCo2 / dailyCount にはセッション開始時点の台帳の値を渡します。
func NewRound(items []model.WasteItem, totalPoints int, totalCo2 float64, dailyCount int) (*Round, error) {
	if len(items) == 0 {
		return nil, model.ErrInvalidCatalog
	}
	return &Round{
		sequence:    items,
		totalPoints: totalPoints,
		totalCo2:    totalCo2,
		dailyCount:  dailyCount,
	}, nil
}

// Current は現在提示中のアイテムを返します。
// cursorは常に 0 <= cursor < len(sequence) の範囲にあります。
func (r *Round) Current() model.WasteItem {
	return r.sequence[r.cursor]
}

func (r *Round) Len() int {
	return len(r.sequence)
}

func (r *Round) Cursor() int {
	return r.cursor
}

func (r *Round) AwaitingAdvance() bool {
	return r.awaitingAdvance
}

// Evaluate はドロップ先タグを現在のアイテムと照合します。
// AwaitingAdvance中の呼び出し(二重送信)は model.ErrStaleAttempt で拒否します。
// 誤答はmissedCurrentを立てるだけで状態はPresentingのまま。
// 正解でもここでは遷移しません。永続化成功後にCommitを呼ぶことで確定します。
// firstTry はこの試行より前に同一アイテムを外していなかったかどうかです。
func (r *Round) Evaluate(binTag string) (correct bool, firstTry bool, err error) {
	if r.awaitingAdvance {
		return false, false, model.ErrStaleAttempt
	}

	firstTry = !r.missedCurrent
	if binTag != r.Current().BinTag {
		r.missedCurrent = true
		return false, firstTry, nil
	}
	return true, firstTry, nil
}

// Commit は正解の永続化成功を反映します。AwaitingAdvanceに遷移し、
// ローカルキャッシュの累計とデイリーカウントを進めます。
func (r *Round) Commit(points int, co2 float64) {
	r.awaitingAdvance = true
	r.totalPoints += points
	r.totalCo2 += co2
	r.dailyCount++
}

// Advance は次のアイテムへ進みます。AwaitingAdvance以外での呼び出しは
// model.ErrStaleAttempt です。cursorは単調に進み、末尾で0に巻き戻ります。
func (r *Round) Advance() (model.WasteItem, error) {
	if !r.awaitingAdvance {
		return model.WasteItem{}, model.ErrStaleAttempt
	}
	r.awaitingAdvance = false
	r.missedCurrent = false
	r.cursor = (r.cursor + 1) % len(r.sequence)
	return r.Current(), nil
}

// Totals はローカルキャッシュの (累計ポイント, 累計CO2, 当日カウント) を返します。
func (r *Round) Totals() (int, float64, int) {
	return r.totalPoints, r.totalCo2, r.dailyCount
}

// Shuffle はカタログの抽選順をその場でシャッフルします。
func Shuffle(items []model.WasteItem) {
	rand.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
