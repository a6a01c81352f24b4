package game

import (
	"testing"

	"ecoguide/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- テストヘルパー: K件のカタログを生成 ---
func makeItems(tags ...string) []model.WasteItem {
	items := make([]model.WasteItem, 0, len(tags))
	for i, tag := range tags {
		items = append(items, model.WasteItem{
			WasteID: uuid.New(),
			Name:    "item" + string(rune('A'+i)),
			BinTag:  tag,
		})
	}
	return items
}

func TestNewRound(t *testing.T) {
	tests := []struct {
		name    string
		items   []model.WasteItem
		wantErr error
	}{
		{
			name:    "正常系: 1件以上のカタログでラウンド開始",
			items:   makeItems(model.BinYellow, model.BinBlue),
			wantErr: nil,
		},
		{
			name:    "異常系: 空のカタログはErrInvalidCatalog",
			items:   []model.WasteItem{},
			wantErr: model.ErrInvalidCatalog,
		},
		{
			name:    "異常系: nilカタログもErrInvalidCatalog",
			items:   nil,
			wantErr: model.ErrInvalidCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewRound(tt.items, 0, 0, 0)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, r)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 0, r.Cursor())
			assert.False(t, r.AwaitingAdvance())
			assert.Equal(t, tt.items[0].WasteID, r.Current().WasteID)
		})
	}
}

func TestRound_Evaluate(t *testing.T) {
	t.Run("正常系: 一発正解", func(t *testing.T) {
		r, err := NewRound(makeItems(model.BinYellow), 0, 0, 0)
		require.NoError(t, err)

		correct, firstTry, err := r.Evaluate(model.BinYellow)
		require.NoError(t, err)
		assert.True(t, correct)
		assert.True(t, firstTry)
		// Commitまでは遷移しない
		assert.False(t, r.AwaitingAdvance())
	})

	t.Run("正常系: 誤答後の正解はfirstTry=false", func(t *testing.T) {
		r, err := NewRound(makeItems(model.BinGreen), 0, 0, 0)
		require.NoError(t, err)

		correct, firstTry, err := r.Evaluate(model.BinBlue)
		require.NoError(t, err)
		assert.False(t, correct)
		assert.True(t, firstTry)

		correct, firstTry, err = r.Evaluate(model.BinGreen)
		require.NoError(t, err)
		assert.True(t, correct)
		assert.False(t, firstTry)
	})

	t.Run("異常系: AwaitingAdvance中の送信はErrStaleAttempt", func(t *testing.T) {
		r, err := NewRound(makeItems(model.BinYellow), 0, 0, 0)
		require.NoError(t, err)

		correct, _, err := r.Evaluate(model.BinYellow)
		require.NoError(t, err)
		require.True(t, correct)
		r.Commit(10, 0.05)

		_, _, err = r.Evaluate(model.BinYellow)
		assert.ErrorIs(t, err, model.ErrStaleAttempt)
	})

	t.Run("正常系: 永続化失敗後の再送信は同じ評価になる", func(t *testing.T) {
		r, err := NewRound(makeItems(model.BinYellow), 0, 0, 0)
		require.NoError(t, err)

		// 1回目の評価 (永続化が失敗した想定なのでCommitしない)
		correct, firstTry, err := r.Evaluate(model.BinYellow)
		require.NoError(t, err)
		assert.True(t, correct)
		assert.True(t, firstTry)

		// 再送信しても状態は変わっていない
		correct, firstTry, err = r.Evaluate(model.BinYellow)
		require.NoError(t, err)
		assert.True(t, correct)
		assert.True(t, firstTry)
	})
}

func TestRound_Advance(t *testing.T) {
	t.Run("異常系: Presenting中のAdvanceはErrStaleAttempt", func(t *testing.T) {
		r, err := NewRound(makeItems(model.BinYellow, model.BinBlue), 0, 0, 0)
		require.NoError(t, err)

		_, err = r.Advance()
		assert.ErrorIs(t, err, model.ErrStaleAttempt)
		assert.Equal(t, 0, r.Cursor())
	})

	t.Run("正常系: K回のAdvanceでcursorが0に戻る(巡回プール)", func(t *testing.T) {
		items := makeItems(model.BinYellow, model.BinBlue, model.BinGreen)
		r, err := NewRound(items, 0, 0, 0)
		require.NoError(t, err)
		require.Equal(t, len(items), r.Len())

		for i := 0; i < len(items); i++ {
			correct, _, err := r.Evaluate(items[r.Cursor()].BinTag)
			require.NoError(t, err)
			require.True(t, correct)
			r.Commit(10, 0.05)

			next, err := r.Advance()
			require.NoError(t, err)
			assert.Equal(t, items[(i+1)%len(items)].WasteID, next.WasteID)
		}
		assert.Equal(t, 0, r.Cursor())
	})

	t.Run("正常系: AdvanceでmissedCurrentがクリアされる", func(t *testing.T) {
		r, err := NewRound(makeItems(model.BinYellow, model.BinYellow), 0, 0, 0)
		require.NoError(t, err)

		// 1件目: 外してから正解
		_, _, err = r.Evaluate(model.BinGrey)
		require.NoError(t, err)
		correct, firstTry, err := r.Evaluate(model.BinYellow)
		require.NoError(t, err)
		require.True(t, correct)
		require.False(t, firstTry)
		r.Commit(0, 0)

		_, err = r.Advance()
		require.NoError(t, err)

		// 2件目: 前のアイテムのミスは引き継がない
		correct, firstTry, err = r.Evaluate(model.BinYellow)
		require.NoError(t, err)
		assert.True(t, correct)
		assert.True(t, firstTry)
	})
}

func TestRound_Commit(t *testing.T) {
	r, err := NewRound(makeItems(model.BinYellow), 100, 1.5, 3)
	require.NoError(t, err)

	correct, _, err := r.Evaluate(model.BinYellow)
	require.NoError(t, err)
	require.True(t, correct)
	r.Commit(10, 0.05)

	points, co2, count := r.Totals()
	assert.Equal(t, 110, points)
	assert.InDelta(t, 1.55, co2, 1e-9)
	assert.Equal(t, 4, count)
	assert.True(t, r.AwaitingAdvance())
}

func TestShuffle(t *testing.T) {
	items := makeItems(
		model.BinYellow, model.BinBlue, model.BinGreen,
		model.BinGrey, model.BinSpecial,
	)
	original := make([]model.WasteItem, len(items))
	copy(original, items)

	Shuffle(items)

	// 順序は問わないが、要素集合は不変であること
	assert.ElementsMatch(t, original, items)
}
