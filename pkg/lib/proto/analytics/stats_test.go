package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testView(recv, sent string) *StatsView {
	return &StatsView{
		Snapshot: StatSnapshot{DataReceived: recv, DataSent: sent},
		MovingAverages: MovingAverages{
			DataReceived: WindowAverages{M1: 1.5, M5: 0.5, M15: 0.25},
			DataSent:     WindowAverages{M1: 2, M5: 1, M15: 0},
		},
	}
}

func TestStatsView_JSONShape(t *testing.T) {
	data, err := json.Marshal(testView("18446744073709551615", "0"))
	require.NoError(t, err)

	want := `{"snapshot":{"dataReceived":"18446744073709551615","dataSent":"0"},` +
		`"movingAverages":{"dataReceived":{"60000":1.5,"300000":0.5,"900000":0.25},` +
		`"dataSent":{"60000":2,"300000":1,"900000":0}}}`
	assert.JSONEq(t, want, string(data))
}

func TestWindowAverages_SetGet(t *testing.T) {
	var w WindowAverages
	require.NoError(t, w.Set(60000, 1))
	require.NoError(t, w.Set(300000, 5))
	require.NoError(t, w.Set(900000, 15))
	assert.Error(t, w.Set(1000, 1))

	v, ok := w.Get(300000)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)

	_, ok = w.Get(1)
	assert.False(t, ok)
}

func TestResult_MarshalJSON(t *testing.T) {
	_, err := Result{}.MarshalJSON()
	assert.ErrorIs(t, err, ErrInvalidResult)

	_, err = Result{View: testView("1", "1"), Views: map[string]*StatsView{}}.MarshalJSON()
	assert.ErrorIs(t, err, ErrInvalidResult)

	data, err := MapResult(nil).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

func TestEncodeDecodeResults(t *testing.T) {
	results := []Result{
		MapResult(map[string]*StatsView{
			"peerB": testView("2", "3"),
			"peerA": testView("4", "5"),
		}),
		SingleResult(testView("10", "20")),
	}

	data, err := EncodeResults(results)
	require.NoError(t, err)

	again, err := EncodeResults(results)
	require.NoError(t, err)
	assert.Equal(t, data, again, "相同输入必须得到相同字节")

	raws, err := DecodeResults(data)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	m, err := raws[0].AsMap()
	require.NoError(t, err)
	assert.Equal(t, results[0].Views, m)

	v, err := raws[1].AsView()
	require.NoError(t, err)
	assert.Equal(t, results[1].View, v)
}

func TestDecodeResults_Invalid(t *testing.T) {
	raws, err := DecodeResults(nil)
	require.NoError(t, err)
	assert.Empty(t, raws)

	_, err = DecodeResults([]byte(`{"not":"array"}`))
	assert.ErrorIs(t, err, ErrInvalidResult)

	_, err = RawResult(`null`).AsMap()
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestEncodeResults_Empty(t *testing.T) {
	data, err := EncodeResults(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
