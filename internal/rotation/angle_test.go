package rotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAngleNext(t *testing.T) {
	tests := []struct {
		name  string
		order CycleOrder
		want  []Angle
	}{
		{name: "ascending", order: CycleAscending, want: []Angle{90, 180, 270, 0}},
		{name: "descending", order: CycleDescending, want: []Angle{270, 180, 90, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Angle0
			for i, want := range tt.want {
				a = a.Next(tt.order)
				assert.Equal(t, want, a, "step %d", i+1)
			}
		})
	}
}

func TestAngleSwapsAxes(t *testing.T) {
	assert.False(t, Angle0.SwapsAxes())
	assert.True(t, Angle90.SwapsAxes())
	assert.False(t, Angle180.SwapsAxes())
	assert.True(t, Angle270.SwapsAxes())
}

func TestParseAngle(t *testing.T) {
	tests := []struct {
		in      string
		want    Angle
		wantErr bool
	}{
		{in: "0", want: Angle0},
		{in: "90", want: Angle90},
		{in: "180deg", want: Angle180},
		{in: " 270 ", want: Angle270},
		{in: "-90", want: Angle270},
		{in: "450", want: Angle90},
		{in: "45", wantErr: true},
		{in: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAngle(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidAngle)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestAngleJSON(t *testing.T) {
	var v struct {
		Angle Angle `json:"angle"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"angle":270}`), &v))
	assert.Equal(t, Angle270, v.Angle)

	require.NoError(t, json.Unmarshal([]byte(`{"angle":"90"}`), &v))
	assert.Equal(t, Angle90, v.Angle)

	assert.Error(t, json.Unmarshal([]byte(`{"angle":30}`), &v))

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"angle":90}`, string(out))

	_, err = json.Marshal(struct{ A Angle }{A: Angle(45)})
	assert.Error(t, err)
}

func TestOrientationOf(t *testing.T) {
	assert.Equal(t, OrientationUnknown, OrientationOf(Size{}))
	assert.Equal(t, OrientationUnknown, OrientationOf(Size{Width: 1920}))
	assert.Equal(t, OrientationPortrait, OrientationOf(Size{Width: 1080, Height: 1920}))
	assert.Equal(t, OrientationLandscape, OrientationOf(Size{Width: 1920, Height: 1080}))
	assert.Equal(t, OrientationLandscape, OrientationOf(Size{Width: 720, Height: 720}), "square is landscape")
}
