package ir

import (
	"math"
	"testing"
	"time"
)

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   *Node
		want string
	}{
		{"object order", FromKeyVals([]KeyVal{
			{Key: "b", Val: FromInt(1)},
			{Key: "a", Val: FromFloat(2.5)},
		}), `{"b":1,"a":2.5}`},
		{"set", FromSet([]*Node{FromInt(2), FromInt(1)}, false), `[1,2]`},
		{"bytes", FromBytes([]byte{1, 2}), `"AQI="`},
		{"time", FromTime(time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)), `"2001-01-01T00:00:00Z"`},
		{"null", Null(), `null`},
		{"nan", FromFloat(math.NaN()), `"NaN"`},
		{"inf", FromSlice([]*Node{FromFloat(math.Inf(1)), FromFloat(math.Inf(-1))}), `["Infinity","-Infinity"]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}
