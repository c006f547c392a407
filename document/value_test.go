package document

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueDecode(t *testing.T) {
	tests := []struct {
		name string
		json string
		kind Kind
	}{
		{"string", `"vpc-default"`, KindString},
		{"integer", `42`, KindNumber},
		{"decimal keeps literal", `0.10`, KindNumber},
		{"true", `true`, KindBool},
		{"false", `false`, KindBool},
		{"null", `null`, KindNull},
		{"object", `{"a":1}`, KindStructured},
		{"array", `[1,2,3]`, KindStructured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			assert.Equal(t, tt.kind, v.Kind())
		})
	}
}

func TestValueRender(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"string passes through", `"t3.micro"`, "t3.micro"},
		{"number keeps authored literal", `0.10`, "0.10"},
		{"bool true", `true`, "true"},
		{"bool false", `false`, "false"},
		{"object serialized compact", `{ "a": 1,  "b": [2, 3] }`, `{"a":1,"b":[2,3]}`},
		{"array serialized compact", `[ "x", "y" ]`, `["x","y"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.json), &v))
			got, err := v.Render()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValueRenderNullFails(t *testing.T) {
	_, err := Null().Render()
	require.Error(t, err)
}

func TestValueRoundTrip(t *testing.T) {
	var m Map
	src := `{"Str":"a","Num":7,"Flag":false,"Blob":{"k":[1]}}`
	require.NoError(t, json.Unmarshal([]byte(src), &m))

	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, src, string(out))
}

func TestMapClone(t *testing.T) {
	m := Map{"a": String("x")}
	c := m.Clone()
	c["b"] = String("y")

	assert.Len(t, m, 1)
	assert.Len(t, c, 2)
}
