package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_MarshalJSON(t *testing.T) {
	cases := []struct {
		in   Number
		want string
	}{
		{IntNumber(42), "42"},
		{IntNumber(0), "0"},
		{FloatNumber(5), "5.0"},
		{FloatNumber(12.5), "12.5"},
	}
	for _, c := range cases {
		b, err := json.Marshal(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, string(b))
		assert.Equal(t, c.want, c.in.String())
	}
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var n Number
	require.NoError(t, json.Unmarshal([]byte("17"), &n))
	assert.Equal(t, IntNumber(17), n)

	require.NoError(t, json.Unmarshal([]byte("17.0"), &n))
	assert.Equal(t, FloatNumber(17), n)

	assert.Error(t, json.Unmarshal([]byte(`"x"`), &n))
}

func TestRawRow_GetMissingIsNull(t *testing.T) {
	row := RawRow{"title": Text("Odstávka")}
	assert.Equal(t, KindText, row.Get("title").Kind)
	assert.True(t, row.Get("missing").IsNull())
}

func TestEvent_ZeroValueHasEveryKey(t *testing.T) {
	b, err := json.Marshal(Event{})
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))

	assert.Len(t, decoded, 34)
	for key, value := range decoded {
		assert.NotNil(t, value, key)
	}
	assert.Equal(t, float64(0), decoded["id_zaznamu"])
	assert.Equal(t, "", decoded["nazev_udalosti"])
}

func TestEvent_SearchableText(t *testing.T) {
	e := Event{Title: "A", Description: "B", Organizer: "C", Location: "D", CategoryLabel: "E"}
	assert.Equal(t, "A B C D E", e.SearchableText())
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "fixed_point", KindFixedPoint.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
