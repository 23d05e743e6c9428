package product

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePayload_UnmarshalSingleString(t *testing.T) {
	var p ImagePayload
	require.NoError(t, json.Unmarshal([]byte(`"img-1"`), &p))

	assert.Equal(t, []string{"img-1"}, p.Refs())
	assert.False(t, p.IsEmpty())
}

func TestImagePayload_UnmarshalArray(t *testing.T) {
	var p ImagePayload
	require.NoError(t, json.Unmarshal([]byte(`["img-1","img-2"]`), &p))

	assert.Equal(t, []string{"img-1", "img-2"}, p.Refs())
}

func TestImagePayload_UnmarshalNull(t *testing.T) {
	var p ImagePayload
	require.NoError(t, json.Unmarshal([]byte(`null`), &p))

	assert.Nil(t, p.Refs())
	assert.True(t, p.IsEmpty())
}

func TestImagePayload_UnmarshalEmptyArray(t *testing.T) {
	var p ImagePayload
	require.NoError(t, json.Unmarshal([]byte(`[]`), &p))

	assert.True(t, p.IsEmpty())
}

func TestImagePayload_UnmarshalRejectsOtherTypes(t *testing.T) {
	var p ImagePayload
	assert.Error(t, json.Unmarshal([]byte(`42`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"url":"x"}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &p))
}

func TestImagePayload_MarshalNormalizesToArray(t *testing.T) {
	out, err := json.Marshal(SingleImage("img-1"))
	require.NoError(t, err)
	assert.JSONEq(t, `["img-1"]`, string(out))

	out, err = json.Marshal(MultipleImages([]string{"a", "b"}))
	require.NoError(t, err)
	assert.JSONEq(t, `["a","b"]`, string(out))
}

func TestImagePayload_RoundTripInsideRequest(t *testing.T) {
	type req struct {
		Name   string       `json:"name"`
		Images ImagePayload `json:"images"`
	}

	var r req
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Widget","images":"one"}`), &r))
	assert.Equal(t, []string{"one"}, r.Images.Refs())

	var r2 req
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Widget"}`), &r2))
	assert.True(t, r2.Images.IsEmpty())
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPerPage, f.PerPage)

	f = ListFilter{Page: -3, PerPage: 0}.Normalize()
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, DefaultPerPage, f.PerPage)

	f = ListFilter{Page: 2, PerPage: 12}.Normalize()
	assert.Equal(t, 2, f.Page)
	assert.Equal(t, 12, f.PerPage)
}
