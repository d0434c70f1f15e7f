package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Bio     Field[string]   `json:"bio"`
	Hobbies Field[[]string] `json:"hobbies"`
	Food    Field[string]   `json:"favoriteFood"`
}

func TestFieldDistinguishesOmittedFromNull(t *testing.T) {
	var s sample
	require.NoError(t, json.Unmarshal([]byte(`{"bio":null,"hobbies":["chess"]}`), &s))

	require.True(t, s.Bio.Set)
	require.Equal(t, "", s.Bio.Value)
	require.True(t, s.Hobbies.Set)
	require.Equal(t, []string{"chess"}, s.Hobbies.Value)
	require.False(t, s.Food.Set)
}

func TestFieldOr(t *testing.T) {
	require.Equal(t, "kept", Field[string]{}.Or("kept"))
	require.Equal(t, "new", Some("new").Or("kept"))
	require.Equal(t, "", Field[string]{Set: true}.Or("kept"))
}

func TestFieldInvalidJSON(t *testing.T) {
	var s sample
	require.Error(t, json.Unmarshal([]byte(`{"hobbies":"chess"}`), &s))
}
