package template

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	cases := map[string][]string{
		"liststruct[1].first": {"liststruct", "1", "first"},
		"liststruct.1.first":  {"liststruct", "1", "first"},
		"field_2":             {"field_2"},
		"a[0][1]":             {"a", "0", "1"},
	}
	for path, want := range cases {
		got, err := tokenize(path)
		require.NoError(t, err, path)
		require.Equal(t, want, got, path)
	}
}

func TestTokenizeUnterminatedBracket(t *testing.T) {
	_, err := tokenize("a[1")
	require.Error(t, err)
}

func TestScopeDirectLeaf(t *testing.T) {
	s := NewScope(Params{"field_1": 7})
	child, err := s.child("field_1")
	require.NoError(t, err)
	require.True(t, child.hasDirect)
	require.Equal(t, 7, child.direct)
}

func TestScopeChildAtOutOfRangeYieldsEmptyScope(t *testing.T) {
	s := NewScope(Params{"items[0].x": 1})
	child, err := s.childAt(5)
	require.NoError(t, err)
	require.False(t, child.hasDirect)
	require.Empty(t, child.table)
}
