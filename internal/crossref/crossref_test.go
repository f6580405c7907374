package crossref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_AllResolved(t *testing.T) {
	r := Check(KindAssembly, []string{"1", "2"}, []string{"1", "2", "3"})
	assert.True(t, r.Resolved())
	assert.Empty(t, r.Unresolved)
}

func TestCheck_CaseInsensitive(t *testing.T) {
	r := Check(KindSample, []string{"Sample_X"}, []string{"sample_x"})
	assert.True(t, r.Resolved(), "case-insensitive match must resolve Sample_X against sample_x")
}

func TestCheck_TrimsWhitespace(t *testing.T) {
	r := Check(KindSample, []string{" geno1 "}, []string{"GENO1\n"})
	assert.True(t, r.Resolved())
}

func TestCheck_UnresolvedPreservesOrder(t *testing.T) {
	r := Check(KindAssembly,
		[]string{"chrUn_1", "1", "chrUn_2", "2", "chrUn_3"},
		[]string{"1", "2"})

	assert.False(t, r.Resolved())
	assert.Equal(t, []string{"chrUn_1", "chrUn_2", "chrUn_3"}, r.Unresolved,
		"unresolved ids keep the spelling the file used")
}

func TestCheck_Idempotent(t *testing.T) {
	ids := []string{"a", "b", "c"}
	known := []string{"b"}

	first := Check(KindAssembly, ids, known)
	second := Check(KindAssembly, ids, known)
	assert.Equal(t, first.Unresolved, second.Unresolved)
}

func TestEnforce(t *testing.T) {
	unresolved := Check(KindSample, []string{"missing"}, nil)
	resolved := Check(KindSample, []string{"s1"}, []string{"s1"})

	assert.NoError(t, Enforce(unresolved, Lenient))
	assert.NoError(t, Enforce(resolved, Strict))

	err := Enforce(unresolved, Strict)
	require.Error(t, err)

	var me *MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, KindSample, me.Kind)
	assert.Equal(t, []string{"missing"}, me.Unresolved)
}
