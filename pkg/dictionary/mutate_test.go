package dictionary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

func TestAddMergeReplacesInPlace(t *testing.T) {
	d := mustParse(t, `a 1; b 2; c 3;`)
	e, err := dictionary.NewValueEntry("b", "two")
	require.NoError(t, err)
	assert.Same(t, e, d.Add(e, true))

	assert.Equal(t, []string{"a", "b", "c"}, d.Toc())
	v, err := dictionary.Get[string](d, "b")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestAddMergesDictionaries(t *testing.T) {
	d := mustParse(t, `sub { a 1; b 2; }`)
	patch := mustParse(t, `b 3; c 4;`)

	held := d.Add(dictionary.NewDictEntry(keyword.Literal("sub"), patch), true)
	require.NotNil(t, held)
	sub, err := d.SubDict("sub")
	require.NoError(t, err)
	assert.Same(t, sub, held.Dict())
	assert.Equal(t, []string{"a", "b", "c"}, sub.Toc())
	b, err := dictionary.Get[int](sub, "b")
	require.NoError(t, err)
	assert.Equal(t, 3, b)
}

func TestSetReplacesDictionaryContent(t *testing.T) {
	d := mustParse(t, `first 0; sub { a 1; b 2; } last 0;`)
	repl := mustParse(t, `z 9;`)

	d.Set(dictionary.NewDictEntry(keyword.Literal("sub"), repl))
	assert.Equal(t, []string{"first", "sub", "last"}, d.Toc())
	sub, err := d.SubDict("sub")
	require.NoError(t, err)
	assert.Equal(t, []string{"z"}, sub.Toc())

	require.NoError(t, d.SetValue("sub", 5))
	v, err := dictionary.Get[int](d, "sub")
	require.NoError(t, err)
	assert.Equal(t, 5, v)
	assert.Equal(t, []string{"first", "sub", "last"}, d.Toc())
}

func TestOperators(t *testing.T) {
	base := `a 1; sub { x 1; }`
	other := mustParse(t, `a 2; b 3; sub { y 2; }`)

	t.Run("append", func(t *testing.T) {
		d := mustParse(t, base)
		require.NoError(t, d.Append(other))
		assert.Equal(t, []string{"a", "sub", "b"}, d.Toc())
		a, _ := dictionary.Get[int](d, "a")
		assert.Equal(t, 1, a)
		sub, _ := d.SubDict("sub")
		assert.Equal(t, []string{"x"}, sub.Toc())
	})

	t.Run("default fill", func(t *testing.T) {
		d := mustParse(t, base)
		require.NoError(t, d.DefaultFill(other))
		assert.Equal(t, []string{"a", "sub", "b"}, d.Toc())
		a, _ := dictionary.Get[int](d, "a")
		assert.Equal(t, 1, a)
	})

	t.Run("overwrite", func(t *testing.T) {
		d := mustParse(t, base)
		require.NoError(t, d.Overwrite(other))
		assert.Equal(t, []string{"a", "sub", "b"}, d.Toc())
		a, _ := dictionary.Get[int](d, "a")
		assert.Equal(t, 2, a)
		sub, _ := d.SubDict("sub")
		assert.Equal(t, []string{"y"}, sub.Toc())
	})

	// the source is never modified
	assert.Equal(t, []string{"a", "b", "sub"}, other.Toc())
}

func TestAssignAndTransfer(t *testing.T) {
	d := mustParse(t, `a 1;`)
	other := mustParse(t, `b 2; sub { c 3; }`)

	d.Assign(other)
	assert.Equal(t, []string{"b", "sub"}, d.Toc())
	assert.True(t, d.Equal(other))
	sub, err := d.SubDict("sub")
	require.NoError(t, err)
	assert.Same(t, d, sub.Parent())

	before := d.Digest()
	d.Assign(d)
	assert.Equal(t, before, d.Digest())

	target := dictionary.New("target")
	other.SetName("moved")
	require.NoError(t, target.Transfer(other))
	assert.Equal(t, "moved", target.DictName())
	assert.Equal(t, []string{"b", "sub"}, target.Toc())
	assert.True(t, other.Empty())
	moved, err := target.SubDict("sub")
	require.NoError(t, err)
	assert.Same(t, target, moved.Parent())
	assert.ErrorIs(t, target.Transfer(target), dictionary.ErrSelfOperation)
}

func TestClone(t *testing.T) {
	d := mustParse(t, `a 1; sub { b 2; }`)
	c := d.Clone(nil)
	assert.True(t, d.Equal(c))
	assert.True(t, c.Parent().IsNull())

	require.NoError(t, c.SetValue("a", 10))
	a, err := dictionary.Get[int](d, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, a)

	csub, err := c.SubDict("sub")
	require.NoError(t, err)
	assert.Same(t, c, csub.Parent())
}

func TestRemove(t *testing.T) {
	d := mustParse(t, `alpha 1; "al.*" 2; beta 3; alps 4;`)
	assert.True(t, d.Remove("beta"))
	assert.False(t, d.Remove("beta"))
	assert.True(t, d.Remove("al.*"))
	assert.Nil(t, d.Find("alx", keyword.MatchRegex))

	d = mustParse(t, `alpha 1; "al.*" 2; beta 3; alps 4;`)
	n := d.RemovePattern(keyword.New("al.*"))
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"beta"}, d.Toc())
	assert.Equal(t, 0, d.RemovePattern(keyword.Literal("gone")))
}

func TestChangeKeyword(t *testing.T) {
	cfg, h := testConfig()
	d := mustParseWith(t, `a 1; b 2; c 3;`, cfg)

	assert.True(t, d.ChangeKeyword(keyword.Literal("a"), keyword.Literal("z"), false))
	assert.Equal(t, []string{"z", "b", "c"}, d.Toc())
	assert.Nil(t, d.Find("a", keyword.MatchLiteral))

	assert.False(t, d.ChangeKeyword(keyword.Literal("z"), keyword.Literal("b"), false))
	assert.Len(t, h.Entries, 1)

	assert.True(t, d.ChangeKeyword(keyword.Literal("z"), keyword.Literal("b"), true))
	assert.Equal(t, []string{"b", "c"}, d.Toc())
	v, err := dictionary.Get[int](d, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	pat := dictionary.Must(keyword.Pattern("c.*"))
	assert.True(t, d.ChangeKeyword(keyword.Literal("c"), pat, false))
	assert.Equal(t, []string{"c.*"}, d.Keys(true))
	assert.NotNil(t, d.Find("cat", keyword.MatchRegex))
	assert.False(t, d.ChangeKeyword(keyword.Literal("missing"), keyword.Literal("x"), false))
}

func TestIndexesStayConsistent(t *testing.T) {
	d := dictionary.New("idx")
	p := dictionary.Must(keyword.Pattern("x.*"))
	d.Add(dictionary.NewPrimitiveEntry(p, token.NewInt(1)), false)
	d.Add(dictionary.NewPrimitiveEntry(keyword.Literal("xa"), token.NewInt(2)), false)
	d.Set(dictionary.NewPrimitiveEntry(p, token.NewInt(3)))

	assert.Equal(t, []string{"x.*", "xa"}, d.Toc())
	v, err := dictionary.Get[int](d, "xb")
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	d.Clear()
	assert.True(t, d.Empty())
	assert.Nil(t, d.Find("xa", keyword.MatchRegex))
	assert.Nil(t, d.Find("xb", keyword.MatchRegex))
}

func TestAddValueRejectsUnsupported(t *testing.T) {
	d := dictionary.New("v")
	err := d.AddValue("bad", struct{}{})
	assert.ErrorIs(t, err, dictionary.ErrInvalidInput)
	assert.ErrorIs(t, d.AddValue("none"), dictionary.ErrInvalidInput)
	assert.True(t, d.Empty())
}

func TestAddToNullIsRefused(t *testing.T) {
	e, err := dictionary.NewValueEntry("k", 1)
	require.NoError(t, err)
	assert.Nil(t, dictionary.Null().Add(e, false))
	assert.True(t, dictionary.Null().Empty())
}
