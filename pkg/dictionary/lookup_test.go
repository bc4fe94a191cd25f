package dictionary_test

import (
	"testing"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foamdict/pkg/dictionary"
	"foamdict/pkg/keyword"
	"foamdict/pkg/token"
)

const nested = `
top 0;
a
{
    name a;
    b
    {
        name b;
        c { name c; }
    }
}
"dotted.key" 7;
`

func TestSearchScoped(t *testing.T) {
	d := mustParse(t, nested)
	a, err := d.SubDict("a")
	require.NoError(t, err)
	b, err := a.SubDict("b")
	require.NoError(t, err)
	c, err := b.SubDict("c")
	require.NoError(t, err)

	tests := []struct {
		from *dictionary.Dictionary
		key  string
		want string
	}{
		{d, "a.name", "a"},
		{d, "a.b.name", "b"},
		{d, "a.b.c.name", "c"},
		{c, ":a.name", "a"},
		{c, ":top", "0"},
		{c, "..name", "b"},
		{c, "...name", "a"},
		{c, "name", "c"},
		{d, "a/b/name", "b"},
		{c, "../name", "b"},
		{c, "../../name", "a"},
		{c, "/a/b/c/name", "c"},
		{b, "./c/name", "c"},
		{d, "dotted.key", "7"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := tt.from.SearchScoped(tt.key, keyword.MatchRegex)
			require.True(t, s.Found(), tt.key)
			assert.Equal(t, tt.want, s.Entry().Tokens()[0].Render())
		})
	}

	for _, key := range []string{"a.missing", ":b", "....name", "a/b/../../../x", "a/nope/name"} {
		assert.False(t, c.SearchScoped(key, keyword.MatchRegex).Found(), key)
	}
}

func TestScopedLookupThroughParents(t *testing.T) {
	d := mustParse(t, nested)
	c := d.FindScoped("a.b.c", keyword.MatchLiteral)
	require.NotNil(t, c)
	require.True(t, c.IsDict())

	e, err := c.Dict().LookupScoped("top", keyword.MatchRegexRecursive)
	require.NoError(t, err)
	assert.Equal(t, "top", e.Keyword().Text())

	_, err = c.Dict().LookupScoped("top", keyword.MatchRegex)
	assert.ErrorIs(t, err, dictionary.ErrMissingEntry)
}

func TestNames(t *testing.T) {
	d := mustParse(t, nested)
	c := d.FindScoped("a.b.c", keyword.MatchLiteral).Dict()
	assert.Equal(t, "test.a.b.c", c.Name())
	assert.Equal(t, "a.b.c", c.RelativeName())
	assert.Equal(t, "c", c.DictName())
	assert.Same(t, d, c.TopDict())
	assert.True(t, d.Parent().IsNull())

	e := c.Find("name", keyword.MatchLiteral)
	assert.Equal(t, "test.a.b.c.name", e.Name())
	assert.Same(t, c, e.Owner())
}

func TestTypedGet(t *testing.T) {
	d := mustParse(t, `
i 42;
f 1.5e3;
n -7;
s "quoted text";
w word;
flag on;
ints (1 2 3);
sized 2(4 5);
floats (1 2.5);
names (a "b c");
`)

	i, err := dictionary.Get[int](d, "i")
	require.NoError(t, err)
	assert.Equal(t, 42, i)

	f, err := dictionary.Get[float64](d, "f")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, f)

	n, err := dictionary.Get[int64](d, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(-7), n)

	s, err := dictionary.Get[string](d, "s")
	require.NoError(t, err)
	assert.Equal(t, "quoted text", s)

	w, err := dictionary.Get[string](d, "w")
	require.NoError(t, err)
	assert.Equal(t, "word", w)

	flag, err := dictionary.Get[bool](d, "flag")
	require.NoError(t, err)
	assert.True(t, flag)

	ints, err := dictionary.Get[[]int](d, "ints")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ints)

	sized, err := dictionary.Get[[]int64](d, "sized")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, sized)

	floats, err := dictionary.Get[[]float64](d, "floats")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2.5}, floats)

	names, err := dictionary.Get[[]string](d, "names")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b c"}, names)
}

func TestTypedGetErrors(t *testing.T) {
	d := mustParse(t, `word notANumber; extra 1 2; sub { x 1; }`)

	_, err := dictionary.Get[int](d, "word")
	assert.ErrorIs(t, err, dictionary.ErrInvalidInput)

	_, err = dictionary.Get[int](d, "extra")
	require.ErrorIs(t, err, dictionary.ErrMalformedEntry)
	var de *dictionary.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Remaining)
	assert.Equal(t, "extra", de.Keyword)

	_, err = dictionary.Get[int](d, "sub")
	assert.ErrorIs(t, err, dictionary.ErrInvalidInput)

	_, err = d.LookupStream("sub", keyword.MatchLiteral)
	assert.ErrorIs(t, err, dictionary.ErrInvalidInput)
}

func TestCheckStream(t *testing.T) {
	s := token.NewStream("s", []token.Token{token.NewInt(1), token.NewInt(2)})
	_, err := s.ReadInt()
	require.NoError(t, err)

	err = dictionary.CheckStream(s, "k")
	require.ErrorIs(t, err, dictionary.ErrMalformedEntry)
	var de *dictionary.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Remaining)

	_, err = s.ReadInt()
	require.NoError(t, err)
	assert.NoError(t, dictionary.CheckStream(s, "k"))

	err = dictionary.CheckStream(token.NewStream("empty", nil), "k")
	assert.ErrorIs(t, err, dictionary.ErrMalformedEntry)
}

func TestOptionalLookups(t *testing.T) {
	cfg, h := testConfig()
	d := mustParseWith(t, `present 3;`, cfg)

	v, err := dictionary.GetOrDefault(d, "present", 9)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = dictionary.GetOrDefault(d, "absent", 9)
	require.NoError(t, err)
	assert.Equal(t, 9, v)
	assert.Empty(t, entriesAt(h, log.InfoLevel))

	cfg.ReportOptional.Set()
	defer cfg.ReportOptional.UnSet()

	name := "fallback"
	found, err := dictionary.ReadIfPresent(d, "absent", &name)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, "fallback", name)

	infos := entriesAt(h, log.InfoLevel)
	require.Len(t, infos, 1)
	assert.Equal(t, "absent", infos[0].Fields["keyword"])
	assert.Equal(t, "fallback", infos[0].Fields["default"])

	n := 0
	found, err = dictionary.ReadIfPresent(d, "present", &n)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 3, n)
}

func TestMissingPolicy(t *testing.T) {
	cfg, h := testConfig()
	cfg.MissingPolicy = dictionary.PolicyLog
	d := dictionary.NewWithConfig("logged", cfg)

	_, err := d.Lookup("nope")
	assert.ErrorIs(t, err, dictionary.ErrMissingEntry)
	require.Len(t, entriesAt(h, log.ErrorLevel), 1)

	cfg.MissingPolicy = dictionary.PolicyPanic
	assert.Panics(t, func() { _, _ = d.Lookup("nope") })

	lookup := func() (err error) {
		defer dictionary.Recover(&err)
		_, err = d.SubDict("nope")
		return err
	}
	assert.ErrorIs(t, lookup(), dictionary.ErrMissingEntry)
}

func TestSubDictVariants(t *testing.T) {
	cfg, h := testConfig()
	d := mustParseWith(t, `prim 1; sub { x 1; }`, cfg)

	_, err := d.SubDict("prim")
	assert.ErrorIs(t, err, dictionary.ErrInvalidInput)
	_, err = d.SubDict("none")
	assert.ErrorIs(t, err, dictionary.ErrMissingEntry)

	added, err := d.SubDictOrAdd("fresh")
	require.NoError(t, err)
	assert.Same(t, d, added.Parent())
	assert.Equal(t, []string{"prim", "sub", "fresh"}, d.Toc())

	sub, err := d.SubDictOrAdd("sub")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, sub.Toc())

	_, err = d.SubDictOrAdd("prim")
	assert.ErrorIs(t, err, dictionary.ErrInvalidInput)

	empty, err := d.SubOrEmptyDict("absent", false)
	require.NoError(t, err)
	assert.True(t, empty.Empty())
	assert.True(t, empty.Parent().IsNull())
	assert.Equal(t, "test.absent", empty.Name())
	require.NoError(t, empty.AddValue("y", 1))
	assert.False(t, d.Found("absent", keyword.MatchLiteral))

	_, err = d.SubOrEmptyDict("prim", false)
	require.NoError(t, err)
	assert.Len(t, entriesAt(h, log.WarnLevel), 1)

	existing, err := d.SubOrEmptyDict("sub", true)
	require.NoError(t, err)
	assert.Same(t, sub, existing)

	_, err = d.SubOrEmptyDict("absent", true)
	assert.ErrorIs(t, err, dictionary.ErrMissingEntry)
	_, err = d.SubOrEmptyDict("prim", true)
	assert.ErrorIs(t, err, dictionary.ErrInvalidInput)
	assert.False(t, d.Found("absent", keyword.MatchLiteral))
}

func TestMandatorySubDictFollowsPolicy(t *testing.T) {
	cfg, _ := testConfig()
	cfg.MissingPolicy = dictionary.PolicyPanic
	d := mustParseWith(t, `sub { x 1; }`, cfg)

	empty, err := d.SubOrEmptyDict("absent", false)
	require.NoError(t, err)
	assert.True(t, empty.Empty())

	err = func() (err error) {
		defer dictionary.Recover(&err)
		_, err = d.SubOrEmptyDict("absent", true)
		return err
	}()
	assert.ErrorIs(t, err, dictionary.ErrMissingEntry)
}

func TestTocAndKeys(t *testing.T) {
	d := mustParse(t, `zeta 1; alpha 2; "p.*" 3; mid 4;`)
	assert.Equal(t, []string{"zeta", "alpha", "p.*", "mid"}, d.Toc())
	assert.Equal(t, []string{"alpha", "mid", "p.*", "zeta"}, d.SortedToc())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Keys(false))
	assert.Equal(t, []string{"p.*"}, d.Keys(true))
	assert.Equal(t, 4, d.Len())
}
