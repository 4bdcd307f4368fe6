package query_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/query"
	"github.com/strata-db/strata/schema"
	"github.com/strata-db/strata/schema/field"
)

func TestOperandShape(t *testing.T) {
	t.Parallel()

	for name, tt := range map[string]struct {
		v    any
		want query.Shape
	}{
		"int":           {5, query.ShapeScalar},
		"string":        {"red", query.ShapeScalar},
		"bytes":         {[]byte("red"), query.ShapeScalar},
		"nil":           {nil, query.ShapeNil},
		"int slice":     {[]int{1, 3, 5}, query.ShapeArray},
		"any slice":     {[]any{1, "x"}, query.ShapeArray},
		"array":         {[2]int{1, 2}, query.ShapeArray},
		"range":         {query.Between(1, 5), query.ShapeRange},
		"span":          {query.Span(1, 5), query.ShapeRange},
		"regexp":        {regexp.MustCompile("^b"), query.ShapePattern},
		"raw fragment":  {query.RawFragment{SQL: "1 = 1"}, query.ShapeRaw},
		"plain struct":  {struct{ X int }{1}, query.ShapeScalar},
	} {
		assert.Equal(t, tt.want, query.OperandShape(tt.v), name)
	}
}

func TestArrayValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []any{1, 3, 5}, query.ArrayValues([]int{1, 3, 5}))
	assert.Equal(t, []any{"a", 2}, query.ArrayValues([]any{"a", 2}))
	assert.Equal(t, []any{1, 2}, query.ArrayValues([2]int{1, 2}))
}

func TestRanges(t *testing.T) {
	t.Parallel()

	r := query.Between(1, 5)
	assert.False(t, r.Exclusive)
	assert.Equal(t, 1, r.Min)
	assert.Equal(t, 5, r.Max)

	r = query.Span(1, 5)
	assert.True(t, r.Exclusive)
}

func TestConditionConstructors(t *testing.T) {
	t.Parallel()

	c := query.Eql("color", "red")
	assert.Equal(t, query.OpEql, c.Op)
	assert.Equal(t, "color", c.Field)
	assert.Equal(t, "red", c.Value)

	assert.Equal(t, query.OpNot, query.Not("color", nil).Op)
	assert.Equal(t, query.OpLike, query.Like("color", "r%").Op)
	assert.Equal(t, query.OpGt, query.Gt("num_spots", 2).Op)
	assert.Equal(t, query.OpGte, query.Gte("num_spots", 2).Op)
	assert.Equal(t, query.OpLt, query.Lt("num_spots", 2).Op)
	assert.Equal(t, query.OpLte, query.Lte("num_spots", 2).Op)

	raw := query.Raw("num_spots % ? = 0", 2)
	assert.Equal(t, query.OpRaw, raw.Op)
	assert.Empty(t, raw.Field)
	assert.Equal(t, query.RawFragment{SQL: "num_spots % ? = 0", Args: []any{2}}, raw.Value)

	assert.Equal(t, "eql", query.OpEql.String())
	assert.Equal(t, "raw", query.OpRaw.String())
	assert.Equal(t, "invalid", query.Operator(99).String())
}

func TestQueryBuilding(t *testing.T) {
	t.Parallel()

	set, err := schema.Compile("Beetle",
		field.Int("id").Key().Serial(),
		field.Text("color"),
		field.Int("num_spots").Nullable(),
		field.Text("bio").Lazy(),
	)
	require.NoError(t, err)

	q := query.New(set).
		Where(query.Eql("color", "red"), query.Gt("num_spots", 2)).
		Order("color").
		OrderDesc("num_spots").
		WithLimit(10).
		WithOffset(20).
		Join(query.Link{ParentTable: "gardens", ParentKeys: []string{"id"}, ChildKeys: []string{"garden_id"}})

	assert.Len(t, q.Conditions, 2)
	assert.Equal(t, []query.Order{{Field: "color"}, {Field: "num_spots", Desc: true}}, q.OrderBy)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 20, q.Offset)
	assert.Len(t, q.Links, 1)

	// The projection defaults to the model's eager set.
	assert.Equal(t, []string{"id", "color", "num_spots"}, q.FieldNames())
	q.Select("id", "bio")
	assert.Equal(t, []string{"id", "bio"}, q.FieldNames())
}
