package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	strata "github.com/strata-db/strata"
	"github.com/strata-db/strata/schema"
	"github.com/strata-db/strata/schema/field"
)

func beetleSet(t *testing.T) *schema.Set {
	t.Helper()
	set, err := schema.Compile("Beetle",
		field.Int("id").Key().Serial(),
		field.Text("color"),
		field.Int("num_spots").Nullable(),
		field.Text("bio").Lazy(),
		field.Time("created_at").Lazy("timestamps"),
		field.Time("updated_at").Lazy("timestamps"),
	)
	require.NoError(t, err)
	return set
}

func TestCompile(t *testing.T) {
	t.Parallel()

	set := beetleSet(t)
	assert.Equal(t, "Beetle", set.Model())
	assert.Equal(t, "beetles", set.Table(), "storage name follows the naming convention")
	assert.Equal(t, 6, set.Len())

	p, ok := set.Get("num_spots")
	require.True(t, ok)
	assert.Equal(t, "num_spots", p.Column())
	assert.Equal(t, 2, p.Ordinal())

	_, ok = set.Get("missing")
	assert.False(t, ok)
}

func TestCompile_DefinitionError(t *testing.T) {
	t.Parallel()

	_, err := schema.Compile("Broken",
		field.Text("name"),
		field.Decimal("price").Precision(0),
	)
	require.Error(t, err)
	assert.True(t, strata.IsDefinition(err))
	var de *strata.DefinitionError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Broken", de.Model)
	assert.Equal(t, "price", de.Property)
}

func TestPut_ReplaceInPlace(t *testing.T) {
	t.Parallel()

	set := beetleSet(t)
	before := set.Defaults()
	require.NoError(t, set.Put(field.Text("color").Length(40).Unique().Descriptor()))

	p := set.MustGet("color")
	assert.Equal(t, 1, p.Ordinal(), "redeclaration keeps the ordinal position")
	assert.True(t, p.Unique())
	assert.Equal(t, 6, set.Len(), "redeclaration never duplicates")

	after := set.Defaults()
	assert.NotSame(t, before[1], after[1], "derived views are rebuilt")
	assert.Same(t, p, after[1])
}

func TestKeyAndDefaults(t *testing.T) {
	t.Parallel()

	set := beetleSet(t)
	key := set.Key()
	require.Len(t, key, 1)
	assert.Equal(t, "id", key[0].Name())

	var names []string
	for _, p := range set.Defaults() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"id", "color", "num_spots"}, names,
		"defaults are key plus non-lazy, in declaration order")
}

func TestCompositeKeyOrder(t *testing.T) {
	t.Parallel()

	set, err := schema.Compile("Membership",
		field.Int("group_id").Key(),
		field.Int("user_id").Key(),
		field.Time("since"),
	)
	require.NoError(t, err)
	key := set.Key()
	require.Len(t, key, 2)
	assert.Equal(t, "group_id", key[0].Name())
	assert.Equal(t, "user_id", key[1].Name())
}

func TestLazyContext(t *testing.T) {
	t.Parallel()

	set := beetleSet(t)

	// A name in a lazy group expands to the whole group.
	names, err := set.LazyContext("created_at")
	require.NoError(t, err)
	assert.Equal(t, []string{"created_at", "updated_at"}, names)

	// An anonymously lazy property loads alone.
	names, err = set.LazyContext("bio")
	require.NoError(t, err)
	assert.Equal(t, []string{"bio"}, names)

	// Ungrouped names pass through unchanged.
	names, err = set.LazyContext("color", "updated_at")
	require.NoError(t, err)
	assert.Equal(t, []string{"color", "created_at", "updated_at"}, names)

	_, err = set.LazyContext()
	require.Error(t, err)
	assert.True(t, strata.IsUsage(err))
	assert.ErrorIs(t, err, strata.ErrEmptyLazyContext)

	_, err = set.LazyContext("missing")
	assert.ErrorIs(t, err, strata.ErrUnknownProperty)
}

func TestIndexDerivation(t *testing.T) {
	t.Parallel()

	set, err := schema.Compile("Person",
		field.Int("id").Key().Serial(),
		field.Text("first").Index("full_name"),
		field.Text("last").Index("full_name").Index(),
		field.Text("email").UniqueIndex(),
		field.Text("tenant").UniqueIndex("tenant_email"),
	)
	require.NoError(t, err)
	require.NoError(t, set.Put(field.Text("email").UniqueIndex().UniqueIndex("tenant_email").Descriptor()))

	assert.Equal(t, []schema.Index{
		{Name: "full_name", Columns: []string{"first", "last"}},
		{Name: "last", Columns: []string{"last"}},
	}, set.Indexes())

	assert.Equal(t, []schema.Index{
		{Name: "email", Columns: []string{"email"}, Unique: true},
		{Name: "tenant_email", Columns: []string{"email", "tenant"}, Unique: true},
	}, set.UniqueIndexes())
}

func TestSetTableOverride(t *testing.T) {
	t.Parallel()

	set, err := schema.Compile("Person", field.Int("id").Key().Serial())
	require.NoError(t, err)
	set.SetTable("people_archive")
	assert.Equal(t, "people_archive", set.Table())
}
