package field_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/schema/field"
)

func TestInt(t *testing.T) {
	t.Parallel()

	fd := field.Int("num_spots").Nullable().Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, "num_spots", fd.Name)
	assert.Equal(t, field.TypeInt, fd.Type)
	assert.True(t, fd.Nullable)
	assert.False(t, fd.Unique)

	fd = field.Int("id").Key().Serial().Descriptor()
	assert.NoError(t, fd.Err)
	assert.True(t, fd.Key)
	assert.True(t, fd.Serial)
	assert.True(t, fd.Unique, "serial and key imply unique")
	assert.False(t, fd.Nullable, "key implies not null")

	fd = field.Int("age").Default(10).Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, int64(10), fd.Default)
}

func TestInt_ExplicitOverrides(t *testing.T) {
	t.Parallel()

	fd := field.Int("legacy_id").Key().NonUnique().Descriptor()
	assert.NoError(t, fd.Err)
	assert.False(t, fd.Unique, "explicit override wins over the key flag")

	fd = field.Int("maybe_key").Key().Nullable().Descriptor()
	assert.NoError(t, fd.Err)
	assert.True(t, fd.Nullable, "explicit override wins over the key flag")
}

func TestText(t *testing.T) {
	t.Parallel()

	fd := field.Text("color").Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, int64(255), fd.Length, "bounded kinds inherit the default length")

	fd = field.Text("name").Length(80).Unique().Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, int64(80), fd.Length)
	assert.True(t, fd.Unique)

	fd = field.Text("slug").Column("url_slug").Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, "url_slug", fd.Column)
}

func TestDecimal(t *testing.T) {
	t.Parallel()

	fd := field.Decimal("price").Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, 10, fd.Precision)
	assert.Equal(t, 0, fd.Scale)

	fd = field.Decimal("price").Precision(12).Scale(2).Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, 12, fd.Precision)
	assert.Equal(t, 2, fd.Scale)

	for name, build := range map[string]*field.Descriptor{
		"zero precision":       field.Decimal("p").Precision(0).Descriptor(),
		"negative scale":       field.Decimal("p").Scale(-1).Descriptor(),
		"scale over precision": field.Decimal("p").Precision(2).Scale(3).Descriptor(),
	} {
		assert.Error(t, build.Err, name)
	}
}

func TestLazyGroups(t *testing.T) {
	t.Parallel()

	fd := field.Text("bio").Lazy().Descriptor()
	assert.NoError(t, fd.Err)
	assert.True(t, fd.Lazy)
	assert.Empty(t, fd.LazyGroups)

	fd = field.Time("created_at").Lazy("timestamps", "audit").Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, []string{"timestamps", "audit"}, fd.LazyGroups)
}

func TestIndexDeclarations(t *testing.T) {
	t.Parallel()

	fd := field.Int("num_spots").Index().Descriptor()
	assert.NoError(t, fd.Err)
	assert.True(t, fd.IndexAnon)

	fd = field.Text("first").Index("full_name").UniqueIndex("identity").Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, []string{"full_name"}, fd.IndexNames)
	assert.Equal(t, []string{"identity"}, fd.UniqueIndexNames)
}

func TestDefinitionFailures(t *testing.T) {
	t.Parallel()

	fd := field.Other("payload").Default(nil).Descriptor()
	assert.Error(t, fd.Err, "explicit nil default is rejected")

	fd = field.Bytes("data").Default(nil).Descriptor()
	assert.Error(t, fd.Err, "a typed nil slice is still a nil default")

	fd = field.Bytes("data").Default([]byte{}).Descriptor()
	assert.NoError(t, fd.Err, "an empty slice is a legitimate default")

	fd = field.Text("broken").Default("x").DefaultFunc(func(_, _ any) any { return "y" }).Descriptor()
	assert.Error(t, fd.Err, "static and computed defaults are mutually exclusive")

	fd = field.Other("payload").Codec("no-such-codec").Descriptor()
	assert.Error(t, fd.Err)

	fd = field.Text("").Descriptor()
	assert.Error(t, fd.Err)
}

func TestBuilders(t *testing.T) {
	t.Parallel()

	// Every kind's builder finalizes through the shared Builder surface,
	// which is what lets schema.Compile consume builder chains directly.
	for _, b := range []field.Builder{
		field.Int("a"),
		field.Text("b"),
		field.Bool("c"),
		field.Decimal("d"),
		field.Time("e"),
		field.Bytes("f"),
		field.Other("g"),
		field.UUID("h"),
	} {
		fd := b.Descriptor()
		assert.NoError(t, fd.Err)
		assert.True(t, fd.Type.Valid())
	}
}

func TestKinds(t *testing.T) {
	t.Parallel()

	assert.True(t, field.TypeInt.Numeric())
	assert.True(t, field.TypeDecimal.Numeric())
	assert.False(t, field.TypeText.Numeric())
	assert.True(t, field.TypeText.Bounded())
	assert.True(t, field.TypeBytes.Bounded())
	assert.False(t, field.TypeTime.Bounded())
	assert.Equal(t, "decimal", field.TypeDecimal.String())
	assert.False(t, field.Type(200).Valid())
}

func TestMsgpackCodec(t *testing.T) {
	t.Parallel()

	c, ok := field.CodecFor("msgpack")
	require.True(t, ok)

	enc, err := c.Encode(map[string]any{"color": "red"})
	require.NoError(t, err)
	require.IsType(t, []byte(nil), enc)

	dec, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"color": "red"}, dec)

	_, err = c.Decode("not bytes")
	assert.Error(t, err)
}

func TestUUIDCodec(t *testing.T) {
	t.Parallel()

	c, ok := field.CodecFor("uuid")
	require.True(t, ok)

	id := uuid.New()
	enc, err := c.Encode(id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), enc)

	dec, err := c.Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, id, dec)

	_, err = c.Encode(42)
	assert.Error(t, err)
}

func TestUUIDField(t *testing.T) {
	t.Parallel()

	fd := field.UUID("token").Unique().Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, field.TypeOther, fd.Type)
	assert.Equal(t, "uuid", fd.CodecName)
	assert.True(t, fd.Unique)
}
