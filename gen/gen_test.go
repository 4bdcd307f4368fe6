package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-db/strata/schema"
	"github.com/strata-db/strata/schema/field"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	set, err := schema.Compile("Beetle",
		field.Int("id").Key().Serial(),
		field.Text("color"),
		field.Bool("flightless"),
		field.Time("discovered_at"),
		field.Other("payload"),
	)
	require.NoError(t, err)

	src, err := Generate(Config{Package: "model", Type: "Beetle", Schema: set})
	require.NoError(t, err)
	code := string(src)

	assert.Contains(t, code, "Code generated by strata-gen. DO NOT EDIT.")
	assert.Contains(t, code, "package model")
	assert.Contains(t, code, "type Beetle struct")
	assert.Contains(t, code, "*schema.State")
	assert.Contains(t, code, "func NewBeetle(set *schema.Set) *Beetle")

	// One typed accessor pair per property.
	assert.Contains(t, code, "func (e *Beetle) Id() (int64, error)")
	assert.Contains(t, code, "func (e *Beetle) SetId(v int64)")
	assert.Contains(t, code, "func (e *Beetle) Color() (string, error)")
	assert.Contains(t, code, "func (e *Beetle) SetColor(v string)")
	assert.Contains(t, code, "func (e *Beetle) DiscoveredAt() (time.Time, error)")
	assert.Contains(t, code, "func (e *Beetle) Payload() (any, error)")

	// Boolean properties additionally get a predicate reader.
	assert.Contains(t, code, "func (e *Beetle) IsFlightless() bool")
	assert.NotContains(t, code, "func (e *Beetle) IsColor")
}

func TestGenerate_ConfigValidation(t *testing.T) {
	t.Parallel()

	set, err := schema.Compile("Beetle", field.Int("id").Key().Serial())
	require.NoError(t, err)

	_, err = Generate(Config{Type: "Beetle", Schema: set})
	assert.Error(t, err)
	_, err = Generate(Config{Package: "model", Schema: set})
	assert.Error(t, err)
	_, err = Generate(Config{Package: "model", Type: "Beetle"})
	assert.Error(t, err)
}

func TestGenerateFile(t *testing.T) {
	t.Parallel()

	set, err := schema.Compile("Beetle", field.Int("id").Key().Serial())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "beetle.go")
	require.NoError(t, GenerateFile(Config{Package: "model", Type: "Beetle", Schema: set}, path))
	src, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(src), "type Beetle struct")
}
