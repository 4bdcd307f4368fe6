// Package field provides fluent builders for declaring model fields.
//
// A field is declared once, when the model is defined, and finalized into a
// Descriptor. Definition problems are recorded in Descriptor.Err instead of
// panicking, so schema.Compile can report the first broken field of a model.
//
//	field.Int("id").Key().Serial()
//	field.Text("color").Length(80).Default("red")
//	field.Decimal("price").Precision(12).Scale(2)
//	field.Time("created_at").Lazy("timestamps")
//	field.Other("payload")            // stored through the msgpack codec
//	field.UUID("token").Unique()      // stored as text through the uuid codec
//
// Key and Serial imply Unique, and Key implies NOT NULL, unless the
// declaration says otherwise with NonUnique or Nullable.
package field
