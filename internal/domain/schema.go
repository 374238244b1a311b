package domain

// FieldType enumerates the value kinds a blueprint field may declare.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeRichText FieldType = "richtext"
	FieldTypeNumber   FieldType = "number"
	FieldTypeBoolean  FieldType = "boolean"
	FieldTypeImage    FieldType = "image"
	FieldTypeFile     FieldType = "file"
	FieldTypeSelect   FieldType = "select"
	FieldTypeRepeater FieldType = "repeater"
)

// LocalizedText carries a short English/Arabic string pair used for labels
// and help text in the editing UI.
type LocalizedText struct {
	En string
	Ar string
}

// Field describes one entry in a blueprint's payload schema. Repeater fields
// nest their item schema under Fields.
type Field struct {
	ID        string
	Name      string
	Label     LocalizedText
	Type      FieldType
	Required  bool
	Bilingual bool
	HelpText  LocalizedText
	Options   []string
	Fields    []Field
	Default   any
}

// CloneFields deep-copies a field schema slice.
func CloneFields(fields []Field) []Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]Field, len(fields))
	for i, f := range fields {
		copied := f
		copied.Options = append([]string(nil), f.Options...)
		copied.Fields = CloneFields(f.Fields)
		copied.Default = cloneValue(f.Default)
		out[i] = copied
	}
	return out
}

// FieldByName finds a top-level field in the schema by its machine name.
func FieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
