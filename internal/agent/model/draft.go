package model

// Field is one of the fixed keys of ConversationState.Data.
type Field string

const (
	FieldName        Field = "name"
	FieldCategory    Field = "category"
	FieldDescription Field = "description"
	FieldEmail       Field = "email"
	FieldPhone       Field = "phone"
)

// Fields lists the draft fields in the order they are asked.
var Fields = []Field{FieldName, FieldCategory, FieldDescription, FieldEmail, FieldPhone}

func (f Field) String() string { return string(f) }

// Label is the human-readable field name used in replies.
func (f Field) Label() string {
	switch f {
	case FieldName:
		return "Name"
	case FieldCategory:
		return "Category"
	case FieldDescription:
		return "Description"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	}
	return string(f)
}

// Draft is the typed view of the values collected so far.
type Draft struct {
	Name        string
	Category    string
	Description string
	Email       string
	Phone       string
}

// DraftFromData reads the known keys from data and ignores the rest.
func DraftFromData(data map[string]string) Draft {
	return Draft{
		Name:        data[string(FieldName)],
		Category:    data[string(FieldCategory)],
		Description: data[string(FieldDescription)],
		Email:       data[string(FieldEmail)],
		Phone:       data[string(FieldPhone)],
	}
}

// Get returns the value stored for f.
func (d Draft) Get(f Field) string {
	switch f {
	case FieldName:
		return d.Name
	case FieldCategory:
		return d.Category
	case FieldDescription:
		return d.Description
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	}
	return ""
}

// Set stores v under f. Unknown fields are ignored.
func (d *Draft) Set(f Field, v string) {
	switch f {
	case FieldName:
		d.Name = v
	case FieldCategory:
		d.Category = v
	case FieldDescription:
		d.Description = v
	case FieldEmail:
		d.Email = v
	case FieldPhone:
		d.Phone = v
	}
}

// Data converts the draft back to the persisted map, omitting empty values.
func (d Draft) Data() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, f := range Fields {
		if v := d.Get(f); v != "" {
			out[string(f)] = v
		}
	}
	return out
}

// Complete reports whether every field has a value.
func (d Draft) Complete() bool {
	for _, f := range Fields {
		if d.Get(f) == "" {
			return false
		}
	}
	return true
}
