package record

// Placeholder stands in for a missing field in human-oriented output.
const Placeholder = "?"

// Display returns *v, or Placeholder when the field is absent.
// A present but empty value is returned as-is.
func Display(v *string) string {
	if v == nil {
		return Placeholder
	}
	return *v
}

// Display returns the named field's value, or Placeholder when it is absent.
func (f Fields) Display(name string) string {
	if v, ok := f.Get(name); ok {
		return v
	}
	return Placeholder
}
