package mapping

// DefaultRequiredFields must be present in every generated form: company
// name, first individual's title and names, loan amount and term.
var DefaultRequiredFields = []string{"text1", "text106", "text107", "text108", "text297", "text298"}

// MissingRequired returns the required ids that are absent from m or hold
// an empty string, in the order given. A false checkbox counts as present.
func MissingRequired(m Mapping, required []string) []string {
	missing := []string{}
	for _, id := range required {
		v, ok := m[id]
		if !ok || v == nil {
			missing = append(missing, id)
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			missing = append(missing, id)
		}
	}
	return missing
}
