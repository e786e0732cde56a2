package domain

// ViewMode selects how decomposition tables present contributions.
type ViewMode string

const (
	ViewAbsolute ViewMode = "absolute"
	ViewPercent  ViewMode = "percent"
)

func (v ViewMode) Valid() bool {
	switch v {
	case ViewAbsolute, ViewPercent:
		return true
	}
	return false
}

// ParseViewMode maps an empty string to ViewAbsolute and rejects unknown
// values.
func ParseViewMode(s string) (ViewMode, bool) {
	if s == "" {
		return ViewAbsolute, true
	}
	v := ViewMode(s)
	return v, v.Valid()
}

// Method names a decomposition method.
type Method string

const (
	MethodLMDI      Method = "lmdi"
	MethodLaspeyres Method = "laspeyres"
)

func (m Method) Valid() bool {
	switch m {
	case MethodLMDI, MethodLaspeyres:
		return true
	}
	return false
}

// ParseMethod maps an empty string to MethodLMDI and rejects unknown values.
func ParseMethod(s string) (Method, bool) {
	if s == "" {
		return MethodLMDI, true
	}
	m := Method(s)
	return m, m.Valid()
}
