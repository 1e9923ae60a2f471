package settings

// Kind is the scalar type tag fixed when an Item is created.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindBool
	KindInt
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// ParseKind converts the String form back into a Kind. Unknown names report
// false.
func ParseKind(value string) (Kind, bool) {
	switch value {
	case "empty", "":
		return KindEmpty, true
	case "bool":
		return KindBool, true
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "text":
		return KindText, true
	default:
		return KindEmpty, false
	}
}
