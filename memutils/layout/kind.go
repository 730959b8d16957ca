package layout

// ResourceKind classifies a resource bound into device memory for the purpose of
// bufferImageGranularity checks
type ResourceKind uint32

const (
	KindFree ResourceKind = iota
	KindUnknown
	KindBuffer
	KindImageUnknown
	KindImageLinear
	KindImageOptimal
)

var resourceKindMapping = map[ResourceKind]string{
	KindFree:         "KindFree",
	KindUnknown:      "KindUnknown",
	KindBuffer:       "KindBuffer",
	KindImageUnknown: "KindImageUnknown",
	KindImageLinear:  "KindImageLinear",
	KindImageOptimal: "KindImageOptimal",
}

func (k ResourceKind) String() string {
	str, ok := resourceKindMapping[k]
	if !ok {
		return "unknown ResourceKind"
	}

	return str
}

// KindsConflict reports whether two resources of the given kinds may not share a
// bufferImageGranularity page
func KindsConflict(first, second ResourceKind) bool {
	if first > second {
		first, second = second, first
	}

	switch first {
	case KindFree:
		return false
	case KindUnknown:
		return true
	case KindBuffer:
		return second == KindImageUnknown || second == KindImageOptimal
	case KindImageUnknown:
		return second == KindImageUnknown || second == KindImageLinear || second == KindImageOptimal
	case KindImageLinear:
		return second == KindImageOptimal
	case KindImageOptimal:
		return false
	}

	return false
}
