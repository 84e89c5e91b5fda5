package reshape

// Kind identifies the structural contract of a Field.
type Kind int

const (
	KindAny Kind = iota
	KindBool
	KindInt
	KindNumber
	KindText
	KindDatetime
	KindUUID
	KindRecord
	KindSequence
	KindMapping
)

var kindNames = [...]string{
	KindAny:      "any",
	KindBool:     "boolean",
	KindInt:      "integer",
	KindNumber:   "number",
	KindText:     "text",
	KindDatetime: "datetime",
	KindUUID:     "uuid",
	KindRecord:   "record",
	KindSequence: "sequence",
	KindMapping:  "mapping",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind resolves a kind by its String form.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return KindAny, false
}

// small local itoa to avoid extra imports here
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var buf [20]byte
	bp := len(buf)
	for i > 0 {
		bp--
		buf[bp] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		bp--
		buf[bp] = '-'
	}
	return string(buf[bp:])
}
