package models

// DataType is the logical type a tag exposes in the runtime.
type DataType string

const (
	DataTypeFloat   DataType = "Float"
	DataTypeInt16   DataType = "Int16"
	DataTypeBoolean DataType = "Boolean"
)

// AddressKind identifies the Modbus memory area an element lives in.
type AddressKind int

const (
	KindUnknown AddressKind = iota
	KindCoil
	KindRegister
)

// kindRule is the per-kind naming and typing applied when emitting tags.
type kindRule struct {
	prefix   string
	leafName string
	dataType DataType
}

var kindRules = map[AddressKind]kindRule{
	KindCoil:     {prefix: "MC", leafName: "NumCoil", dataType: DataTypeBoolean},
	KindRegister: {prefix: "MHR", leafName: "NumRegister", dataType: DataTypeInt16},
}

// KindForPrefix returns the kind for an address prefix such as "MHR".
func KindForPrefix(prefix string) (AddressKind, bool) {
	for k, r := range kindRules {
		if r.prefix == prefix {
			return k, true
		}
	}
	return KindUnknown, false
}

// Prefix returns the export prefix of the kind.
func (k AddressKind) Prefix() string {
	return kindRules[k].prefix
}

// LeafName returns the name of the numeric child node.
func (k AddressKind) LeafName() string {
	return kindRules[k].leafName
}

func (k AddressKind) String() string {
	switch k {
	case KindCoil:
		return "coil"
	case KindRegister:
		return "register"
	default:
		return "unknown"
	}
}

// Address is a decoded export address like "MHR70:RD".
type Address struct {
	Kind   AddressKind
	Number int
	// Float is set when the address carries the ":RD" suffix marking a
	// 32-bit float register pair.
	Float bool
}

// DataType derives the logical type: the float suffix wins, otherwise the
// kind decides.
func (a Address) DataType() DataType {
	if a.Float {
		return DataTypeFloat
	}
	return kindRules[a.Kind].dataType
}

// Offset returns the index written to the runtime. Addresses without the
// float suffix point one past the runtime's index and are decremented;
// correctCoils controls whether coils follow the same rule.
func (a Address) Offset(correctCoils bool) int {
	if a.Float {
		return a.Number
	}
	if a.Kind == KindCoil && !correctCoils {
		return a.Number
	}
	return a.Number - 1
}
