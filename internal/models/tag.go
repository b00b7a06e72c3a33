package models

// Fixed type names used by the automation runtime's configuration tree.
const (
	FolderType           = "FolderType"
	ModbusTagType        = "ModbusTag"
	BaseDataVariableType = "BaseDataVariableType"
	LeafDataTypeUInt16   = "UInt16"
	ModbusMemoryArea     = "ModbusMemoryArea"
	MemoryAreaLeafName   = "MemoryArea"
	DefaultRootName      = "Tags"
)

// Document is the root folder of the generated configuration.
// Field order is the serialized key order.
type Document struct {
	Name     string     `yaml:"Name" msgpack:"Name" json:"name"`
	Type     string     `yaml:"Type" msgpack:"Type" json:"type"`
	Children []TagEntry `yaml:"Children" msgpack:"Children" json:"children"`
}

// TagEntry is a single Modbus tag.
type TagEntry struct {
	Name     string     `yaml:"Name" msgpack:"Name" json:"name"`
	Type     string     `yaml:"Type" msgpack:"Type" json:"type"`
	DataType DataType   `yaml:"DataType" msgpack:"DataType" json:"dataType"`
	Children []LeafNode `yaml:"Children" msgpack:"Children" json:"children"`
}

// LeafNode is a child variable of a tag. Value is nil for placeholders.
type LeafNode struct {
	Name     string `yaml:"Name" msgpack:"Name" json:"name"`
	Type     string `yaml:"Type" msgpack:"Type" json:"type"`
	DataType string `yaml:"DataType" msgpack:"DataType" json:"dataType"`
	Value    *int   `yaml:"Value,omitempty" msgpack:"Value,omitempty" json:"value,omitempty"`
}

// NewDocument creates an empty root folder.
func NewDocument(name string) *Document {
	if name == "" {
		name = DefaultRootName
	}
	return &Document{
		Name:     name,
		Type:     FolderType,
		Children: make([]TagEntry, 0),
	}
}

// NewTagEntry builds a tag with its numeric leaf and MemoryArea placeholder.
func NewTagEntry(name string, addr Address, offset int) TagEntry {
	value := offset
	return TagEntry{
		Name:     name,
		Type:     ModbusTagType,
		DataType: addr.DataType(),
		Children: []LeafNode{
			{
				Name:     addr.Kind.LeafName(),
				Type:     BaseDataVariableType,
				DataType: LeafDataTypeUInt16,
				Value:    &value,
			},
			{
				Name:     MemoryAreaLeafName,
				Type:     BaseDataVariableType,
				DataType: ModbusMemoryArea,
			},
		},
	}
}

// Register returns the numeric leaf of the tag, if present.
func (t TagEntry) Register() (LeafNode, bool) {
	for _, c := range t.Children {
		if c.Value != nil {
			return c, true
		}
	}
	return LeafNode{}, false
}
