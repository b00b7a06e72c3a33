package export

import (
	"fmt"
	"io"

	"github.com/plc-visualizer/plc2yaml/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// MsgpackEncoder writes the document as MessagePack maps keyed like the YAML
// output.
type MsgpackEncoder struct{}

func NewMsgpackEncoder() *MsgpackEncoder {
	return &MsgpackEncoder{}
}

func (e *MsgpackEncoder) Name() string {
	return "msgpack"
}

func (e *MsgpackEncoder) Extension() string {
	return ".msgpack"
}

func (e *MsgpackEncoder) ContentType() string {
	return "application/msgpack"
}

func (e *MsgpackEncoder) Encode(w io.Writer, doc *models.Document) error {
	if err := msgpack.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encoding msgpack: %w", err)
	}
	return nil
}

// DecodeMsgpack parses a document previously written by MsgpackEncoder.
func DecodeMsgpack(r io.Reader) (*models.Document, error) {
	var doc models.Document
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding msgpack: %w", err)
	}
	return &doc, nil
}
