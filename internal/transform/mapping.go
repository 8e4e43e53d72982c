// Package transform implements the Transformer: mapping an inbound ISO
// 20022 message into the scheme dialect (and shaping scheme replies
// back into client-facing messages) via a declarative field-mapping
// table consulted by a generic walker, per spec's design notes, rather
// than one hand-written function per message-type pair.
package transform

// FieldMap is one declarative field correspondence: copy whatever is
// at Source in the source tree to Dest in the destination tree.
// Required marks a field whose absence at Source is fatal
// (TransformationRequired) rather than simply omitted.
type FieldMap struct {
	Source   []string
	Dest     []string
	Required bool
}

// Mapping is the full declarative map for one source/destination
// message-type pair, plus the destination path the threaded UETR is
// copied to verbatim (never regenerated on the forward leg).
type Mapping struct {
	SourceType string
	DestType   string
	DestRoot   string
	Fields     []FieldMap
	UETRDest   []string
	MsgIDDest  []string
	OrgnlMsgID []string
}
