package transform

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// decodeXML parses an ISO 20022-style XML document into a
// map[string]any tree addressable by the same dotted/indexed paths get
// and set use. The outer element's name is returned as root; the tree
// holds that element's content, without the root tag.
func decodeXML(data []byte) (root string, tree map[string]any, err error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, terr := dec.Token()
		if terr != nil {
			return "", nil, fmt.Errorf("transform: decode xml: %w", terr)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		val, derr := decodeElement(dec, start)
		if derr != nil {
			return "", nil, derr
		}
		m, _ := val.(map[string]any)
		if m == nil {
			m = map[string]any{}
		}
		return start.Name.Local, m, nil
	}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	children := map[string]any{}
	var text string
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("transform: decode xml element %s: %w", start.Name.Local, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			val, err := decodeElement(dec, t)
			if err != nil {
				return nil, err
			}
			appendChild(children, t.Name.Local, val)
		case xml.CharData:
			text += string(t)
		case xml.EndElement:
			if len(children) == 0 {
				return strings.TrimSpace(text), nil
			}
			return children, nil
		}
	}
}

// appendChild adds val under name, promoting to a slice on the second
// occurrence of a sibling element name, matching how repeated ISO
// 20022 elements (CdtTrfTxInf, Ntry, ...) naturally appear.
func appendChild(children map[string]any, name string, val any) {
	existing, ok := children[name]
	if !ok {
		children[name] = val
		return
	}
	if list, ok := existing.([]any); ok {
		children[name] = append(list, val)
		return
	}
	children[name] = []any{existing, val}
}

// encodeXML renders tree back to an XML document rooted at root,
// visiting map keys in sorted order so output is deterministic across
// runs (production systems diffing captured wire messages rely on
// this).
func encodeXML(root string, tree map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := encodeElement(&buf, root, tree); err != nil {
		return nil, fmt.Errorf("transform: encode xml: %w", err)
	}
	return buf.Bytes(), nil
}

func encodeElement(buf *bytes.Buffer, name string, value any) error {
	switch v := value.(type) {
	case map[string]any:
		buf.WriteString("<" + name + ">")
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := encodeElement(buf, k, v[k]); err != nil {
				return err
			}
		}
		buf.WriteString("</" + name + ">")
	case []any:
		for _, item := range v {
			if err := encodeElement(buf, name, item); err != nil {
				return err
			}
		}
	case string:
		buf.WriteString("<" + name + ">")
		if err := xml.EscapeText(buf, []byte(v)); err != nil {
			return err
		}
		buf.WriteString("</" + name + ">")
	case nil:
		buf.WriteString("<" + name + "/>")
	default:
		buf.WriteString("<" + name + ">")
		if err := xml.EscapeText(buf, []byte(fmt.Sprint(v))); err != nil {
			return err
		}
		buf.WriteString("</" + name + ">")
	}
	return nil
}
