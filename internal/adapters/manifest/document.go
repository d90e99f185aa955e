package manifest

import (
	"bytes"
	"encoding/xml"
	"slices"
	"strconv"
	"strings"

	"go.trai.ch/wipt/internal/core/domain"
	"go.trai.ch/zerr"
)

// Node is a generic XML element used to edit repository documents without losing unknown content.
type Node struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Text     string     `xml:",chardata"`
	Children []*Node    `xml:",any"`
}

// Document is an editable repository document.
type Document struct {
	root *Node
}

// PackageInfo describes a package to add to a repository document.
type PackageInfo struct {
	ProductName string
	UpgradeCode domain.Code
	Publisher   string
	SupportURL  string
	Version     string
	ProductCode domain.Code
	URL         string
}

// NewDocument creates an empty repository document.
func NewDocument(maintainer, supportURL string) *Document {
	root := &Node{
		XMLName: xml.Name{Local: "Repository"},
		Attrs: []xml.Attr{
			attr("xmlns", Namespace),
			attr("Maintainer", maintainer),
			attr("SupportURL", supportURL),
		},
	}
	return &Document{root: withoutEmptyAttrs(root)}
}

// ParseDocument loads a repository document for editing.
func ParseDocument(data []byte) (*Document, error) {
	var root Node
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, schemaError("malformed document", err.Error())
	}
	if root.XMLName.Local != "Repository" || !knownNamespace(root.XMLName.Space) {
		return nil, zerr.With(schemaError("root element is not a Repository", ""), "element", root.XMLName.Local)
	}

	normalize(&root)
	root.Attrs = append([]xml.Attr{attr("xmlns", Namespace)}, root.Attrs...)
	return &Document{root: &root}, nil
}

// AddPackage appends a package to the product with the same upgrade code, creating the product
// when none exists. A new product takes the package version as its stable version; an existing
// one only does so when makeStable is set. It reports whether a new product was created.
func (d *Document) AddPackage(info PackageInfo, makeStable bool) bool {
	version := splitVersion(info.Version)
	pkg := withoutEmptyAttrs(&Node{
		XMLName: xml.Name{Local: "Package"},
		Attrs:   []xml.Attr{attr("ProductCode", info.ProductCode.String())},
		Children: []*Node{
			versionNode("Version", version),
			{XMLName: xml.Name{Local: "URL"}, Text: info.URL},
		},
	})

	for _, child := range d.root.Children {
		if child.XMLName.Local != "Product" || !sameCode(child.attr("UpgradeCode"), info.UpgradeCode) {
			continue
		}

		if makeStable {
			child.setChild(versionNode("StableVersion", version))
		}
		child.Children = append(child.Children, pkg)
		return false
	}

	product := withoutEmptyAttrs(&Node{
		XMLName: xml.Name{Local: "Product"},
		Attrs: []xml.Attr{
			attr("Name", info.ProductName),
			attr("UpgradeCode", info.UpgradeCode.String()),
			attr("Publisher", info.Publisher),
			attr("SupportURL", info.SupportURL),
		},
		Children: []*Node{versionNode("StableVersion", version), pkg},
	})
	d.root.Children = append(d.root.Children, product)
	return true
}

// Bytes renders the document as indented XML with a declaration.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(d.root); err != nil {
		return nil, zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	if err := enc.Close(); err != nil {
		return nil, zerr.Wrap(err, domain.ErrManifestWriteFailed.Error())
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// withoutEmptyAttrs returns a copy of n without attributes whose value is empty.
func withoutEmptyAttrs(n *Node) *Node {
	out := *n
	out.Attrs = slices.DeleteFunc(slices.Clone(n.Attrs), func(a xml.Attr) bool {
		return a.Value == ""
	})
	return &out
}

// normalize strips namespaces and namespace declarations so the tree re-encodes cleanly,
// and drops formatting whitespace between child elements.
func normalize(n *Node) {
	n.XMLName.Space = ""
	n.Attrs = slices.DeleteFunc(n.Attrs, func(a xml.Attr) bool {
		return a.Name.Space != "" || a.Name.Local == "xmlns"
	})
	if len(n.Children) > 0 && strings.TrimSpace(n.Text) == "" {
		n.Text = ""
	}
	for _, c := range n.Children {
		normalize(c)
	}
}

func (n *Node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// setChild replaces the first child with the same element name, or appends c.
func (n *Node) setChild(c *Node) {
	for i, existing := range n.Children {
		if existing.XMLName.Local == c.XMLName.Local {
			n.Children[i] = c
			return
		}
	}
	n.Children = append(n.Children, c)
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func sameCode(raw string, code domain.Code) bool {
	parsed, err := domain.ParseCode(raw)
	return err == nil && parsed == code
}

// splitVersion returns the three numeric components of a dotted version, defaulting to 0.
func splitVersion(s string) [3]string {
	v := domain.ParseVersion(s)
	return [3]string{strconv.Itoa(v.Major), strconv.Itoa(v.Minor), strconv.Itoa(v.Build)}
}

func versionNode(name string, parts [3]string) *Node {
	return &Node{
		XMLName: xml.Name{Local: name},
		Attrs: []xml.Attr{
			attr("Major", parts[0]),
			attr("Minor", parts[1]),
			attr("Build", parts[2]),
		},
	}
}
