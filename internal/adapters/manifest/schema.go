package manifest

import (
	"encoding/xml"
	"strings"

	"go.trai.ch/wipt/internal/core/domain"
)

const (
	// Namespace is the XML namespace of repository documents.
	Namespace = "http://www.acm.uiuc.edu/sigwin/wipt/2006/06"
	// LegacyNamespace is the namespace used by early repository documents.
	LegacyNamespace = "urn:xmlns:sigwin:wipt-get:repository"
	// SchemaLocation is the published location of the repository schema.
	SchemaLocation = Namespace + "/repository.xsd"
)

// knownNamespace reports whether ns is a repository namespace. Documents without a namespace are accepted.
func knownNamespace(ns string) bool {
	return ns == "" || ns == Namespace || ns == LegacyNamespace
}

type repositoryXML struct {
	XMLName    xml.Name   `xml:"Repository"`
	Maintainer string     `xml:"Maintainer,attr"`
	SupportURL string     `xml:"SupportURL,attr"`
	Children   []entryXML `xml:",any"`
}

// entryXML holds either a Product or a Suite; XMLName selects which.
type entryXML struct {
	XMLName xml.Name

	Name        string `xml:"Name,attr"`
	UpgradeCode string `xml:"UpgradeCode,attr"`
	Publisher   string `xml:"Publisher,attr"`
	SupportURL  string `xml:"SupportURL,attr"`

	StableVersion *versionXML     `xml:"StableVersion"`
	DevelVersion  *versionXML     `xml:"DevelVersion"`
	Description   *string         `xml:"Description"`
	Packages      []packageXML    `xml:"Package"`
	Transforms    []transformXML  `xml:"Transform"`
	Patches       []patchXML      `xml:"Patch"`
	Dependencies  []dependencyXML `xml:"Dependency"`

	// Members lists the product names of a Suite.
	Members []string `xml:"Product"`
}

type versionXML struct {
	Major string `xml:"Major,attr"`
	Minor string `xml:"Minor,attr"`
	Build string `xml:"Build,attr"`
}

func (v *versionXML) version() domain.Version {
	return domain.ParseVersion(strings.Join([]string{v.Major, v.Minor, v.Build}, "."))
}

func (v *versionXML) ptr() *domain.Version {
	if v == nil {
		return nil
	}
	ver := v.version()
	return &ver
}

type packageXML struct {
	ProductCode string      `xml:"ProductCode,attr"`
	Version     *versionXML `xml:"Version"`
	URL         string      `xml:"URL"`
}

type transformXML struct {
	MinVersion *versionXML `xml:"MinVersion"`
	MaxVersion *versionXML `xml:"MaxVersion"`
	// Version pins the transform to a single version.
	Version *versionXML `xml:"Version"`
	URL     string      `xml:"URL"`
}

type patchXML struct {
	PatchCode    string   `xml:"PatchCode,attr"`
	Name         string   `xml:"Name,attr"`
	URL          string   `xml:"URL"`
	ProductCodes []string `xml:"ProductCode"`
}

type dependencyXML struct {
	ProductName string      `xml:"ProductName,attr"`
	MinVersion  *versionXML `xml:"MinVersion"`
	MaxVersion  *versionXML `xml:"MaxVersion"`
}
