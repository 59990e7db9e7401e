package cvat

import "encoding/xml"

// xmlAnnotations mirrors the root <annotations> element of an export.
type xmlAnnotations struct {
	XMLName xml.Name   `xml:"annotations"`
	Version string     `xml:"version"`
	Meta    xmlMeta    `xml:"meta"`
	Images  []xmlImage `xml:"image"`
}

type xmlMeta struct {
	Task xmlTask `xml:"task"`
}

type xmlTask struct {
	ID       int          `xml:"id"`
	Name     string       `xml:"name"`
	Size     int          `xml:"size"`
	Segments []xmlSegment `xml:"segments>segment"`
}

type xmlSegment struct {
	ID    int    `xml:"id"`
	Start int    `xml:"start"`
	Stop  int    `xml:"stop"`
	URL   string `xml:"url"`
}

type xmlImage struct {
	ID       int          `xml:"id,attr"`
	Name     string       `xml:"name,attr"`
	Width    int          `xml:"width,attr"`
	Height   int          `xml:"height,attr"`
	Polygons []xmlPolygon `xml:"polygon"`
}

type xmlPolygon struct {
	Label      string         `xml:"label,attr"`
	Points     string         `xml:"points,attr"`
	GroupID    *string        `xml:"group_id,attr"`
	Occluded   string         `xml:"occluded,attr"`
	ZOrder     int            `xml:"z_order,attr"`
	Attributes []xmlAttribute `xml:"attribute"`
}

type xmlAttribute struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}
