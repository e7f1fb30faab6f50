package personio

import (
	"bytes"
	"encoding/xml"
	"errors"
	"html"
	"io"
	"strings"
)

// position is one <position> element. Personio feeds have shipped several
// spellings for most fields over time; all of them are read.
type position struct {
	ID                 string `xml:"id"`
	Name               string `xml:"name"`
	Title              string `xml:"title"`
	Office             string `xml:"office"`
	Location           string `xml:"location"`
	City               string `xml:"city"`
	Seniority          string `xml:"seniority"`
	RecruitingCategory string `xml:"recruitingCategory"`
	CreatedAt          string `xml:"createdAt"`
	CreatedAtDash      string `xml:"created-at"`
	Date               string `xml:"date"`
	URL                string `xml:"url"`
	AbsoluteURL        string `xml:"absolute_url"`

	Sections       []section  `xml:"jobDescriptions>jobDescription"`
	Description    markupText `xml:"description"`
	JobDescription markupText `xml:"jobDescription"`
}

type section struct {
	Name  string     `xml:"name"`
	Title string     `xml:"title"`
	Value markupText `xml:"value"`
}

// descriptionHTML joins structured sections as <h3>name</h3>value, falling
// back to a flat description element.
func (p position) descriptionHTML() string {
	if len(p.Sections) == 0 {
		return strings.TrimSpace(firstMarkup(p.Description, p.JobDescription))
	}
	var b strings.Builder
	for _, s := range p.Sections {
		if heading := strings.TrimSpace(s.Name); heading != "" {
			b.WriteString("<h3>" + html.EscapeString(heading) + "</h3>")
		} else if heading := strings.TrimSpace(s.Title); heading != "" {
			b.WriteString("<h3>" + html.EscapeString(heading) + "</h3>")
		}
		b.WriteString(strings.TrimSpace(string(s.Value)))
	}
	return b.String()
}

func firstMarkup(vals ...markupText) string {
	for _, v := range vals {
		if strings.TrimSpace(string(v)) != "" {
			return string(v)
		}
	}
	return ""
}

// markupText collects an element's content as HTML whether the feed put it
// in CDATA, entity-escaped it, or nested raw child elements.
type markupText string

func (m *markupText) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var b strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			depth++
			b.WriteString("<" + t.Name.Local)
			for _, a := range t.Attr {
				b.WriteString(" " + a.Name.Local + `="` + html.EscapeString(a.Value) + `"`)
			}
			b.WriteString(">")
		case xml.EndElement:
			if depth == 0 {
				*m = markupText(b.String())
				return nil
			}
			depth--
			b.WriteString("</" + t.Name.Local + ">")
		}
	}
}

// parsePositions reads every <position> under the document root, whatever
// the root is called (positions, workzag-jobs, ...). A bare <position> root
// is a single-item feed.
func parsePositions(body []byte) ([]position, error) {
	d := xml.NewDecoder(bytes.NewReader(body))
	d.Entity = xml.HTMLEntity

	var root *xml.StartElement
	for root == nil {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			root = &se
		}
	}

	if root.Name.Local == "position" {
		var p position
		if err := d.DecodeElement(&p, root); err != nil {
			return nil, err
		}
		return []position{p}, nil
	}

	var out []position
	for {
		tok, err := d.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local != "position" {
				if err := d.Skip(); err != nil {
					return nil, err
				}
				continue
			}
			var p position
			if err := d.DecodeElement(&p, &t); err != nil {
				return nil, err
			}
			out = append(out, p)
		case xml.EndElement:
			return out, nil
		}
	}
}
