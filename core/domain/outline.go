// ABOUTME: Outline domain model with normalization from the legacy payload shapes
// ABOUTME: Produces the canonical heading/subsection structure the pipeline consumes

package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// OutlineSubsection is the smallest unit of source-collection work.
type OutlineSubsection struct {
	// ID is a generated identifier for the subsection
	ID string `json:"id"`

	// Title is the subsection title
	Title string `json:"title"`

	// Order is the 1-based position within the heading
	Order int `json:"order"`
}

// OutlineHeading is one top-level section of a blog outline.
type OutlineHeading struct {
	// ID is a generated identifier for the heading
	ID string `json:"id"`

	// Title is the heading title
	Title string `json:"title"`

	// Subsections are the heading's subsections in outline order
	Subsections []OutlineSubsection `json:"subsections"`

	// Order is the 1-based position within the outline
	Order int `json:"order"`

	// Direct marks a heading that had no subsections in the source
	// payload and is processed as a single unit itself.
	Direct bool `json:"direct"`
}

// Outline is the canonical internal outline structure. All legacy payload
// shapes are converted to this form at the API boundary; the rest of the
// system never sees the raw payload.
type Outline struct {
	Headings []OutlineHeading `json:"headings"`
}

// ProcessingUnit is one flattened unit of collection work, in
// heading-major, subsection-minor order.
type ProcessingUnit struct {
	HeadingIndex    int
	SubsectionIndex int
	HeadingTitle    string
	Title           string
	IsDirectHeading bool
}

// rawSection matches one element of the legacy outline sections array.
type rawSection struct {
	Heading     string            `json:"heading"`
	Subsections []json.RawMessage `json:"subsections"`
}

// NormalizeOutline converts any of the legacy outline payload shapes into
// the canonical Outline. Accepted shapes:
//
//	{"outline": {"sections": [...]}}
//	{"sections": [...]}
//	[...]
//
// where each section is {"heading": "...", "subsections": [...]} and each
// subsection is either a bare string or {"title": "..."}.
func NormalizeOutline(raw json.RawMessage) (*Outline, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("outline payload is empty")
	}

	sections, err := extractSections(raw)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("outline contains no sections")
	}

	outline := &Outline{Headings: make([]OutlineHeading, 0, len(sections))}
	for i, section := range sections {
		title := section.Heading
		if title == "" {
			title = fmt.Sprintf("Heading %d", i+1)
		}

		heading := OutlineHeading{
			ID:    uuid.New().String(),
			Title: title,
			Order: i + 1,
		}

		for j, rawSub := range section.Subsections {
			subTitle, ok := subsectionTitle(rawSub)
			if !ok {
				continue
			}
			heading.Subsections = append(heading.Subsections, OutlineSubsection{
				ID:    uuid.New().String(),
				Title: subTitle,
				Order: j + 1,
			})
		}

		// A heading without subsections is processed as one unit itself.
		if len(heading.Subsections) == 0 {
			heading.Direct = true
			heading.Subsections = []OutlineSubsection{{
				ID:    uuid.New().String(),
				Title: heading.Title,
				Order: 1,
			}}
		}

		outline.Headings = append(outline.Headings, heading)
	}

	return outline, nil
}

// extractSections probes the legacy shapes for the sections array.
func extractSections(raw json.RawMessage) ([]rawSection, error) {
	// Flat list of sections.
	var flat []rawSection
	if err := json.Unmarshal(raw, &flat); err == nil {
		return flat, nil
	}

	var wrapper struct {
		Outline  json.RawMessage `json:"outline"`
		Sections []rawSection    `json:"sections"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("unrecognized outline payload: %w", err)
	}

	if wrapper.Sections != nil {
		return wrapper.Sections, nil
	}
	if wrapper.Outline != nil {
		return extractSections(wrapper.Outline)
	}

	return nil, fmt.Errorf("outline payload has no sections")
}

// subsectionTitle accepts a bare string or a {"title": ...} object.
func subsectionTitle(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var obj struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Title != "" {
		return obj.Title, true
	}

	return "", false
}

// Units flattens the outline into processing units in heading-major,
// subsection-minor order. The unit order drives event emission order.
func (o *Outline) Units() []ProcessingUnit {
	var units []ProcessingUnit
	for hi, heading := range o.Headings {
		for si, sub := range heading.Subsections {
			units = append(units, ProcessingUnit{
				HeadingIndex:    hi,
				SubsectionIndex: si,
				HeadingTitle:    heading.Title,
				Title:           sub.Title,
				IsDirectHeading: heading.Direct,
			})
		}
	}
	return units
}

// SectionCount returns the number of top-level headings.
func (o *Outline) SectionCount() int {
	return len(o.Headings)
}
