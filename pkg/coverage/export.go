package coverage

import (
	"encoding/xml"
	"fmt"

	"github.com/jihwankim/covcrv/pkg/coverage/coverr"
	"gopkg.in/yaml.v3"
)

// Format selects the export/import wire format.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

type xmlBin struct {
	XMLName xml.Name `xml:"bin" yaml:"-"`
	Value   string   `xml:"value,attr" yaml:"value"`
	Label   string   `xml:"label,attr,omitempty" yaml:"label,omitempty"`
	Hits    int      `xml:"hits,attr" yaml:"hits"`
}

type xmlItem struct {
	XMLName         xml.Name  `xml:"item" yaml:"-"`
	Name            string    `xml:"name,attr" yaml:"name"`
	Kind            string    `xml:"kind,attr" yaml:"kind"`
	Weight          int       `xml:"weight,attr" yaml:"weight"`
	AtLeast         int       `xml:"at_least,attr,omitempty" yaml:"at_least,omitempty"`
	Size            int       `xml:"size,attr" yaml:"size"`
	Coverage        int       `xml:"coverage,attr" yaml:"coverage"`
	CoverPercentage float64   `xml:"cover_percentage,attr" yaml:"cover_percentage"`
	Bins            []xmlBin  `xml:"bin" yaml:"bins,omitempty"`
	Children        []xmlItem `xml:"item" yaml:"children,omitempty"`
}

type xmlCoverageDB struct {
	XMLName xml.Name  `xml:"coverage" yaml:"-"`
	Items   []xmlItem `xml:"item" yaml:"items"`
}

func kindString(k Kind) string {
	switch k {
	case KindContainer:
		return "container"
	case KindPoint:
		return "point"
	case KindCross:
		return "cross"
	case KindCheck:
		return "check"
	default:
		return "unknown"
	}
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "container":
		return KindContainer, nil
	case "point":
		return KindPoint, nil
	case "cross":
		return KindCross, nil
	case "check":
		return KindCheck, nil
	default:
		return 0, fmt.Errorf("unknown item kind %q", s)
	}
}

func toXMLItem(c *CoverItem) xmlItem {
	out := xmlItem{
		Name:            c.leafName(),
		Kind:            kindString(c.kind),
		Weight:          c.weight,
		AtLeast:         c.atLeast,
		Size:            c.size,
		Coverage:        c.coverage,
		CoverPercentage: c.CoverPercentage(),
	}
	for i, b := range c.bins {
		label := ""
		if i < len(c.binLabels) {
			label = c.binLabels[i]
		}
		out.Bins = append(out.Bins, xmlBin{Value: binKey(b), Label: label, Hits: c.hits[i]})
	}
	names := append([]string(nil), c.order...)
	for _, n := range names {
		out.Children = append(out.Children, toXMLItem(c.children[n]))
	}
	return out
}

// Export serializes the entire coverage database in the given format.
func Export(db *CoverageDB, format Format) ([]byte, error) {
	names := append([]string(nil), db.root.order...)
	doc := xmlCoverageDB{}
	for _, n := range names {
		doc.Items = append(doc.Items, toXMLItem(db.root.children[n]))
	}

	switch format {
	case FormatXML:
		out, err := xml.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, coverr.Wrap(coverr.ExportMerge, "xml export", err)
		}
		return append([]byte(xml.Header), out...), nil
	case FormatYAML:
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, coverr.Wrap(coverr.ExportMerge, "yaml export", err)
		}
		return out, nil
	default:
		return nil, coverr.Newf(coverr.ExportMerge, "unknown export format %q", format)
	}
}

// ImportAndMerge parses a previously exported document and adds its hit
// counts, element-wise by bin value, into db's matching items. Every item
// in the document must already exist in db with the same kind, weight,
// at_least, bin values and bin labels; any mismatch aborts the merge before
// any state changes. Size, coverage and cover_percentage are recomputed
// from the merged hit counts rather than compared.
func ImportAndMerge(db *CoverageDB, data []byte, format Format) error {
	var doc xmlCoverageDB
	var err error
	switch format {
	case FormatXML:
		err = xml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return coverr.Newf(coverr.ExportMerge, "unknown import format %q", format)
	}
	if err != nil {
		return coverr.Wrap(coverr.ExportMerge, "parse", err)
	}

	plan, err := planMerge(db, doc.Items, "")
	if err != nil {
		return err
	}
	var firstErr error
	for _, step := range plan {
		for i, add := range step.hitDeltas {
			step.item.hits[i] += add
		}
		step.item.coverage = step.item.weight * step.item.countCoveredGeneric()
		// propagateUp recomputes every ancestor container's size/coverage/
		// cover_percentage on the way up from this leaf; db.root.propagateUp
		// would walk up from root and touch nothing, leaving every
		// intermediate container's aggregates stale after a merge.
		if err := step.item.propagateUp(""); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type mergeStep struct {
	item      *CoverItem
	hitDeltas []int
}

func planMerge(db *CoverageDB, items []xmlItem, prefix string) ([]mergeStep, error) {
	var steps []mergeStep
	for _, xi := range items {
		full := xi.Name
		if prefix != "" {
			full = prefix + "." + xi.Name
		}
		target, err := db.Get(full)
		if err != nil {
			return nil, coverr.Wrap(coverr.ExportMerge, "merge references unknown item "+full, err)
		}
		wantKind, err := parseKind(xi.Kind)
		if err != nil {
			return nil, coverr.Wrap(coverr.ExportMerge, "merge item "+full, err)
		}
		if target.kind != wantKind {
			return nil, coverr.Newf(coverr.ExportMerge, "merge item %q kind mismatch: have %s, document has %s", full, kindString(target.kind), xi.Kind)
		}
		if xi.Weight != target.weight || xi.AtLeast != target.atLeast {
			return nil, coverr.Newf(coverr.ExportMerge, "merge item %q attribute mismatch: have weight=%d at_least=%d, document has weight=%d at_least=%d", full, target.weight, target.atLeast, xi.Weight, xi.AtLeast)
		}
		if target.kind == KindPoint || target.kind == KindCross {
			if len(xi.Bins) != len(target.bins) {
				return nil, coverr.Newf(coverr.ExportMerge, "merge item %q bin count mismatch: have %d, document has %d", full, len(target.bins), len(xi.Bins))
			}
			deltas := make([]int, len(target.bins))
			for i, b := range target.bins {
				if binKey(b) != xi.Bins[i].Value {
					return nil, coverr.Newf(coverr.ExportMerge, "merge item %q bin %d value mismatch: have %s, document has %s", full, i, binKey(b), xi.Bins[i].Value)
				}
				label := ""
				if i < len(target.binLabels) {
					label = target.binLabels[i]
				}
				if label != xi.Bins[i].Label {
					return nil, coverr.Newf(coverr.ExportMerge, "merge item %q bin %d label mismatch: have %q, document has %q", full, i, label, xi.Bins[i].Label)
				}
				deltas[i] = xi.Bins[i].Hits
			}
			steps = append(steps, mergeStep{item: target, hitDeltas: deltas})
		}
		childSteps, err := planMerge(db, xi.Children, full)
		if err != nil {
			return nil, err
		}
		steps = append(steps, childSteps...)
	}
	return steps, nil
}
