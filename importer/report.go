package importer

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// WriteReport renders the load outcome as human readable text.
func (r *Result) WriteReport(w io.Writer) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	if r.Skipped {
		p.Fprintf(&b, "Collection already holds %d documents; import skipped.\n", r.Existing)
		p.Fprintf(&b, "Re-run with --drop-existing to replace it.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	m := r.Manifest
	p.Fprintf(&b, "\nImport %s\n", m.RunID)
	p.Fprintf(&b, "  Artifact:  %s\n", m.Artifact)
	p.Fprintf(&b, "  Digest:    %s\n", m.Digest)
	p.Fprintf(&b, "  Read:      %d\n", m.RecordsRead)
	p.Fprintf(&b, "  Inserted:  %d\n", m.Inserted)
	p.Fprintf(&b, "  Failed:    %d\n", m.Failed)
	p.Fprintf(&b, "  Elapsed:   %s\n", r.Elapsed.Round(time.Millisecond))

	p.Fprintf(&b, "\nCollection:\n")
	p.Fprintf(&b, "  Documents: %d\n", r.Stats.Documents)
	p.Fprintf(&b, "  Size:      %.2f MB\n", float64(r.Stats.TotalBytes())/(1024*1024))
	if len(r.Indexes) > 0 {
		p.Fprintf(&b, "  Indexes:   %s\n", strings.Join(r.Indexes, ", "))
	}
	if r.IndexErr != nil {
		p.Fprintf(&b, "  Index creation failed: %v\n", r.IndexErr)
	}

	if r.Sample != nil {
		p.Fprintf(&b, "\nSample document:\n")
		p.Fprintf(&b, "  code:         %s\n", r.Sample.Code)
		p.Fprintf(&b, "  product_name: %s\n", r.Sample.ProductName)
		p.Fprintf(&b, "  countries:    %s\n", r.Sample.Countries)
		p.Fprintf(&b, "  energy_100g:  %.2f\n", r.Sample.Energy)
	}

	if len(r.Failures) > 0 {
		p.Fprintf(&b, "\nFirst rejected documents:\n")
		for i, f := range r.Failures {
			if i == 10 {
				break
			}
			p.Fprintf(&b, "  #%d %q: %v\n", f.Index, f.Code, f.Err)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
