// Package vcf provides streaming VCF parsing and per-contig aggregation.
package vcf

import "strconv"

// Variant represents a single genomic variant record from a VCF file.
type Variant struct {
	Chrom  string            // Chromosome/contig name (e.g., "12", "chr12")
	Pos    int64             // 1-based genomic position
	ID     string            // Variant identifier (e.g., rs ID)
	Ref    string            // Reference allele
	Alt    string            // Alternate allele(s), comma-separated
	Qual   float64           // Quality score
	Filter string            // Filter status ("." or "PASS" or filter names)
	Info   map[string]string // INFO field key-value pairs (flags map to "")
}

// Passes reports whether the record passed quality filtering.
// An empty, ".", or "PASS" FILTER field conventionally means pass.
func (v *Variant) Passes() bool {
	return v.Filter == "" || v.Filter == "." || v.Filter == "PASS"
}

// AffectedStart returns the 0-based start of the region affected by the
// variant.
func (v *Variant) AffectedStart() int64 {
	return v.Pos - 1
}

// AffectedEnd returns the 0-based exclusive end of the affected region.
// Structural variants carrying an INFO/END take precedence over the
// reference-allele span.
func (v *Variant) AffectedEnd() int64 {
	if end, ok := v.Info["END"]; ok {
		if n, err := strconv.ParseInt(end, 10, 64); err == nil {
			return n
		}
	}
	return v.Pos - 1 + int64(len(v.Ref))
}
