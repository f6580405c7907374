package vcf

import "fmt"

// ContigStats accumulates per-contig variant counters while streaming a
// VCF file. Length is derived from the affected span of the first record
// seen for the contig, an approximation of the true contig length.
type ContigStats struct {
	ContigID      string `json:"contig_id"`
	TotalVariants int    `json:"totalvariants"`
	PassVariants  int    `json:"passvariants"`
	Length        int64  `json:"length"`
}

// Info holds everything learned from a single streaming pass over a VCF
// file. Contigs preserves one entry per distinct contig; ChromosomeIDs
// records first-seen order.
type Info struct {
	Version       float64
	Contigs       map[string]*ContigStats
	TotalVariants int
	GenotypeIDs   []string
	ChromosomeIDs []string
	FilePath      string
}

// ContigList returns the contig stats in first-seen order.
func (i *Info) ContigList() []*ContigStats {
	contigs := make([]*ContigStats, 0, len(i.ChromosomeIDs))
	for _, id := range i.ChromosomeIDs {
		contigs = append(contigs, i.Contigs[id])
	}
	return contigs
}

// Aggregate streams all records from the parser and builds per-contig
// aggregates. Memory is proportional to the number of distinct contigs,
// not the number of variants. The version is read separately with
// DetectVersion; path records which resolved local file was parsed.
func Aggregate(p *Parser, version float64, path string) (*Info, error) {
	info := &Info{
		Version:     version,
		Contigs:     make(map[string]*ContigStats),
		GenotypeIDs: p.SampleNames(),
		FilePath:    path,
	}

	for {
		v, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("aggregate vcf records: %w", err)
		}
		if v == nil {
			break
		}

		info.TotalVariants++

		stats, seen := info.Contigs[v.Chrom]
		if !seen {
			pass := 0
			if v.Passes() {
				pass = 1
			}
			info.Contigs[v.Chrom] = &ContigStats{
				ContigID:      v.Chrom,
				TotalVariants: 1,
				PassVariants:  pass,
				Length:        v.AffectedEnd() - v.AffectedStart(),
			}
			info.ChromosomeIDs = append(info.ChromosomeIDs, v.Chrom)
			continue
		}

		stats.TotalVariants++
		if v.Passes() {
			stats.PassVariants++
		}
	}

	return info, nil
}
