// Package variation assembles the terminal Variation record from
// aggregated VCF statistics and a checksum-verified file handle.
package variation

import (
	"github.com/gwastore/varimport/internal/store"
	"github.com/gwastore/varimport/internal/vcf"
)

// ObjectType is the typed-object name used when saving a Record.
const ObjectType = "GwasData.Variations"

// Record is the terminal artifact of an import run. Field names follow
// the stored type spec.
type Record struct {
	NumGenotypes int                `json:"numgenotypes"`
	NumVariants  int                `json:"numvariants"`
	Contigs      []*vcf.ContigStats `json:"contigs"`
	Population   string             `json:"population"`
	GenomeRef    string             `json:"genome_ref"`
	AssemblyRef  string             `json:"assembly_ref"`
	VCFHandleRef string             `json:"vcf_handle_ref"`
	VCFHandle    *store.Handle      `json:"vcf_handle"`
}
