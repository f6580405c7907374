package store

import (
	"context"
	"fmt"
	"sort"
)

// Workspace looks up narrowed subsets of stored objects by reference.
type Workspace struct {
	client *Client
}

// NewWorkspace creates a workspace client on top of an RPC client.
func NewWorkspace(client *Client) *Workspace {
	return &Workspace{client: client}
}

type subsetSpec struct {
	Ref      string   `json:"ref"`
	Included []string `json:"included"`
}

type subsetResult struct {
	Data map[string]any `json:"data"`
}

// GetObjectSubset fetches only the named top-level fields of the object
// identified by ref.
func (w *Workspace) GetObjectSubset(ctx context.Context, ref string, included ...string) (map[string]any, error) {
	var result subsetResult
	err := w.client.Call(ctx, "Workspace.get_object_subset",
		[]subsetSpec{{Ref: ref, Included: included}}, &result)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

// AssemblyRefFromGenome resolves the assembly reference recorded on a
// genome object.
func (w *Workspace) AssemblyRefFromGenome(ctx context.Context, genomeRef string) (string, error) {
	data, err := w.GetObjectSubset(ctx, genomeRef, "/assembly_ref")
	if err != nil {
		return "", err
	}

	ref, ok := data["assembly_ref"].(string)
	if !ok || ref == "" {
		return "", fmt.Errorf("genome %s has no assembly_ref", genomeRef)
	}
	return ref, nil
}

// ContigIDs returns the contig identifiers recorded on an assembly
// object, sorted for determinism (the service returns them as an
// unordered mapping).
func (w *Workspace) ContigIDs(ctx context.Context, assemblyRef string) ([]string, error) {
	data, err := w.GetObjectSubset(ctx, assemblyRef, "/contigs")
	if err != nil {
		return nil, err
	}

	contigs, ok := data["contigs"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("assembly %s has no contigs mapping", assemblyRef)
	}
	return sortedKeys(contigs), nil
}

// SampleInstanceIDs returns the sample instance identifiers recorded on
// a sample-attribute object.
func (w *Workspace) SampleInstanceIDs(ctx context.Context, sampleRef string) ([]string, error) {
	data, err := w.GetObjectSubset(ctx, sampleRef, "/instances")
	if err != nil {
		return nil, err
	}

	instances, ok := data["instances"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sample attribute object %s has no instances mapping", sampleRef)
	}
	return sortedKeys(instances), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
