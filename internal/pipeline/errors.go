package pipeline

import "fmt"

// InputError indicates the referenced input file does not exist or is
// not readable.
type InputError struct {
	Path string
	Err  error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("vcf input path %s does not exist, or is not readable", e.Path)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
