package domain

// OrganizedFile records where one file ended up under the managed store.
type OrganizedFile struct {
	Filename    string
	Destination string
}

// FileFailure is a per-file organization error. One file's failure never
// aborts the batch.
type FileFailure struct {
	Filename string
	Message  string
}

// OrganizeResult is the outcome of one organization batch.
type OrganizeResult struct {
	Organized  []OrganizedFile
	Duplicates []string
	Failures   []FileFailure
}

func (r OrganizeResult) SuccessCount() int   { return len(r.Organized) }
func (r OrganizeResult) DuplicateCount() int { return len(r.Duplicates) }
func (r OrganizeResult) ErrorCount() int     { return len(r.Failures) }
