package scene

// Status classifies the result of one pipeline stage for one scene.
type Status string

const (
	// StatusSuccess means the stage produced its artifact.
	StatusSuccess Status = "success"
	// StatusSkipped means the stage had no input to work on.
	StatusSkipped Status = "skipped"
	// StatusFailed means the stage ran and could not produce its artifact.
	StatusFailed Status = "failed"
)

// Outcome is the explicit result of one stage. Representing failure as data
// instead of an error keeps the batch running across malformed scenes and
// lets callers tell "no images found" apart from "encoder crashed" without
// parsing log text.
type Outcome struct {
	Status Status
	Path   string
	Reason string
}

// Succeeded builds a success outcome carrying the produced artifact path.
func Succeeded(path string) Outcome {
	return Outcome{Status: StatusSuccess, Path: path}
}

// Skipped builds a skip outcome with the reason input was absent.
func Skipped(reason string) Outcome {
	return Outcome{Status: StatusSkipped, Reason: reason}
}

// Failed builds a failure outcome from a stage error.
func Failed(err error) Outcome {
	reason := "unknown failure"
	if err != nil {
		reason = err.Error()
	}
	return Outcome{Status: StatusFailed, Reason: reason}
}

// OK reports whether the stage produced its artifact.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}
