package upload

// Phase is where a submission is in its exchange with the processing backend.
type Phase int

const (
	Idle Phase = iota
	Uploading
	Processing
	Success
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Uploading:
		return "uploading"
	case Processing:
		return "processing"
	case Success:
		return "success"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether p ends a submission.
func (p Phase) Terminal() bool {
	return p == Success || p == Failed
}

// Observer receives the progress of a submission. Calls are serialized.
type Observer interface {
	PhaseChanged(phase Phase)
	Progress(percent int)
	Done(err error)
}

type NopObserver struct{}

func (NopObserver) PhaseChanged(Phase) {}
func (NopObserver) Progress(int)       {}
func (NopObserver) Done(error)         {}
