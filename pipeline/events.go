package pipeline

// Stage names a step of the build.
type Stage string

const (
	StageEnrich  Stage = "enrich"
	StageResolve Stage = "resolve"
	StageSelect  Stage = "select"
	StageArchive Stage = "archive"
)

// Skip records an input that silently dropped out of the build.
type Skip struct {
	Stage     Stage
	Name      string // seed name for enrichment skips, otherwise the project id
	ProjectID string
	Reason    string
}

type EventKind string

const (
	EventStageStarted EventKind = "stage"
	EventModFound     EventKind = "found"
	EventSkipped      EventKind = "skipped"
	EventFetched      EventKind = "fetched"
	EventDone         EventKind = "done"
)

// Event is a progress notification. Handlers may be called from several
// goroutines at once.
type Event struct {
	Kind    EventKind
	Stage   Stage
	Name    string
	Message string
	Count   int
	Color   int
}

type ProgressFunc func(Event)

func (f ProgressFunc) emit(e Event) {
	if f != nil {
		f(e)
	}
}
