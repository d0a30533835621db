package dashboard

// EventKind enumerates the notifications an IncidentStore emits.
type EventKind int

const (
	DataLoaded EventKind = iota + 1
	FiltersChanged
	FiltersCleared
	DataReset
)

func (k EventKind) String() string {
	switch k {
	case DataLoaded:
		return "data_loaded"
	case FiltersChanged:
		return "filters_changed"
	case FiltersCleared:
		return "filters_cleared"
	case DataReset:
		return "data_reset"
	}
	return "unknown"
}

// Event is delivered synchronously to every observer after the store state settled.
type Event struct {
	Kind     EventKind
	Total    int
	Filtered int
	Active   ActiveFilters
}

type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

type subscription struct {
	id       int
	observer Observer
}
