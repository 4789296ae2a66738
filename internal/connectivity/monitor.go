package connectivity

// State is the connectivity state of the hosted content.
type State int

const (
	Online State = iota
	Offline
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// Action tells the window controller what to load after a signal.
type Action int

const (
	ActionNone Action = iota
	ActionLoadRemote
	ActionShowOffline
)

// String returns the string representation of the action
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "none"
	case ActionLoadRemote:
		return "load-remote"
	case ActionShowOffline:
		return "show-offline"
	default:
		return "unknown"
	}
}

// Load failure codes that do not indicate a connectivity problem.
const (
	CodeAborted         = -3   // net::ERR_ABORTED, navigation replaced or cancelled
	CodeWebKitCancelled = -999 // NSURLErrorCancelled
)

// Failure describes a page load failure reported by the hosted content.
type Failure struct {
	Code        int
	Description string
	URL         string
	MainFrame   bool
}

// Benign reports whether the failure code is a cancelled navigation.
func (f Failure) Benign() bool {
	return f.Code == CodeAborted || f.Code == CodeWebKitCancelled
}

// Settings configures the monitor.
type Settings struct {
	// OnTransition is called once for every real state change.
	OnTransition func(from, to State)
}

// Monitor is the edge-triggered Online/Offline state machine. It is not safe
// for concurrent use; the session loop owns it.
type Monitor struct {
	state    State
	settings Settings
}

// New creates a monitor in the Online state.
func New(settings Settings) *Monitor {
	return &Monitor{state: Online, settings: settings}
}

// State returns the current state.
func (m *Monitor) State() State {
	return m.state
}

// LoadFailed handles a page load failure.
func (m *Monitor) LoadFailed(f Failure) Action {
	if m.state == Offline {
		return ActionNone
	}
	if !f.MainFrame || f.Benign() || f.URL == "" {
		return ActionNone
	}
	m.transition(Offline)
	return ActionShowOffline
}

// LoadSucceeded handles a completed top-level load. Only loads of the remote
// application count; the offline page loading fine says nothing.
func (m *Monitor) LoadSucceeded(remote bool) Action {
	if remote && m.state == Offline {
		m.transition(Online)
	}
	return ActionNone
}

// Retry handles an explicit retry request.
func (m *Monitor) Retry() Action {
	if m.state == Online {
		return ActionNone
	}
	m.transition(Online)
	return ActionLoadRemote
}

// NetworkStatus handles an online/offline report from the hosted content.
func (m *Monitor) NetworkStatus(online bool) Action {
	switch {
	case online && m.state == Offline:
		m.transition(Online)
		return ActionLoadRemote
	case !online && m.state == Online:
		m.transition(Offline)
		return ActionShowOffline
	default:
		return ActionNone
	}
}

func (m *Monitor) transition(to State) {
	from := m.state
	if from == to {
		return
	}
	m.state = to
	if m.settings.OnTransition != nil {
		m.settings.OnTransition(from, to)
	}
}
