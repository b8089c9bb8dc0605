package session

// State is the controller's lifecycle position.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticated   State = "authenticated"
	StateRefreshing      State = "refreshing"
)

// transitions is the allowed state graph. A transition to the current
// state is always a no-op and never consults the table.
var transitions = map[State]map[State]struct{}{
	StateUnauthenticated: {
		StateAuthenticated: {},
	},
	StateAuthenticated: {
		StateRefreshing:      {},
		StateUnauthenticated: {},
	},
	StateRefreshing: {
		StateAuthenticated:   {},
		StateUnauthenticated: {},
	},
}

func canTransition(from, to State) bool {
	if allowed, ok := transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}
