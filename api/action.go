package api

import "github.com/timour/amqprpc/request"

// Executor is the body of an action: given the post-plugin request and a
// sender into the logic stage, it produces a JSON-serializable result or an
// error.
type Executor[L any] func(req request.Request, logicSender chan<- L) (any, error)

// Action binds a name to an executor and the set of plugin ids this action
// opts out of.
type Action[L any] struct {
	id               string
	executor         Executor[L]
	filterOutPlugins []string
}

// NewAction builds an Action. filterOutPlugins names plugin ids this
// action's calls should skip, in addition to whatever the Input itself
// filters out.
func NewAction[L any](id string, executor Executor[L], filterOutPlugins ...string) Action[L] {
	return Action[L]{id: id, executor: executor, filterOutPlugins: filterOutPlugins}
}

func (a Action[L]) ID() string                  { return a.id }
func (a Action[L]) Executor() Executor[L]       { return a.executor }
func (a Action[L]) FilterOutPlugins() []string  { return a.filterOutPlugins }

// Registry is the name-keyed set of actions a Dispatch serves.
type Registry[L any] map[string]Action[L]

// NewRegistry builds a Registry from a list of actions, keyed by their id.
func NewRegistry[L any](actions ...Action[L]) Registry[L] {
	registry := make(Registry[L], len(actions))
	for _, action := range actions {
		registry[action.ID()] = action
	}
	return registry
}
