package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidActionName is returned for an action name not of the form
// "Controller@method".
var ErrInvalidActionName = errors.New("invalid action name")

// Actions is a registry of named handlers addressed as "Controller@method".
// Handlers are resolved when routes are declared, so a typo in an action
// name surfaces as a fault on the route instead of a lookup per request.
type Actions struct {
	controllers map[string]map[string]HandlerFunc
}

// NewActions creates an empty registry.
func NewActions() *Actions {
	return &Actions{controllers: make(map[string]map[string]HandlerFunc)}
}

// Register adds a handler under name. Registering the same name twice
// replaces the handler.
func (a *Actions) Register(name string, h HandlerFunc) error {
	controller, method, err := splitAction(name)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("%w: %q has no handler", ErrInvalidActionName, name)
	}

	methods, ok := a.controllers[controller]
	if !ok {
		methods = make(map[string]HandlerFunc)
		a.controllers[controller] = methods
	}
	methods[method] = h
	return nil
}

// Controller registers every method of one controller.
func (a *Actions) Controller(name string, methods map[string]HandlerFunc) error {
	for m, h := range methods {
		if err := a.Register(name+"@"+m, h); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the handler registered under name.
//
// An unknown controller yields a handler failing with ControllerNotFound;
// a known controller without the method yields one failing with
// MethodNotFound. A malformed name is treated as an unknown controller.
func (a *Actions) Handler(name string) HandlerFunc {
	controller, method, err := splitAction(name)
	if err != nil {
		return func(Context) error {
			return ControllerNotFound(name)
		}
	}

	methods, ok := a.controllers[controller]
	if !ok {
		return func(Context) error {
			return ControllerNotFound(controller)
		}
	}

	h, ok := methods[method]
	if !ok {
		return func(Context) error {
			return MethodNotFound(method)
		}
	}
	return h
}

// Names lists the registered action names in sorted order.
func (a *Actions) Names() []string {
	var names []string
	for c, methods := range a.controllers {
		for m := range methods {
			names = append(names, c+"@"+m)
		}
	}
	sort.Strings(names)
	return names
}

func splitAction(name string) (controller, method string, err error) {
	controller, method, ok := strings.Cut(name, "@")
	if !ok || controller == "" || method == "" || strings.Contains(method, "@") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidActionName, name)
	}
	return controller, method, nil
}
