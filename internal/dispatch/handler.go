package dispatch

import "context"

// Handler processes the operations it recognises. handled is false when
// the operation belongs to another handler; args are then left untouched.
type Handler interface {
	Handle(ctx context.Context, op string, args Args) (resp *Response, handled bool, err error)
}

// Scope is the environment every machine and network call targets. It is
// shared by the handlers of one dispatcher and is not synchronised.
type Scope struct {
	environmentID string
}

// EnvironmentID returns the current environment id, or "" before one exists
func (s *Scope) EnvironmentID() string {
	return s.environmentID
}

// SetEnvironmentID switches the scope to another environment
func (s *Scope) SetEnvironmentID(id string) {
	s.environmentID = id
}

type scopedHandler struct {
	ops       map[string]Operation
	exec      Executor
	scope     *Scope
	injectEnv bool
	pathParam func(op, name string) bool
	onSuccess func(op string, resp *Response)
}

func (h *scopedHandler) Handle(ctx context.Context, op string, args Args) (*Response, bool, error) {
	operation, ok := h.ops[op]
	if !ok {
		return nil, false, nil
	}

	path := make(map[string]any)
	body := make(Args, len(args))
	if h.injectEnv {
		path["sdi_id"] = h.scope.EnvironmentID()
	}
	for k, v := range args {
		if h.pathParam(op, k) {
			path[k] = v
		} else {
			body[k] = v
		}
	}

	resp, err := h.exec.Execute(ctx, operation, path, body)
	if err == nil && h.onSuccess != nil {
		h.onSuccess(op, resp)
	}
	return resp, true, err
}

// NewEnvironmentHandler handles environment operations. A successful
// create_sdi moves scope to the new environment.
func NewEnvironmentHandler(exec Executor, scope *Scope) Handler {
	return &scopedHandler{
		ops:   OperationsIn(GroupEnvironment),
		exec:  exec,
		scope: scope,
		pathParam: func(_, name string) bool {
			return name == "user_pk" || name == "sdi_id"
		},
		onSuccess: func(op string, resp *Response) {
			if op != "create_sdi" {
				return
			}
			if id := resp.String("sdi_id", "id"); id != "" {
				scope.SetEnvironmentID(id)
			}
		},
	}
}

// NewMachineHandler handles machine, interface, vlan and drive operations
func NewMachineHandler(exec Executor, scope *Scope) Handler {
	return &scopedHandler{
		ops:       OperationsIn(GroupMachine),
		exec:      exec,
		scope:     scope,
		injectEnv: true,
		pathParam: func(op, name string) bool {
			switch name {
			case "machine_id", "interface_id", "disk_slot":
				return true
			case "vlan_id":
				return op != "add_machine_vlan"
			}
			return false
		},
	}
}

// NewNetworkHandler handles network and service operations
func NewNetworkHandler(exec Executor, scope *Scope) Handler {
	return &scopedHandler{
		ops:       OperationsIn(GroupNetwork),
		exec:      exec,
		scope:     scope,
		injectEnv: true,
		pathParam: func(op, name string) bool {
			switch name {
			case "network_id":
				return true
			case "vid":
				return op != "add_service"
			}
			return false
		},
	}
}
