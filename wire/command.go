package wire

// ErrorHandler is embedded into both ServerHandler and ClientHandler. The
// dispatcher calls HandleError whenever a frame names an unknown command
// or its parameters fail to parse, instead of ever partially invoking the
// real handler method with incomplete arguments.
type ErrorHandler interface {
	HandleError(command, message string, args []string)
}

// ServerCommandSpec binds a wire command name to a closure that parses a
// frame's raw parameter tokens and invokes the matching ServerHandler
// method. Parsing happens entirely before invocation: either every
// parameter binds successfully and the handler runs, or none of it does.
type ServerCommandSpec struct {
	Name   string
	Invoke func(h ServerHandler, args []string) error
}

// ClientCommandSpec is the S->C analogue of ServerCommandSpec.
type ClientCommandSpec struct {
	Name   string
	Invoke func(h ClientHandler, args []string) error
}

// ExecuteServerCommand looks up name in the server command table and
// invokes it against h. Unknown commands and parse failures are reported
// through h.HandleError rather than returned, matching the wire contract
// that a malformed or unrecognized command never aborts the connection.
func ExecuteServerCommand(h ServerHandler, name string, args []string) {
	spec, ok := ServerCommands[name]
	if !ok {
		h.HandleError(name, "unknown command", args)
		return
	}
	if err := spec.Invoke(h, args); err != nil {
		h.HandleError(name, err.Error(), args)
	}
}

// ExecuteClientCommand is the S->C analogue of ExecuteServerCommand.
func ExecuteClientCommand(h ClientHandler, name string, args []string) {
	spec, ok := ClientCommands[name]
	if !ok {
		h.HandleError(name, "unknown command", args)
		return
	}
	if err := spec.Invoke(h, args); err != nil {
		h.HandleError(name, err.Error(), args)
	}
}

// parseTrailingList splits the tail of an argument list into tupleSize-
// sized groups, used by commands whose final parameter is a trailing
// list<tuple<...>> (e.g. add-triangle-list's vertex tuples). It returns
// an error if the tail isn't an exact multiple of tupleSize.
func parseTrailingList(tail []string, tupleSize int) ([][]string, error) {
	if tupleSize <= 0 {
		return nil, newParseError("list", "", "tuple size must be positive")
	}
	if len(tail)%tupleSize != 0 {
		return nil, newParseError("list", "", "trailing parameter count is not a multiple of the tuple size")
	}
	groups := make([][]string, 0, len(tail)/tupleSize)
	for i := 0; i < len(tail); i += tupleSize {
		groups = append(groups, tail[i:i+tupleSize])
	}
	return groups, nil
}

// padArgs returns args padded (or truncated) to exactly n elements,
// treating any parameter a short frame omitted as an empty token rather
// than a parse failure: value = args[index] if index < len(args) else
// "". A required parameter that ends up empty is still rejected, just
// by its own type parser rather than by arity. Extra trailing tokens on
// a frame with no list parameter are silently ignored, matching that
// same per-index lookup never reading past the declared parameter count.
func padArgs(args []string, n int) []string {
	if len(args) == n {
		return args
	}
	out := make([]string, n)
	copy(out, args)
	return out
}

// splitFixedAndTail separates a command's fixed-position parameters from
// its trailing list payload: fixed is padded to fixedCount the same way
// padArgs does, and tail is whatever tokens remain beyond it, or empty if
// the frame didn't reach that far.
func splitFixedAndTail(args []string, fixedCount int) (fixed, tail []string) {
	fixed = padArgs(args, fixedCount)
	if len(args) > fixedCount {
		tail = args[fixedCount:]
	}
	return fixed, tail
}

// parseVecList parses a trailing list<Vec3> parameter (add-triangle-strip's
// and add-triangle-fan's positions).
func parseVecList(tail []string) ([]Vec3, error) {
	vecs := make([]Vec3, 0, len(tail))
	for _, tok := range tail {
		v, err := ParseVec3(tok, false)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, v.(Vec3))
	}
	return vecs, nil
}

// parseTriangleList parses a trailing list<tuple<Color,Vec3,Vec3,Vec3>>
// parameter (add-triangle-list's triangles).
func parseTriangleList(tail []string) ([]Triangle, error) {
	groups, err := parseTrailingList(tail, 4)
	if err != nil {
		return nil, err
	}
	triangles := make([]Triangle, 0, len(groups))
	for _, g := range groups {
		color, err := ParseColor(g[0], false)
		if err != nil {
			return nil, err
		}
		p0, err := ParseVec3(g[1], false)
		if err != nil {
			return nil, err
		}
		p1, err := ParseVec3(g[2], false)
		if err != nil {
			return nil, err
		}
		p2, err := ParseVec3(g[3], false)
		if err != nil {
			return nil, err
		}
		triangles = append(triangles, Triangle{
			Color: color.(Color),
			P0:    p0.(Vec3),
			P1:    p1.(Vec3),
			P2:    p2.(Vec3),
		})
	}
	return triangles, nil
}
