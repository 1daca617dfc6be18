package wire

// ServerHandler is implemented by anything that reacts to commands a
// client sends to a server (the C->S vocabulary). A connection's
// ExecuteServerCommand calls exactly one of these methods per valid
// frame.
type ServerHandler interface {
	ErrorHandler

	Chat(message string) error
	SetUser(user UserID) error
	Authenticate(user UserID, signature Bytes64) error
	ResumeSession(token SessionToken) error
	SendInput(text string) error
	TapObject(obj ObjectID, kind TapKind, tag Tag) error
	TellObject(obj ObjectID, text string) error
	Intent(intentID IntentID, viewDir Vec3) error
	Raycast(origin, direction Vec3) error
	RaycastCancel() error
}

// ClientHandler is implemented by anything that reacts to commands a
// server sends to a client (the S->C vocabulary).
type ClientHandler interface {
	ErrorHandler

	Chat(user UserID, message string) error
	RequestUser(prompt *string) error
	RequestAuthentication(user UserID, nonce Bytes16) error
	AcceptUser(user UserID) error
	RejectUser(user UserID, reason *string) error
	AnnounceSession(token SessionToken, lifetime *int) error
	RevokeSession(token SessionToken) error
	RequestInput(prompt string, defaultValue *string) error
	CancelInput() error
	SetBanner(text *string, duration *float64) error
	CreateIntent(intentID IntentID, label string) error
	DestroyIntent(intentID IntentID) error
	RaycastRequest() error
	RaycastCancel() error
	CreateGeometry(geom GeomID) error
	DestroyGeometry(geom GeomID) error
	AddTriangleList(geom GeomID, tag *Tag, triangles []Triangle) error
	AddTriangleStrip(geom GeomID, tag *Tag, color Color, p0, p1, p2 Vec3, positions []Vec3) error
	AddTriangleFan(geom GeomID, tag *Tag, color Color, p0, p1, p2 Vec3, positions []Vec3) error
	RemoveTriangles(geom GeomID, tag Tag) error
	CreateTextGeometry(geom GeomID, size Vec2, uri URI, sha256 Bytes32, text string, anchor *Anchor) error
	CreateSpriteGeometry(geom GeomID, size Vec2, uri URI, sha256 Bytes32, sizeMode *SizeMode, anchor *Anchor) error
	SetTextProperty(geom GeomID, property string, value AnyValue) error
	CreateObject(obj ObjectID, geom *GeomID) error
	DestroyObject(obj ObjectID) error
	ReparentObject(parent, child ObjectID, mode *ReparentMode) error
	SetObjectGeometry(obj ObjectID, geom *GeomID) error
	SetObjectProperty(obj ObjectID, property string, value AnyValue) error
	SetObjectTransform(obj ObjectID, pos *Vec3, rot *Euler, scale *Vec3, duration *float64) error
	TrackObject(obj ObjectID, target *ObjectID, mode *TrackMode, duration *float64) error
	EnableFreeLook(enabled bool) error
	SetBackgroundColor(color Color) error
}

// parseOptionalPrompt parses request-user's prompt and reject-user's
// reason, resolving the spec's "ZString?" annotation for these two
// parameters: a plain ZString may never be
// optional (spec.md 4.5), so the empty-means-absent contract is carried
// by String's optional form instead, which still lets an absent prompt
// and an empty-but-present prompt be distinguished by pointer nilness.
func parseOptionalPrompt(token string) (*string, error) {
	v, err := ParseString(token, true)
	if err != nil {
		return nil, err
	}
	return v.(*string), nil
}

// ServerCommands is the dispatch table for the C->S vocabulary, keyed by
// wire command name.
var ServerCommands = map[string]ServerCommandSpec{
	"chat": {Name: "chat", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 1)
		text, err := ParseZString(args[0], false)
		if err != nil {
			return err
		}
		return h.Chat(text.(string))
	}},
	"set-user": {Name: "set-user", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 1)
		user, err := ParseUserID(args[0], false)
		if err != nil {
			return err
		}
		return h.SetUser(user.(UserID))
	}},
	"authenticate": {Name: "authenticate", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 2)
		user, err := ParseUserID(args[0], false)
		if err != nil {
			return err
		}
		signature, err := ParseBytes64(args[1], false)
		if err != nil {
			return err
		}
		return h.Authenticate(user.(UserID), signature.(Bytes64))
	}},
	"resume-session": {Name: "resume-session", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 1)
		tok, err := ParseSessionToken(args[0], false)
		if err != nil {
			return err
		}
		return h.ResumeSession(tok.(SessionToken))
	}},
	"send-input": {Name: "send-input", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 1)
		text, err := ParseZString(args[0], false)
		if err != nil {
			return err
		}
		return h.SendInput(text.(string))
	}},
	"tap-object": {Name: "tap-object", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 3)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		kind, err := ParseTapKind(args[1], false)
		if err != nil {
			return err
		}
		tag, err := ParseTag(args[2], false)
		if err != nil {
			return err
		}
		return h.TapObject(object.(ObjectID), kind.(TapKind), tag.(Tag))
	}},
	"tell-object": {Name: "tell-object", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 2)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		text, err := ParseZString(args[1], false)
		if err != nil {
			return err
		}
		return h.TellObject(object.(ObjectID), text.(string))
	}},
	"intent": {Name: "intent", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 2)
		intentID, err := ParseIntentID(args[0], false)
		if err != nil {
			return err
		}
		viewDir, err := ParseVec3(args[1], false)
		if err != nil {
			return err
		}
		return h.Intent(intentID.(IntentID), viewDir.(Vec3))
	}},
	"raycast": {Name: "raycast", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 2)
		origin, err := ParseVec3(args[0], false)
		if err != nil {
			return err
		}
		direction, err := ParseVec3(args[1], false)
		if err != nil {
			return err
		}
		return h.Raycast(origin.(Vec3), direction.(Vec3))
	}},
	"raycast-cancel": {Name: "raycast-cancel", Invoke: func(h ServerHandler, args []string) error {
		args = padArgs(args, 0)
		return h.RaycastCancel()
	}},
}

// ClientCommands is the dispatch table for the S->C vocabulary.
var ClientCommands = map[string]ClientCommandSpec{
	"chat": {Name: "chat", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		user, err := ParseUserID(args[0], false)
		if err != nil {
			return err
		}
		message, err := ParseString(args[1], false)
		if err != nil {
			return err
		}
		return h.Chat(user.(UserID), message.(string))
	}},
	"request-user": {Name: "request-user", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		prompt, err := parseOptionalPrompt(args[0])
		if err != nil {
			return err
		}
		return h.RequestUser(prompt)
	}},
	"request-authentication": {Name: "request-authentication", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		user, err := ParseUserID(args[0], false)
		if err != nil {
			return err
		}
		nonce, err := ParseBytes16(args[1], false)
		if err != nil {
			return err
		}
		return h.RequestAuthentication(user.(UserID), nonce.(Bytes16))
	}},
	"accept-user": {Name: "accept-user", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		user, err := ParseUserID(args[0], false)
		if err != nil {
			return err
		}
		return h.AcceptUser(user.(UserID))
	}},
	"reject-user": {Name: "reject-user", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		user, err := ParseUserID(args[0], false)
		if err != nil {
			return err
		}
		reason, err := parseOptionalPrompt(args[1])
		if err != nil {
			return err
		}
		return h.RejectUser(user.(UserID), reason)
	}},
	"announce-session": {Name: "announce-session", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		tok, err := ParseSessionToken(args[0], false)
		if err != nil {
			return err
		}
		lifetime, err := ParseInt(args[1], true)
		if err != nil {
			return err
		}
		return h.AnnounceSession(tok.(SessionToken), lifetime.(*int))
	}},
	"revoke-session": {Name: "revoke-session", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		tok, err := ParseSessionToken(args[0], false)
		if err != nil {
			return err
		}
		return h.RevokeSession(tok.(SessionToken))
	}},
	"request-input": {Name: "request-input", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		prompt, err := ParseString(args[0], false)
		if err != nil {
			return err
		}
		def, err := ParseString(args[1], true)
		if err != nil {
			return err
		}
		return h.RequestInput(prompt.(string), def.(*string))
	}},
	"cancel-input": {Name: "cancel-input", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 0)
		return h.CancelInput()
	}},
	"set-banner": {Name: "set-banner", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		text, err := ParseString(args[0], true)
		if err != nil {
			return err
		}
		duration, err := ParseFloat(args[1], true)
		if err != nil {
			return err
		}
		return h.SetBanner(text.(*string), duration.(*float64))
	}},
	"create-intent": {Name: "create-intent", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		intentID, err := ParseIntentID(args[0], false)
		if err != nil {
			return err
		}
		label, err := ParseString(args[1], false)
		if err != nil {
			return err
		}
		return h.CreateIntent(intentID.(IntentID), label.(string))
	}},
	"destroy-intent": {Name: "destroy-intent", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		intentID, err := ParseIntentID(args[0], false)
		if err != nil {
			return err
		}
		return h.DestroyIntent(intentID.(IntentID))
	}},
	"raycast-request": {Name: "raycast-request", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 0)
		return h.RaycastRequest()
	}},
	"raycast-cancel": {Name: "raycast-cancel", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 0)
		return h.RaycastCancel()
	}},
	"create-geometry": {Name: "create-geometry", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		geom, err := ParseGeomID(args[0], false)
		if err != nil {
			return err
		}
		return h.CreateGeometry(geom.(GeomID))
	}},
	"destroy-geometry": {Name: "destroy-geometry", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		geom, err := ParseGeomID(args[0], false)
		if err != nil {
			return err
		}
		return h.DestroyGeometry(geom.(GeomID))
	}},
	"add-triangle-list": {Name: "add-triangle-list", Invoke: func(h ClientHandler, args []string) error {
		fixed, tail := splitFixedAndTail(args, 2)
		geom, err := ParseGeomID(fixed[0], false)
		if err != nil {
			return err
		}
		tag, err := ParseTag(fixed[1], true)
		if err != nil {
			return err
		}
		triangles, err := parseTriangleList(tail)
		if err != nil {
			return err
		}
		return h.AddTriangleList(geom.(GeomID), tag.(*Tag), triangles)
	}},
	"add-triangle-strip": {Name: "add-triangle-strip", Invoke: func(h ClientHandler, args []string) error {
		fixed, tail := splitFixedAndTail(args, 6)
		geom, err := ParseGeomID(fixed[0], false)
		if err != nil {
			return err
		}
		tag, err := ParseTag(fixed[1], true)
		if err != nil {
			return err
		}
		color, err := ParseColor(fixed[2], false)
		if err != nil {
			return err
		}
		p0, err := ParseVec3(fixed[3], false)
		if err != nil {
			return err
		}
		p1, err := ParseVec3(fixed[4], false)
		if err != nil {
			return err
		}
		p2, err := ParseVec3(fixed[5], false)
		if err != nil {
			return err
		}
		positions, err := parseVecList(tail)
		if err != nil {
			return err
		}
		return h.AddTriangleStrip(geom.(GeomID), tag.(*Tag), color.(Color), p0.(Vec3), p1.(Vec3), p2.(Vec3), positions)
	}},
	"add-triangle-fan": {Name: "add-triangle-fan", Invoke: func(h ClientHandler, args []string) error {
		fixed, tail := splitFixedAndTail(args, 6)
		geom, err := ParseGeomID(fixed[0], false)
		if err != nil {
			return err
		}
		tag, err := ParseTag(fixed[1], true)
		if err != nil {
			return err
		}
		color, err := ParseColor(fixed[2], false)
		if err != nil {
			return err
		}
		p0, err := ParseVec3(fixed[3], false)
		if err != nil {
			return err
		}
		p1, err := ParseVec3(fixed[4], false)
		if err != nil {
			return err
		}
		p2, err := ParseVec3(fixed[5], false)
		if err != nil {
			return err
		}
		positions, err := parseVecList(tail)
		if err != nil {
			return err
		}
		return h.AddTriangleFan(geom.(GeomID), tag.(*Tag), color.(Color), p0.(Vec3), p1.(Vec3), p2.(Vec3), positions)
	}},
	"remove-triangles": {Name: "remove-triangles", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		geom, err := ParseGeomID(args[0], false)
		if err != nil {
			return err
		}
		tag, err := ParseTag(args[1], false)
		if err != nil {
			return err
		}
		return h.RemoveTriangles(geom.(GeomID), tag.(Tag))
	}},
	"create-text-geometry": {Name: "create-text-geometry", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 6)
		geom, err := ParseGeomID(args[0], false)
		if err != nil {
			return err
		}
		size, err := ParseVec2(args[1], false)
		if err != nil {
			return err
		}
		uri, err := ParseURI(args[2], false)
		if err != nil {
			return err
		}
		sha256, err := ParseBytes32(args[3], false)
		if err != nil {
			return err
		}
		text, err := ParseString(args[4], false)
		if err != nil {
			return err
		}
		anchor, err := ParseAnchor(args[5], true)
		if err != nil {
			return err
		}
		return h.CreateTextGeometry(geom.(GeomID), size.(Vec2), uri.(URI), sha256.(Bytes32), text.(string), anchor.(*Anchor))
	}},
	"create-sprite-geometry": {Name: "create-sprite-geometry", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 6)
		geom, err := ParseGeomID(args[0], false)
		if err != nil {
			return err
		}
		size, err := ParseVec2(args[1], false)
		if err != nil {
			return err
		}
		uri, err := ParseURI(args[2], false)
		if err != nil {
			return err
		}
		sha256, err := ParseBytes32(args[3], false)
		if err != nil {
			return err
		}
		sizeMode, err := ParseSizeMode(args[4], true)
		if err != nil {
			return err
		}
		anchor, err := ParseAnchor(args[5], true)
		if err != nil {
			return err
		}
		return h.CreateSpriteGeometry(geom.(GeomID), size.(Vec2), uri.(URI), sha256.(Bytes32), sizeMode.(*SizeMode), anchor.(*Anchor))
	}},
	"set-text-property": {Name: "set-text-property", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 3)
		geom, err := ParseGeomID(args[0], false)
		if err != nil {
			return err
		}
		property, err := mustString(args, 1)
		if err != nil {
			return err
		}
		value, err := ParseAny(args[2], false)
		if err != nil {
			return err
		}
		return h.SetTextProperty(geom.(GeomID), property, value.(AnyValue))
	}},
	"create-object": {Name: "create-object", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		geom, err := ParseGeomID(args[1], true)
		if err != nil {
			return err
		}
		return h.CreateObject(object.(ObjectID), geom.(*GeomID))
	}},
	"destroy-object": {Name: "destroy-object", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		return h.DestroyObject(object.(ObjectID))
	}},
	"reparent-object": {Name: "reparent-object", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 3)
		parent, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		child, err := ParseObjectID(args[1], false)
		if err != nil {
			return err
		}
		mode, err := ParseReparentMode(args[2], true)
		if err != nil {
			return err
		}
		return h.ReparentObject(parent.(ObjectID), child.(ObjectID), mode.(*ReparentMode))
	}},
	"set-object-geometry": {Name: "set-object-geometry", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 2)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		geom, err := ParseGeomID(args[1], true)
		if err != nil {
			return err
		}
		return h.SetObjectGeometry(object.(ObjectID), geom.(*GeomID))
	}},
	"set-object-property": {Name: "set-object-property", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 3)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		property, err := mustString(args, 1)
		if err != nil {
			return err
		}
		value, err := ParseAny(args[2], false)
		if err != nil {
			return err
		}
		return h.SetObjectProperty(object.(ObjectID), property, value.(AnyValue))
	}},
	"set-object-transform": {Name: "set-object-transform", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 5)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		pos, err := ParseVec3(args[1], true)
		if err != nil {
			return err
		}
		rot, err := ParseEuler(args[2], true)
		if err != nil {
			return err
		}
		scale, err := ParseVec3(args[3], true)
		if err != nil {
			return err
		}
		duration, err := ParseFloat(args[4], true)
		if err != nil {
			return err
		}
		return h.SetObjectTransform(object.(ObjectID), pos.(*Vec3), rot.(*Euler), scale.(*Vec3), duration.(*float64))
	}},
	"track-object": {Name: "track-object", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 4)
		object, err := ParseObjectID(args[0], false)
		if err != nil {
			return err
		}
		target, err := ParseObjectID(args[1], true)
		if err != nil {
			return err
		}
		mode, err := ParseTrackMode(args[2], true)
		if err != nil {
			return err
		}
		duration, err := ParseFloat(args[3], true)
		if err != nil {
			return err
		}
		return h.TrackObject(object.(ObjectID), target.(*ObjectID), mode.(*TrackMode), duration.(*float64))
	}},
	"enable-free-look": {Name: "enable-free-look", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		enabled, err := ParseBool(args[0], false)
		if err != nil {
			return err
		}
		return h.EnableFreeLook(enabled.(bool))
	}},
	"set-background-color": {Name: "set-background-color", Invoke: func(h ClientHandler, args []string) error {
		args = padArgs(args, 1)
		color, err := ParseColor(args[0], false)
		if err != nil {
			return err
		}
		return h.SetBackgroundColor(color.(Color))
	}},
}

func mustString(args []string, i int) (string, error) {
	if i >= len(args) {
		return "", newParseError("command", "", "missing parameter")
	}
	v, err := ParseString(args[i], false)
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
