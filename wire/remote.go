package wire

import "strconv"

// FrameSender is the minimal capability RemoteClient/RemoteServer need
// from a connection: encode and push one frame. The hackvr package's
// connection type implements this over a transport.BufferedStream.
type FrameSender interface {
	SendFrame(name string, params ...string) error
}

// RemoteClient exposes every S->C command as a typed Go method, used by
// server-side code to address a single connected client. Each method
// serializes its arguments to wire tokens and hands the frame to the
// underlying FrameSender.
type RemoteClient struct {
	Sender FrameSender
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return SerializeFloat(*v)
}

func optVec3(v *Vec3) string {
	if v == nil {
		return ""
	}
	return SerializeVec3(*v)
}

func optEuler(v *Euler) string {
	if v == nil {
		return ""
	}
	return SerializeEuler(*v)
}

func optObjectID(o *ObjectID) string {
	if o == nil {
		return ""
	}
	return string(*o)
}

func optGeomID(g *GeomID) string {
	if g == nil {
		return ""
	}
	return string(*g)
}

func optTag(t *Tag) string {
	if t == nil {
		return ""
	}
	return string(*t)
}

func optAnchor(a *Anchor) string {
	if a == nil {
		return ""
	}
	return string(*a)
}

func optSizeMode(m *SizeMode) string {
	if m == nil {
		return ""
	}
	return string(*m)
}

func optReparentMode(m *ReparentMode) string {
	if m == nil {
		return ""
	}
	return string(*m)
}

func optTrackMode(m *TrackMode) string {
	if m == nil {
		return ""
	}
	return string(*m)
}

func (r *RemoteClient) Chat(user UserID, message string) error {
	return r.Sender.SendFrame("chat", string(user), message)
}

func (r *RemoteClient) RequestUser(prompt *string) error {
	return r.Sender.SendFrame("request-user", optString(prompt))
}

func (r *RemoteClient) RequestAuthentication(user UserID, nonce Bytes16) error {
	return r.Sender.SendFrame("request-authentication", string(user), SerializeBytes16(nonce))
}

func (r *RemoteClient) AcceptUser(user UserID) error {
	return r.Sender.SendFrame("accept-user", string(user))
}

func (r *RemoteClient) RejectUser(user UserID, reason *string) error {
	return r.Sender.SendFrame("reject-user", string(user), optString(reason))
}

func (r *RemoteClient) AnnounceSession(token SessionToken, lifetime *int) error {
	return r.Sender.SendFrame("announce-session", SerializeSessionToken(token), optInt(lifetime))
}

func (r *RemoteClient) RevokeSession(token SessionToken) error {
	return r.Sender.SendFrame("revoke-session", SerializeSessionToken(token))
}

func (r *RemoteClient) RequestInput(prompt string, defaultValue *string) error {
	return r.Sender.SendFrame("request-input", prompt, optString(defaultValue))
}

func (r *RemoteClient) CancelInput() error {
	return r.Sender.SendFrame("cancel-input")
}

func (r *RemoteClient) SetBanner(text *string, duration *float64) error {
	return r.Sender.SendFrame("set-banner", optString(text), optFloat(duration))
}

func (r *RemoteClient) CreateIntent(intentID IntentID, label string) error {
	return r.Sender.SendFrame("create-intent", string(intentID), label)
}

func (r *RemoteClient) DestroyIntent(intentID IntentID) error {
	return r.Sender.SendFrame("destroy-intent", string(intentID))
}

func (r *RemoteClient) RaycastRequest() error {
	return r.Sender.SendFrame("raycast-request")
}

func (r *RemoteClient) RaycastCancel() error {
	return r.Sender.SendFrame("raycast-cancel")
}

func (r *RemoteClient) CreateGeometry(geom GeomID) error {
	return r.Sender.SendFrame("create-geometry", string(geom))
}

func (r *RemoteClient) DestroyGeometry(geom GeomID) error {
	return r.Sender.SendFrame("destroy-geometry", string(geom))
}

func (r *RemoteClient) AddTriangleList(geom GeomID, tag *Tag, triangles []Triangle) error {
	params := make([]string, 0, 2+len(triangles)*4)
	params = append(params, string(geom), optTag(tag))
	for _, tri := range triangles {
		params = append(params, SerializeColor(tri.Color), SerializeVec3(tri.P0), SerializeVec3(tri.P1), SerializeVec3(tri.P2))
	}
	return r.Sender.SendFrame("add-triangle-list", params...)
}

func (r *RemoteClient) AddTriangleStrip(geom GeomID, tag *Tag, color Color, p0, p1, p2 Vec3, positions []Vec3) error {
	return r.sendTriangleFacing("add-triangle-strip", geom, tag, color, p0, p1, p2, positions)
}

func (r *RemoteClient) AddTriangleFan(geom GeomID, tag *Tag, color Color, p0, p1, p2 Vec3, positions []Vec3) error {
	return r.sendTriangleFacing("add-triangle-fan", geom, tag, color, p0, p1, p2, positions)
}

func (r *RemoteClient) sendTriangleFacing(command string, geom GeomID, tag *Tag, color Color, p0, p1, p2 Vec3, positions []Vec3) error {
	params := make([]string, 0, 6+len(positions))
	params = append(params, string(geom), optTag(tag), SerializeColor(color), SerializeVec3(p0), SerializeVec3(p1), SerializeVec3(p2))
	for _, p := range positions {
		params = append(params, SerializeVec3(p))
	}
	return r.Sender.SendFrame(command, params...)
}

func (r *RemoteClient) RemoveTriangles(geom GeomID, tag Tag) error {
	return r.Sender.SendFrame("remove-triangles", string(geom), string(tag))
}

func (r *RemoteClient) CreateTextGeometry(geom GeomID, size Vec2, uri URI, sha256 Bytes32, text string, anchor *Anchor) error {
	return r.Sender.SendFrame("create-text-geometry", string(geom), SerializeVec2(size), string(uri), SerializeBytes32(sha256), text, optAnchor(anchor))
}

func (r *RemoteClient) CreateSpriteGeometry(geom GeomID, size Vec2, uri URI, sha256 Bytes32, sizeMode *SizeMode, anchor *Anchor) error {
	return r.Sender.SendFrame("create-sprite-geometry", string(geom), SerializeVec2(size), string(uri), SerializeBytes32(sha256), optSizeMode(sizeMode), optAnchor(anchor))
}

func (r *RemoteClient) SetTextProperty(geom GeomID, property string, value AnyValue) error {
	return r.Sender.SendFrame("set-text-property", string(geom), property, string(value))
}

func (r *RemoteClient) CreateObject(object ObjectID, geom *GeomID) error {
	return r.Sender.SendFrame("create-object", string(object), optGeomID(geom))
}

func (r *RemoteClient) DestroyObject(object ObjectID) error {
	return r.Sender.SendFrame("destroy-object", string(object))
}

func (r *RemoteClient) ReparentObject(parent, child ObjectID, mode *ReparentMode) error {
	return r.Sender.SendFrame("reparent-object", string(parent), string(child), optReparentMode(mode))
}

func (r *RemoteClient) SetObjectGeometry(object ObjectID, geom *GeomID) error {
	return r.Sender.SendFrame("set-object-geometry", string(object), optGeomID(geom))
}

func (r *RemoteClient) SetObjectProperty(object ObjectID, property string, value AnyValue) error {
	return r.Sender.SendFrame("set-object-property", string(object), property, string(value))
}

func (r *RemoteClient) SetObjectTransform(object ObjectID, pos *Vec3, rot *Euler, scale *Vec3, duration *float64) error {
	return r.Sender.SendFrame("set-object-transform", string(object), optVec3(pos), optEuler(rot), optVec3(scale), optFloat(duration))
}

func (r *RemoteClient) TrackObject(object ObjectID, target *ObjectID, mode *TrackMode, duration *float64) error {
	return r.Sender.SendFrame("track-object", string(object), optObjectID(target), optTrackMode(mode), optFloat(duration))
}

func (r *RemoteClient) EnableFreeLook(enabled bool) error {
	return r.Sender.SendFrame("enable-free-look", SerializeBool(enabled))
}

func (r *RemoteClient) SetBackgroundColor(color Color) error {
	return r.Sender.SendFrame("set-background-color", SerializeColor(color))
}

// RemoteServer exposes every C->S command as a typed Go method, used by
// client-side code to talk to the connected server.
type RemoteServer struct {
	Sender FrameSender
}

func (r *RemoteServer) Chat(message string) error {
	return r.Sender.SendFrame("chat", message)
}

func (r *RemoteServer) SetUser(user UserID) error {
	return r.Sender.SendFrame("set-user", string(user))
}

func (r *RemoteServer) Authenticate(user UserID, signature Bytes64) error {
	return r.Sender.SendFrame("authenticate", string(user), SerializeBytes64(signature))
}

func (r *RemoteServer) ResumeSession(token SessionToken) error {
	return r.Sender.SendFrame("resume-session", SerializeSessionToken(token))
}

func (r *RemoteServer) SendInput(text string) error {
	return r.Sender.SendFrame("send-input", text)
}

func (r *RemoteServer) TapObject(obj ObjectID, kind TapKind, tag Tag) error {
	return r.Sender.SendFrame("tap-object", string(obj), string(kind), string(tag))
}

func (r *RemoteServer) TellObject(obj ObjectID, text string) error {
	return r.Sender.SendFrame("tell-object", string(obj), text)
}

func (r *RemoteServer) Intent(intentID IntentID, viewDir Vec3) error {
	return r.Sender.SendFrame("intent", string(intentID), SerializeVec3(viewDir))
}

func (r *RemoteServer) Raycast(origin, direction Vec3) error {
	return r.Sender.SendFrame("raycast", SerializeVec3(origin), SerializeVec3(direction))
}

func (r *RemoteServer) RaycastCancel() error {
	return r.Sender.SendFrame("raycast-cancel")
}
