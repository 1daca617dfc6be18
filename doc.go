// Package hackvr implements the HackVR protocol: a client/server API for
// exchanging text-framed commands describing a shared, live 3D scene
// graph. See the wire subpackage for the frame grammar, value types, and
// command vocabulary, and the transport subpackage for connectors,
// listeners, and the handshake engine that bootstraps a connection.
package hackvr
