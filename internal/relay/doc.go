// Package relay hosts shared property spaces over websocket.
//
// Each connection joins one named space (?space=name). On connect the relay
// assigns the participant a UUIDv7 identity and sends a welcome message
// carrying a snapshot of the space. Clients publish with "set" messages;
// every write is broadcast to all members of the space, the writer
// included, as a "changed" message. The relay never interprets values.
//
// The wire protocol is defined by property.Message; property.RemoteStore is
// the matching client.
package relay
