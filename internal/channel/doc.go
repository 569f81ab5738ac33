// Package channel implements the local command channel between a client
// invocation and the running server.
//
// The channel is a unix domain socket at {base_dir}/socks/{name}.sock. Each
// connection carries exactly one request: the client writes a single
// newline-terminated line ("verb" or "verb:target") and reads everything the
// server writes until the server closes its end. There is no framing, no
// multiplexing and no connection reuse; access control is whatever the file
// system applies to the socket path.
package channel
