package protocol

// This package implements parsing and serialising lines of the text protocol
// that Cosmogram clients use to talk to the message link server.
//
// This protocol aims to be
//
// - easy to implement
// - be human readable
//
// - `Command` - A client instruction to the server (`SEND` or `RECEIVE`).
// - `Request` - A single command line sent by a client.
// - `Response` - A single line sent by the server in reply to a request.
//
// === General Syntax
//
// - lines are `\n` delimited, a trailing `\r` is tolerated when reading
// - fields are `|` delimited, the first field is the command or response tag
// - command names are case sensitive and uppercase
// - field values can not contain `|`, `\r` or `\n`. There is no escaping, values
//   that would break the framing are rejected before anything is written.
//
// Every exchange happens on its own connection. The client opens a connection,
// writes exactly one request and then reads the reply until the server closes
// the connection.
//
// === SEND
//
//  ```
//    > SEND|<senderID>|<recipientID>|<content>|<timestamp>\n
//    < OK\n
//  ```
//
// `<timestamp>` is local time formatted as `yyyy-MM-dd HH:mm:ss`. Any reply
// other than `OK` is failure text from the server.
//
// === RECEIVE
//
//  ```
//    > RECEIVE|<userID>\n
//    < MESSAGE|<id>|<senderID>|<recipientID>|<content>|<timestamp>\n
//    < MESSAGE|<id>|<senderID>|<recipientID>|<content>|<timestamp>\n
//    < ERROR|<errMessage>\n
//  ```
//
// Zero or more MESSAGE lines, optionally followed by one ERROR line. The end of
// the reply is signalled by the server closing the connection. A MESSAGE line
// that does not split into exactly six fields is not a message and is skipped.
//
