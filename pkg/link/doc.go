// Package link provides the application level reliability protocol
// over a VLC modem.
package link

// The modem exposes a line based protocol over a serial port. Each line is a
// frame, e.g. m[<payload>\0,<dest>] to transmit, m[R<payload>,<src>] for a
// payload received from the peer and m[P<payload>,<src>] for the modem's
// response to a payload this side transmitted.
//
// The modem already applies FEC and retransmits on its own, but corrupted
// payloads can still get through. On top of that, every message carries an
// MD5 checksum (text|checksum). The receiver verifies it and replies NACK on
// mismatch; the sender keeps the last message and resends it on NACK.
//
// There are no sequence numbers. Both sides must take turns, which is the
// job of the caller (see package chat).
//
// Message text may contain the '|' delimiter: decoding splits on the last
// one and the checksum itself never contains it. Text must not contain a
// newline or NUL (both are frame syntax) and must not start with NACK.
