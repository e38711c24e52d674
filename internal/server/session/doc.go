// Package session drives one client connection through the vcalc protocol.
//
// A session performs the following steps:
//  1. AwaitLogin: read the login (one receive, trimmed at the first CR/LF and
//     of surrounding blanks) within the handshake timeout. An unknown, empty or
//     over-long login, or a failed read, is answered with "ERR".
//  2. Send a fresh 16-character hex challenge and move to AwaitDigest.
//  3. AwaitDigest: read the digest within the handshake timeout and compare it,
//     ignoring hex case, with SHA-1(challenge ‖ secret). A mismatch or failed
//     read is answered with "ERR"; a match with "OK".
//  4. ReceivingVectors: read a uint32 vector count. For every vector read its
//     uint32 length and payload, then write its float64 sum before reading
//     the next length. After the last vector another count may follow.
//     A count of zero, or the client closing the connection where a count
//     would start after a completed batch, ends the session.
//
// Any other short read in step 4 aborts the session; the connection is
// closed without a reply. The connection is closed when Run returns.
package session
