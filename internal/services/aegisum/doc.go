// Package aegisum wraps the aegisum-cli wallet/mining node command-line
// interface.
//
// The Client invokes named daemon commands as bounded subprocess calls and
// returns typed failures: *DaemonError for non-zero exits, *UnavailableError
// when the executable cannot be launched, *MalformedResponseError when output
// does not decode. It performs no retries and no logging; the mining worker
// and status poller own those policies.
//
// Responses are always decoded with a strict JSON grammar and never treated
// as anything but data.
package aegisum
