// Package logx is the structured logger shared by wakectl, the systemd-wake
// launcher and pkg/wake.
//
// Logger wraps zerolog. Console sinks print short readable lines, the file
// sink writes JSON, and the journal sink talks to journald directly when the
// launcher runs under systemd. The zero Logger discards everything, so
// library types can embed one without requiring configuration.
package logx
