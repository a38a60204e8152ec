// Package tunnel carries pulse's HTTP traffic over an SSH connection.
//
// When api.ssh is set, the API client swaps its transport for one whose
// dialer opens direct-tcpip channels on a single SSH client. Host aliases,
// users, ports and identity files come from ~/.ssh/config; authentication
// tries the SSH agent first, then key files; host keys are checked against
// ~/.ssh/known_hosts.
package tunnel
