// Package reachability reports network connectivity transitions.
//
// A Monitor polls a Probe on a fixed interval and publishes an Event to every
// subscriber when the result flips. It starts out assuming the network is up.
// The composition root owns the single Monitor and hands it to whatever needs
// to react to reconnects.
package reachability
