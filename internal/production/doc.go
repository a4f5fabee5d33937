// Package production provides production integrations for a statematch
// World: metrics, transition publishing, a YAML transition journal and a
// Graphviz view of observed transitions.
//
// Every type here is a statematch.Observer; combine them with
// statematch.Observers.
package production
