// Package waketime turns operator-friendly wake expressions into absolute
// times for wake.Register.
//
// The caller supplies "now"; nothing here reads the clock, so results are
// reproducible in tests.
package waketime
