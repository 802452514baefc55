// Package app holds the contract between cmd binaries and the processes they start.
package app

// Runner is a long-running process. Run blocks until the process stops and reports why.
type Runner interface {
	Run() error
}
