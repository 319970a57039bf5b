package services

// Scope is the explicit call context every workflow operation receives:
// which warehouse the caller acts in and who they are. Nothing in this
// package reads session state from anywhere else.
type Scope struct {
	WhsCode string
	UserID  int
}
