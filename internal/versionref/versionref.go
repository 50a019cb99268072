// Package versionref defines the late-bound version selector used
// throughout the launch pipeline: a reference that resolves to a
// concrete VersionName only when a task executes, not when it's
// submitted.
package versionref

import "launcher/internal/versionname"

// Kind discriminates the three Ref cases.
type Kind int

const (
	// Latest resolves to the numerically greatest known version that
	// has a download URL.
	Latest Kind = iota
	// LatestInstalled resolves to the numerically greatest installed
	// version.
	LatestInstalled
	// Exact resolves to a specific, named version.
	Exact
)

// Ref is a tagged variant over the three ways a task can refer to a
// version. Construct with NewLatest(), NewLatestInstalled(), or NewExact(name);
// inspect with Kind()/Name().
type Ref struct {
	kind Kind
	name versionname.Name
}

// NewLatest builds a Ref selecting the latest version with a download URL.
func NewLatest() Ref { return Ref{kind: Latest} }

// NewLatestInstalled builds a Ref selecting the latest installed version.
func NewLatestInstalled() Ref { return Ref{kind: LatestInstalled} }

// NewExact builds a Ref selecting a specific version name.
func NewExact(name versionname.Name) Ref { return Ref{kind: Exact, name: name} }

// Kind reports which of the three cases this Ref holds.
func (r Ref) Kind() Kind { return r.kind }

// Name returns the selected version name. Valid only when Kind() == Exact.
func (r Ref) Name() versionname.Name { return r.name }

// String renders the reference for logs and notifications.
func (r Ref) String() string {
	switch r.kind {
	case Latest:
		return "latest"
	case LatestInstalled:
		return "latest installed"
	case Exact:
		return r.name.String()
	default:
		return "unknown version reference"
	}
}
