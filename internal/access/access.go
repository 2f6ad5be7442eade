// Package access decides whether an actor may view, edit or delete a comment or
// a note. Denials for authenticated non-owners are reported as not-found so the
// existence of other users' records is never confirmed.
package access

import (
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrUnauthenticated is returned when an anonymous actor needs to log in first
	ErrUnauthenticated = errors.New("authentication required")
	// ErrNotFound is returned both for missing records and for records owned by someone else
	ErrNotFound = errors.New("not found")
)

// Operation is an action performed on a resource
type Operation string

const (
	OpView   Operation = "view"
	OpCreate Operation = "create"
	OpEdit   Operation = "edit"
	OpDelete Operation = "delete"
)

// Kind identifies the resource type
type Kind string

const (
	KindComment Kind = "comment"
	KindNote    Kind = "note"
)

// Resource is the ownership view of a record
type Resource struct {
	Kind     Kind
	AuthorID uuid.UUID
}

// Comment returns the resource descriptor of a comment written by author
func Comment(author uuid.UUID) Resource {
	return Resource{Kind: KindComment, AuthorID: author}
}

// Note returns the resource descriptor of a note owned by author
func Note(author uuid.UUID) Resource {
	return Resource{Kind: KindNote, AuthorID: author}
}

// Actor is the identity behind a request; the zero value is anonymous
type Actor struct {
	UserID uuid.UUID
}

// Anonymous is the actor of an unauthenticated request
var Anonymous = Actor{}

// User returns the actor for an authenticated user
func User(id uuid.UUID) Actor {
	return Actor{UserID: id}
}

// Authenticated reports whether the actor carries an identity
func (a Actor) Authenticated() bool {
	return a.UserID != uuid.Nil
}

// Decision is the outcome of an access check
type Decision int

const (
	Permit Decision = iota
	Deny
	Unauthenticated
)

func (d Decision) String() string {
	switch d {
	case Permit:
		return "permit"
	case Deny:
		return "deny"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Err converts the decision into the error surfaced to callers
func (d Decision) Err() error {
	switch d {
	case Permit:
		return nil
	case Unauthenticated:
		return ErrUnauthenticated
	default:
		return ErrNotFound
	}
}

// Decide applies the ownership rule to an existing resource.
//
// Comments are public to view. Every other operation, and every operation on a
// note, requires the actor to be the author. Anonymous actors are sent to log in
// instead of being denied.
func Decide(actor Actor, res Resource, op Operation) Decision {
	if res.Kind == KindComment && op == OpView {
		return Permit
	}
	if !actor.Authenticated() {
		return Unauthenticated
	}
	if op == OpCreate {
		return Permit
	}
	if res.AuthorID != uuid.Nil && actor.UserID == res.AuthorID {
		return Permit
	}
	return Deny
}

// DecideCreate checks whether the actor may create a new comment or note
func DecideCreate(actor Actor) Decision {
	if !actor.Authenticated() {
		return Unauthenticated
	}
	return Permit
}

// RequireLogin is the decision for pages that need any authenticated user
func RequireLogin(actor Actor) Decision {
	return DecideCreate(actor)
}

// LoginRedirect builds the login URL carrying the original path in "next".
// Slashes are left unescaped so the value reads as a path.
func LoginRedirect(loginURL, next string) string {
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext returns next if it is a local absolute path, otherwise fallback
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}

// CommentsAnchor is the redirect target after a comment is created, edited or deleted
func CommentsAnchor(newsPath string) string {
	return newsPath + "#comments"
}
