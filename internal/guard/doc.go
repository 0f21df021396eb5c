// Package guard decides which screens may render for the current session.
//
// A Guard maps a page's access level and the session state to a Decision:
// render, or redirect elsewhere without rendering. A Router applies the
// guard on every navigation, follows redirects, and unmounts the previous
// page before the next one mounts.
package guard
